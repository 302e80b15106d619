package schema

// The grammar and its parser are external collaborators: this package
// never sees source text, only the already-parsed structural fragments
// defined below. A parser (not part of this core) is expected to produce
// these values from schema-definition source positions.

// TypingFragment is the parsed shape of a type expression before it has
// been resolved against an environment: `?Name`, `[T]`, `?[T]`, etc.
type TypingFragment struct {
	Nullable  bool
	ListElem  *TypingFragment // non-nil for a list type; Primitive unused then
	Primitive string          // primitive name to resolve, e.g. "Int"
}

// ColFragment is one parsed column entry inside a `{ ... }` column-def
// block: an optional leading `*` key marker, a name, a type, and an
// optional default-value expression (left unevaluated by this core; see
// DESIGN.md for the two resolutions a follow-up pass may choose between).
type ColFragment struct {
	Name    string
	IsKey   bool
	Typ     TypingFragment
	Default *DefaultFragment
}

// DefaultFragment carries whatever the parser captured for a column's
// `= <expr>` clause. Evaluating it to a constant is a follow-up pass this
// core does not perform; ConstValue is populated only when that pass has
// already run and handed back a resolved constant.
type DefaultFragment struct {
	ConstValue *Value
}

// NodeFragment is a parsed `node <name> { col_defs }` definition.
type NodeFragment struct {
	Name string
	Cols []ColFragment
}

// EdgeFragment is a parsed `(src)-[name]->(dst) { col_defs }?` definition.
type EdgeFragment struct {
	SrcName string
	Name    string
	DstName string
	Cols    []ColFragment // nil/empty when the column block was omitted
}

// AssocFragment is a parsed association definition attaching extra
// columns to an existing main table.
type AssocFragment struct {
	Name     string
	MainName string
	Cols     []ColFragment
}
