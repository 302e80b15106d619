package schema

// StatementKind selects which fragment a Statement carries.
type StatementKind int

const (
	StmtNode StatementKind = iota
	StmtEdge
	StmtAssoc
)

// Statement is one parsed top-level schema definition: a `local` or
// `global` node, edge or association fragment. The parser (external to
// this package) is responsible for producing these from source text.
type Statement struct {
	Kind    StatementKind
	IsLocal bool
	Node    *NodeFragment
	Edge    *EdgeFragment
	Assoc   *AssocFragment
}

// BuildTable runs each statement through the Builder in order, stopping
// at the first error. Definitions already committed by prior statements
// in the same call remain in the environment; BuildTable does not roll
// back partial progress on failure.
func (b *Builder) BuildTable(stmts []Statement) error {
	for _, s := range stmts {
		var err error
		switch s.Kind {
		case StmtNode:
			_, err = b.BuildNode(*s.Node, s.IsLocal)
		case StmtEdge:
			_, err = b.BuildEdge(*s.Edge, s.IsLocal)
		case StmtAssoc:
			_, err = b.BuildAssoc(*s.Assoc, s.IsLocal)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
