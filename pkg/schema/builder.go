package schema

import "strings"

// Builder translates parsed node/edge/association fragments into typed
// definitions, assigns each a fresh TableId, and registers it in an Env
// while enforcing the graph-referential and scoping invariants described
// in the package's design notes.
type Builder struct {
	env *Env
}

// NewBuilder wraps env for schema-build operations.
func NewBuilder(env *Env) *Builder {
	return &Builder{env: env}
}

func checkIdent(name string) error {
	if name == "" {
		return ErrReservedIdent
	}
	if strings.HasPrefix(name, "_") {
		return ErrReservedIdent
	}
	return nil
}

// BuildNode registers a node definition. isLocal selects which
// Persistence class (and therefore which scope: root for Local, current
// for Global — see defineAt) the node's TableId and name land in.
func (b *Builder) BuildNode(f NodeFragment, isLocal bool) (TableId, error) {
	if err := checkIdent(f.Name); err != nil {
		return TableId{}, err
	}
	keys, vals, err := b.buildColDefs(f.Cols)
	if err != nil {
		return TableId{}, err
	}
	if len(keys) == 0 {
		return TableId{}, ErrEmptyKeys
	}
	id := b.env.NextTableId(isLocal)
	node := &Node{Id: id, Keys: keys, Vals: vals}
	if !b.defineAt(isLocal, f.Name, nodeEntity(node)) {
		return TableId{}, ErrNameConflict
	}
	return id, nil
}

// BuildEdge registers an edge definition, resolving its src/dst node
// names, enforcing the Global-edge/Local-node scoping invariant, and
// appending the new edge's id to both endpoint nodes' back-reference
// lists once registration succeeds.
func (b *Builder) BuildEdge(f EdgeFragment, isLocal bool) (TableId, error) {
	if err := checkIdent(f.Name); err != nil {
		return TableId{}, err
	}
	if err := checkIdent(f.SrcName); err != nil {
		return TableId{}, err
	}
	if err := checkIdent(f.DstName); err != nil {
		return TableId{}, err
	}

	srcEnt, ok := b.env.Resolve(f.SrcName)
	if !ok {
		return TableId{}, ErrUndefinedType
	}
	if srcEnt.Kind != KindNode {
		return TableId{}, ErrWrongType
	}
	srcId := srcEnt.Node.Id

	dstEnt, ok := b.env.Resolve(f.DstName)
	if !ok {
		return TableId{}, ErrUndefinedType
	}
	if dstEnt.Kind != KindNode {
		return TableId{}, ErrWrongType
	}
	dstId := dstEnt.Node.Id

	id := b.env.NextTableId(isLocal)
	if id.Persistence == Global && (srcId.Persistence == Local || dstId.Persistence == Local) {
		return TableId{}, ErrIncompatibleEdge
	}

	keys, vals, err := b.buildColDefs(f.Cols)
	if err != nil {
		return TableId{}, err
	}

	edge := &Edge{Id: id, Src: srcId, Dst: dstId, Keys: keys, Vals: vals}
	if !b.defineAt(isLocal, f.Name, edgeEntity(edge)) {
		return TableId{}, ErrNameConflict
	}

	if !b.env.AppendOutEdge(f.SrcName, id) {
		panic("schema: src node vanished between resolve and back-reference append")
	}
	if !b.env.AppendInEdge(f.DstName, id) {
		panic("schema: dst node vanished between resolve and back-reference append")
	}
	return id, nil
}

// BuildAssoc registers an association attaching extra columns to an
// existing main table (a Node or an Edge).
func (b *Builder) BuildAssoc(f AssocFragment, isLocal bool) (TableId, error) {
	if err := checkIdent(f.Name); err != nil {
		return TableId{}, err
	}
	mainEnt, ok := b.env.Resolve(f.MainName)
	if !ok {
		return TableId{}, ErrUndefinedType
	}
	if mainEnt.Kind != KindNode && mainEnt.Kind != KindEdge {
		return TableId{}, ErrWrongType
	}
	mainId := mainEnt.TableId()

	_, vals, err := b.buildColDefs(f.Cols)
	if err != nil {
		return TableId{}, err
	}
	for _, c := range f.Cols {
		if c.IsKey {
			return TableId{}, ErrWrongType
		}
	}

	id := b.env.NextTableId(isLocal)
	assoc := &Assoc{Id: id, Src: mainId, Vals: vals}
	if !b.defineAt(isLocal, f.Name, assocEntity(assoc)) {
		return TableId{}, ErrNameConflict
	}
	if mainEnt.Kind == KindNode {
		b.env.AppendAttached(f.MainName, id)
	}
	return id, nil
}

// defineAt targets the root scope for Local definitions and the current
// scope for Global definitions. This pairing looks backwards at first
// glance but matches the grammar's own choice of build target: a `local`
// table's id is session-scoped, so its name is registered where every
// nested scope can still see it (the root), while a `global` table's
// name is registered wherever the builder happens to be working (the
// current scope).
func (b *Builder) defineAt(isLocal bool, name string, ent Entity) bool {
	if isLocal {
		return b.env.DefineNewInRoot(name, ent)
	}
	return b.env.DefineNew(name, ent)
}

// buildColDefs partitions parsed column fragments into ordered key and
// value lists, preserving source order within each list.
func (b *Builder) buildColDefs(cols []ColFragment) (keys, vals []Col, err error) {
	for _, cf := range cols {
		if err := checkIdent(cf.Name); err != nil {
			return nil, nil, err
		}
		typ, err := b.buildType(cf.Typ)
		if err != nil {
			return nil, nil, err
		}
		col := Col{Name: cf.Name, Typ: typ}
		if cf.Default != nil {
			col.Default = cf.Default.ConstValue
		}
		if cf.IsKey {
			keys = append(keys, col)
		} else {
			vals = append(vals, col)
		}
	}
	return keys, vals, nil
}

// buildType resolves a parsed type fragment into a Typing, recursing into
// list element types and applying each level's nullable wrapper around
// that level's resolved typing, so list elements may be nullable too.
func (b *Builder) buildType(f TypingFragment) (Typing, error) {
	var t Typing
	if f.ListElem != nil {
		inner, err := b.buildType(*f.ListElem)
		if err != nil {
			return Typing{}, err
		}
		t = ListOf(inner)
	} else {
		ent, ok := b.env.Resolve(f.Primitive)
		if !ok {
			return Typing{}, ErrUndefinedType
		}
		if ent.Kind != KindTyping {
			return Typing{}, ErrWrongType
		}
		t = ent.Typing
	}
	if f.Nullable {
		t = Nullable(t)
	}
	return t, nil
}
