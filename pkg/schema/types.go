// Package schema defines the typed table model for tessera's graph engine:
// nodes, edges and associations, their key/value column layout, and the
// scoped environment used to resolve names against those definitions.
//
// A table is identified by a TableId, which carries both a persistence
// class (Global, for the durable root store, or Local, for a per-session
// temporary store) and a monotonically assigned integer id. Every node,
// edge and association definition owns exactly one TableId.
package schema

import "fmt"

// Persistence distinguishes tables stored in the durable root store from
// tables confined to a per-session temporary store.
type Persistence int

const (
	Global Persistence = iota
	Local
)

func (p Persistence) String() string {
	if p == Local {
		return "local"
	}
	return "global"
}

// TableId identifies a logical table within a session. Ids are unique
// within their own Persistence class but may collide across classes.
type TableId struct {
	Persistence Persistence
	Id          uint32
}

// InRoot reports whether this table lives in the durable root store.
func (t TableId) InRoot() bool {
	return t.Persistence == Global
}

func (t TableId) String() string {
	return fmt.Sprintf("%s#%d", t.Persistence, t.Id)
}

// Typing is a recursive sum type describing the shape of a column value:
// a named primitive (resolved from the environment), a homogeneous list
// of some inner typing, or a nullable wrapper around an inner typing.
// A list typing and its element typing each carry their own nullability,
// so a nullable list of nullable elements is representable.
type Typing struct {
	kind     typingKind
	name     string  // set when kind == typingPrimitive
	inner    *Typing // set when kind == typingList or wrapped by Nullable
	nullable bool
}

type typingKind int

const (
	typingPrimitive typingKind = iota
	typingList
)

// Primitive builds a named primitive typing, e.g. "Int" or "String".
func Primitive(name string) Typing {
	return Typing{kind: typingPrimitive, name: name}
}

// ListOf builds a homogeneous list typing over inner.
func ListOf(inner Typing) Typing {
	return Typing{kind: typingList, inner: &inner}
}

// Nullable wraps t so that Null is an acceptable value alongside whatever
// t itself accepts. Applying Nullable to an already-nullable typing is a
// caller error the schema builder guards against at parse time.
func Nullable(t Typing) Typing {
	t.nullable = true
	return t
}

// IsNullable reports whether Null is an acceptable value for this typing.
func (t Typing) IsNullable() bool { return t.nullable }

// IsList reports whether this typing is a homogeneous list.
func (t Typing) IsList() bool { return t.kind == typingList }

// Elem returns the element typing of a list typing. It panics if called on
// a non-list typing; callers must check IsList first.
func (t Typing) Elem() Typing {
	if t.kind != typingList {
		panic("schema: Elem called on non-list typing")
	}
	return *t.inner
}

// PrimitiveName returns the primitive's name and true, or ("", false) if
// this typing is not a primitive.
func (t Typing) PrimitiveName() (string, bool) {
	if t.kind == typingPrimitive {
		return t.name, true
	}
	return "", false
}

func (t Typing) String() string {
	prefix := ""
	if t.nullable {
		prefix = "?"
	}
	switch t.kind {
	case typingList:
		return fmt.Sprintf("%s[%s]", prefix, t.inner.String())
	default:
		return prefix + t.name
	}
}

// Col is a single column in a table's key or value list.
type Col struct {
	Name    string
	Typ     Typing
	Default *Value // nil unless a constant default was resolved at build time
}

// Node is a node table definition. Keys must be non-empty; OutEdges and
// InEdges are back-references populated when an Edge naming this node as
// src or dst is registered.
type Node struct {
	Id       TableId
	Keys     []Col
	Vals     []Col
	OutEdges []TableId
	InEdges  []TableId
	Attached []TableId
}

// Edge is an edge table definition. Src and Dst must resolve to Node
// definitions; a Global edge may not reference a Local node on either end.
type Edge struct {
	Id   TableId
	Src  TableId
	Dst  TableId
	Keys []Col
	Vals []Col
}

// Assoc is an association table definition: extra columns attached to
// rows of one main table (a Node or an Edge), sharing the main row's key
// bytes under the association's own TableId prefix.
type Assoc struct {
	Id   TableId
	Src  TableId // the main table this association attaches to
	Vals []Col
}

// Kind distinguishes the concrete type stored in an Entity.
type Kind int

const (
	KindTyping Kind = iota
	KindNode
	KindEdge
	KindAssoc
)

// Entity is the sum type of everything a name can resolve to in the
// environment: a typing alias, or a table definition.
type Entity struct {
	Kind   Kind
	Typing Typing
	Node   *Node
	Edge   *Edge
	Assoc  *Assoc
}

func typingEntity(t Typing) Entity { return Entity{Kind: KindTyping, Typing: t} }
func nodeEntity(n *Node) Entity    { return Entity{Kind: KindNode, Node: n} }
func edgeEntity(e *Edge) Entity    { return Entity{Kind: KindEdge, Edge: e} }
func assocEntity(a *Assoc) Entity  { return Entity{Kind: KindAssoc, Assoc: a} }

// TableId returns the TableId carried by a Node, Edge or Assoc entity. It
// panics for a Typing entity, which has no table identity.
func (e Entity) TableId() TableId {
	switch e.Kind {
	case KindNode:
		return e.Node.Id
	case KindEdge:
		return e.Edge.Id
	case KindAssoc:
		return e.Assoc.Id
	default:
		panic("schema: TableId called on a Typing entity")
	}
}
