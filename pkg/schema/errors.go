package schema

import "errors"

// Structural errors raised while resolving names or building definitions.
// None of these originate from I/O; they all indicate a malformed schema
// fragment or a conflict within the environment.
var (
	ErrUndefinedType    = errors.New("schema: undefined type")
	ErrWrongType        = errors.New("schema: name resolves to the wrong kind of entity")
	ErrNameConflict     = errors.New("schema: name already defined in this scope")
	ErrReservedIdent    = errors.New("schema: identifier uses the reserved '_' prefix")
	ErrIncompatibleEdge = errors.New("schema: a global edge cannot reference a local node")
	ErrEmptyKeys        = errors.New("schema: a node's key column list must be non-empty")
)
