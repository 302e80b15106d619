package mutate

import "errors"

var (
	// ErrWrongSpecification is returned when a mutation's chain of table
	// names does not name exactly one main table (a Node or an Edge).
	ErrWrongSpecification = errors.New("mutate: chain must name exactly one node or edge table")

	// ErrNoAssociation is returned when an explicitly named association
	// does not attach to the chain's main table.
	ErrNoAssociation = errors.New("mutate: association does not attach to the main table")

	// ErrKeyConflict is returned by Insert when a row's primary key
	// already exists in the destination store. Upsert mode never returns
	// this error.
	ErrKeyConflict = errors.New("mutate: primary key already exists")
)
