// Package relation defines the minimal relational-algebra surface the
// insertion operator needs: a pull-based tuple stream, the binding-map
// shape an operator exposes to whatever consumes it, and the TupleSet an
// operator emits per row. Building query plans, joins and the rest of
// the relational algebra is an upstream collaborator outside this core;
// this package only carries the contract the insertion operator is one
// implementation of.
package relation

import (
	"context"
	"io"

	"github.com/tesseradb/tessera/pkg/codec"
	"github.com/tesseradb/tessera/pkg/expr"
	"github.com/tesseradb/tessera/pkg/schema"
)

// RowIter is a lazy, pull-based, non-restartable stream of upstream rows.
// Next returns io.EOF once exhausted, the same convention as database/sql
// and the rest of the pack's streaming iterators.
type RowIter interface {
	Next() (expr.Row, error)
}

// SliceRowIter adapts a fixed slice of rows into a RowIter, useful for
// tests and for small literal VALUES-style sources.
type SliceRowIter struct {
	rows []expr.Row
	pos  int
}

func NewSliceRowIter(rows []expr.Row) *SliceRowIter {
	return &SliceRowIter{rows: rows}
}

func (s *SliceRowIter) Next() (expr.Row, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

// TupleSet is one row produced by a relational operator: a list of keys
// followed by a list of values, in that fixed order.
type TupleSet struct {
	Keys []codec.Key
	Vals []codec.Key
}

// TupleIter streams TupleSets lazily; Next returns io.EOF once exhausted.
type TupleIter interface {
	Next() (TupleSet, error)
}

// BindingMap is the schema a relational operator exposes: for each
// binding name, the column layout plus how many keys and values each
// emitted TupleSet carries.
type BindingMap struct {
	Inner   map[string]expr.BindingSchema
	KeySize int
	ValSize int
}

// RelationalAlgebra is the contract every relational operator satisfies,
// including the insertion operator. Name/Bindings/BindingMap describe the
// operator without running it; Iter drives it.
type RelationalAlgebra interface {
	Name() string
	Bindings() map[string]struct{}
	BindingMap() (BindingMap, error)
	Iter(ctx context.Context) (TupleIter, error)
	// Identity returns the main table this operator is anchored to, if
	// any — the insertion operator reports its target table here.
	Identity() *schema.Entity
}
