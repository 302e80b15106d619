// Package expr implements the narrow expression surface the mutation
// pipeline depends on: partial evaluation of a dictionary literal against
// a single upstream binding, and evaluation of a column reference inside
// that dictionary against a concrete row. A full expression language
// (arithmetic, function calls, subqueries) is an external collaborator;
// this package only has to carry column references and constants far
// enough to drive per-column extraction.
package expr

import (
	"fmt"

	"github.com/tesseradb/tessera/pkg/schema"
)

// Row is one upstream tuple: a flat, positional list of column values for
// a single binding. Multi-binding joins are produced by upstream
// relational operators this core does not implement; by the time a tuple
// reaches the insertion operator it has already been reduced to one row
// per the single declared binding.
type Row []schema.Value

// BindingSchema names the columns exposed by one binding, in position
// order, so a ColumnRef can be resolved to an index once and reused for
// every row.
type BindingSchema struct {
	Columns []string
}

func (bs BindingSchema) indexOf(col string) (int, bool) {
	for i, c := range bs.Columns {
		if c == col {
			return i, true
		}
	}
	return 0, false
}

// BindingMap is the schema exposed by an upstream operator: one
// BindingSchema per binding name.
type BindingMap map[string]BindingSchema

// Expr is the sum type this package evaluates. PartialEval resolves
// symbolic references against a binding map as far as possible without a
// concrete row; Eval produces a final value given one.
type Expr interface {
	PartialEval(bindingName string, bindings BindingMap) (Expr, error)
	Eval(row Row) (schema.Value, error)
}

// Const is a literal value; it partial-evaluates to itself and never
// depends on a row.
type Const struct {
	Value schema.Value
}

func (c Const) PartialEval(string, BindingMap) (Expr, error) { return c, nil }
func (c Const) Eval(Row) (schema.Value, error)               { return c.Value, nil }

// ColumnRef names a column of the single declared binding. Partial
// evaluation resolves it to a resolvedColumn carrying a fixed position,
// so Eval never has to do a name lookup per row.
type ColumnRef struct {
	Column string
}

func (c ColumnRef) PartialEval(bindingName string, bindings BindingMap) (Expr, error) {
	bs, ok := bindings[bindingName]
	if !ok {
		return nil, fmt.Errorf("expr: unknown binding %q", bindingName)
	}
	idx, ok := bs.indexOf(c.Column)
	if !ok {
		return nil, fmt.Errorf("expr: binding %q has no column %q", bindingName, c.Column)
	}
	return resolvedColumn{index: idx, name: c.Column}, nil
}

func (c ColumnRef) Eval(Row) (schema.Value, error) {
	return schema.Value{}, fmt.Errorf("expr: column %q was not resolved by PartialEval before Eval", c.Column)
}

type resolvedColumn struct {
	index int
	name  string
}

func (r resolvedColumn) PartialEval(string, BindingMap) (Expr, error) { return r, nil }

func (r resolvedColumn) Eval(row Row) (schema.Value, error) {
	if r.index < 0 || r.index >= len(row) {
		return schema.Value{}, fmt.Errorf("expr: column %q index %d out of range for row of length %d", r.name, r.index, len(row))
	}
	return row[r.index], nil
}

// Dict is a dictionary literal mapping column names to expressions. It is
// the only shape the insertion operator's extract-map argument is allowed
// to partially evaluate to.
type Dict map[string]Expr

// PartialEval resolves every entry's expression against bindingName,
// returning a new Dict of fully-resolved expressions ready for repeated
// per-row Eval calls.
func (d Dict) PartialEval(bindingName string, bindings BindingMap) (Dict, error) {
	out := make(Dict, len(d))
	for name, e := range d {
		resolved, err := e.PartialEval(bindingName, bindings)
		if err != nil {
			return nil, fmt.Errorf("expr: column %q: %w", name, err)
		}
		out[name] = resolved
	}
	return out, nil
}
