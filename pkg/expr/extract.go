package expr

import (
	"fmt"

	"github.com/tesseradb/tessera/pkg/schema"
)

// Extractor yields one column's value at mutation time, given the
// upstream row the insertion operator is currently processing.
type Extractor func(row Row) (schema.Value, error)

// ConstExtractor always returns v, ignoring the row. It is used for the
// leading boolean that distinguishes an edge's forward and inverse keys.
func ConstExtractor(v schema.Value) Extractor {
	return func(Row) (schema.Value, error) { return v, nil }
}

// MakeExtractor compiles col's entry in a partially-evaluated extract-map
// dictionary into an Extractor, or falls back to col's constant default
// if the column has none. It fails if neither is available, or if the
// produced value does not match col's declared typing.
func MakeExtractor(col schema.Col, dict Dict) (Extractor, error) {
	e, ok := dict[col.Name]
	if !ok {
		if col.Default != nil {
			def := *col.Default
			if !def.MatchesTyping(col.Typ) {
				return nil, fmt.Errorf("column %q: default value does not match typing %s", col.Name, col.Typ)
			}
			return ConstExtractor(def), nil
		}
		return nil, fmt.Errorf("column %q: no value in extract map and no default", col.Name)
	}
	return func(row Row) (schema.Value, error) {
		v, err := e.Eval(row)
		if err != nil {
			return schema.Value{}, fmt.Errorf("column %q: %w", col.Name, err)
		}
		if !v.MatchesTyping(col.Typ) {
			return schema.Value{}, fmt.Errorf("column %q: value %s does not match typing %s", col.Name, v, col.Typ)
		}
		return v, nil
	}, nil
}

// MakeExtractors compiles one Extractor per column in cols, in order.
func MakeExtractors(cols []schema.Col, dict Dict) ([]Extractor, error) {
	out := make([]Extractor, len(cols))
	for i, c := range cols {
		e, err := MakeExtractor(c, dict)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// EvalAll runs every extractor in order against row and collects the
// resulting values, matching extractors[i] with typs[i] in the caller.
func EvalAll(extractors []Extractor, row Row) ([]schema.Value, error) {
	out := make([]schema.Value, len(extractors))
	for i, e := range extractors {
		v, err := e(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Typings collects the declared typing of each column in cols, in order,
// matching the positional output of MakeExtractors/EvalAll for use with
// the codec package's Encode.
func Typings(cols []schema.Col) []schema.Typing {
	out := make([]schema.Typing, len(cols))
	for i, c := range cols {
		out[i] = c.Typ
	}
	return out
}
