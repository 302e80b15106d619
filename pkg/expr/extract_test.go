package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/pkg/schema"
)

func TestDict_PartialEval_ResolvesColumnRefs(t *testing.T) {
	bindings := BindingMap{
		"row": {Columns: []string{"id", "name"}},
	}
	dict := Dict{
		"id":   ColumnRef{Column: "id"},
		"name": ColumnRef{Column: "name"},
	}
	resolved, err := dict.PartialEval("row", bindings)
	require.NoError(t, err)

	row := Row{schema.Int(7), schema.Str("alice")}
	idVal, err := resolved["id"].Eval(row)
	require.NoError(t, err)
	assert.Equal(t, schema.Int(7), idVal)

	nameVal, err := resolved["name"].Eval(row)
	require.NoError(t, err)
	assert.Equal(t, schema.Str("alice"), nameVal)
}

func TestDict_PartialEval_UnknownColumnFails(t *testing.T) {
	bindings := BindingMap{"row": {Columns: []string{"id"}}}
	dict := Dict{"missing": ColumnRef{Column: "missing"}}
	_, err := dict.PartialEval("row", bindings)
	assert.Error(t, err)
}

func TestMakeExtractor_UsesDefaultWhenAbsent(t *testing.T) {
	def := schema.Str("anon")
	col := schema.Col{Name: "name", Typ: schema.Primitive("String"), Default: &def}

	ex, err := MakeExtractor(col, Dict{})
	require.NoError(t, err)

	v, err := ex(nil)
	require.NoError(t, err)
	assert.Equal(t, def, v)
}

func TestMakeExtractor_MissingWithNoDefaultFails(t *testing.T) {
	col := schema.Col{Name: "name", Typ: schema.Primitive("String")}
	_, err := MakeExtractor(col, Dict{})
	assert.Error(t, err)
}

func TestMakeExtractor_RejectsTypeMismatch(t *testing.T) {
	bindings := BindingMap{"row": {Columns: []string{"id"}}}
	dict := Dict{"id": ColumnRef{Column: "id"}}
	resolved, err := dict.PartialEval("row", bindings)
	require.NoError(t, err)

	col := schema.Col{Name: "id", Typ: schema.Primitive("Int")}
	ex, err := MakeExtractor(col, resolved)
	require.NoError(t, err)

	_, err = ex(Row{schema.Str("not-an-int")})
	assert.Error(t, err)
}

func TestMakeExtractors_PreservesOrder(t *testing.T) {
	bindings := BindingMap{"row": {Columns: []string{"a", "b"}}}
	dict := Dict{"a": ColumnRef{Column: "a"}, "b": ColumnRef{Column: "b"}}
	resolved, err := dict.PartialEval("row", bindings)
	require.NoError(t, err)

	cols := []schema.Col{
		{Name: "b", Typ: schema.Primitive("Int")},
		{Name: "a", Typ: schema.Primitive("Int")},
	}
	extractors, err := MakeExtractors(cols, resolved)
	require.NoError(t, err)

	vals, err := EvalAll(extractors, Row{schema.Int(1), schema.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, []schema.Value{schema.Int(2), schema.Int(1)}, vals)
}
