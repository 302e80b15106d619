package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/pkg/schema"
)

// Invariant 4 — for any two row tuples t1 < t2 (column-wise under
// declared types), encode(M, t1) < encode(M, t2) under CompareKeys.
func TestEncode_PreservesOrder(t *testing.T) {
	intTyp := []schema.Typing{schema.Primitive("Int")}

	pairs := [][2]int64{{1, 2}, {-5, 0}, {-1, 1}, {1000, 1001}}
	for _, p := range pairs {
		k1, err := Encode(7, []schema.Value{schema.Int(p[0])}, intTyp)
		require.NoError(t, err)
		k2, err := Encode(7, []schema.Value{schema.Int(p[1])}, intTyp)
		require.NoError(t, err)
		assert.Negative(t, CompareKeys(k1, k2), "expected encode(%d) < encode(%d)", p[0], p[1])
	}
}

func TestEncode_StringOrder(t *testing.T) {
	strTyp := []schema.Typing{schema.Primitive("String")}
	k1, err := Encode(1, []schema.Value{schema.Str("abc")}, strTyp)
	require.NoError(t, err)
	k2, err := Encode(1, []schema.Value{schema.Str("abd")}, strTyp)
	require.NoError(t, err)
	k3, err := Encode(1, []schema.Value{schema.Str("ab")}, strTyp)
	require.NoError(t, err)
	assert.Negative(t, CompareKeys(k1, k2))
	assert.Negative(t, CompareKeys(k3, k1), "shorter prefix must sort before its extension")
}

// A length-prefixed encoding would sort List(Int(2)) before
// List(Int(1),Int(1)) (length 1 < length 2) even though the first
// element already decides the logical order the other way.
func TestEncode_ListOrder(t *testing.T) {
	listTyp := []schema.Typing{schema.ListOf(schema.Primitive("Int"))}
	short, err := Encode(1, []schema.Value{schema.List(schema.Int(2))}, listTyp)
	require.NoError(t, err)
	long, err := Encode(1, []schema.Value{schema.List(schema.Int(1), schema.Int(1))}, listTyp)
	require.NoError(t, err)
	assert.Negative(t, CompareKeys(long, short), "element-wise order must win over list length")

	prefix, err := Encode(1, []schema.Value{schema.List(schema.Int(1))}, listTyp)
	require.NoError(t, err)
	extension, err := Encode(1, []schema.Value{schema.List(schema.Int(1), schema.Int(1))}, listTyp)
	require.NoError(t, err)
	assert.Negative(t, CompareKeys(prefix, extension), "shorter list must sort before its extension")
}

func TestEncode_NullSortsFirst(t *testing.T) {
	typ := []schema.Typing{schema.Nullable(schema.Primitive("Int"))}
	kNull, err := Encode(1, []schema.Value{schema.Null()}, typ)
	require.NoError(t, err)
	kVal, err := Encode(1, []schema.Value{schema.Int(-100)}, typ)
	require.NoError(t, err)
	assert.Negative(t, CompareKeys(kNull, kVal))
}

func TestEncode_RejectsNullForNonNullable(t *testing.T) {
	typ := []schema.Typing{schema.Primitive("Int")}
	_, err := Encode(1, []schema.Value{schema.Null()}, typ)
	assert.Error(t, err)
}

func TestKey_OverwritePrefix(t *testing.T) {
	k, err := Encode(5, []schema.Value{schema.Int(1)}, []schema.Typing{schema.Primitive("Int")})
	require.NoError(t, err)
	assert.Equal(t, uint32(5), k.Prefix())

	k.OverwritePrefix(9)
	assert.Equal(t, uint32(9), k.Prefix())
}

func TestEncode_PrefixOrdersBeforeColumns(t *testing.T) {
	typ := []schema.Typing{schema.Primitive("Int")}
	kLow, err := Encode(1, []schema.Value{schema.Int(999)}, typ)
	require.NoError(t, err)
	kHigh, err := Encode(2, []schema.Value{schema.Int(-999)}, typ)
	require.NoError(t, err)
	assert.Negative(t, CompareKeys(kLow, kHigh), "prefix is the primary sort key")
}
