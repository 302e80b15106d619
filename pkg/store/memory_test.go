package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemTempStore_PutThenGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemTempStore()

	err := s.Put(ctx, DefaultWriteOptions(), []byte("k1"), []byte("v1"))
	require.NoError(t, err)

	var scratch Scratch
	found, err := s.Get(ctx, DefaultReadOptions(), []byte("k1"), &scratch)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v1"), scratch.Bytes())
}

func TestMemTempStore_MissingKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemTempStore()

	var scratch Scratch
	found, err := s.Get(ctx, DefaultReadOptions(), []byte("absent"), &scratch)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemTempStore_PutCopiesValue(t *testing.T) {
	ctx := context.Background()
	s := NewMemTempStore()

	val := []byte("original")
	err := s.Put(ctx, DefaultWriteOptions(), []byte("k"), val)
	require.NoError(t, err)
	val[0] = 'X'

	var scratch Scratch
	found, err := s.Get(ctx, DefaultReadOptions(), []byte("k"), &scratch)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("original"), scratch.Bytes())
}
