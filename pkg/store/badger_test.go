package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerEngine_InMemoryPutGetCommit(t *testing.T) {
	ctx := context.Background()
	engine, err := OpenBadgerEngine(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	defer engine.Close()

	txn := engine.Begin()
	require.NoError(t, txn.Put(ctx, []byte("k1"), []byte("v1")))
	require.NoError(t, txn.Commit(ctx))

	readTxn := engine.Begin()
	var scratch Scratch
	found, err := readTxn.Get(ctx, DefaultReadOptions(), []byte("k1"), &scratch)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v1"), scratch.Bytes())
	require.NoError(t, readTxn.Rollback(ctx))
}

func TestBadgerEngine_MissingKey(t *testing.T) {
	ctx := context.Background()
	engine, err := OpenBadgerEngine(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	defer engine.Close()

	txn := engine.Begin()
	var scratch Scratch
	found, err := txn.Get(ctx, DefaultReadOptions(), []byte("absent"), &scratch)
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, txn.Rollback(ctx))
}

func TestBadgerEngine_RollbackDiscardsUncommittedWrites(t *testing.T) {
	ctx := context.Background()
	engine, err := OpenBadgerEngine(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	defer engine.Close()

	txn := engine.Begin()
	require.NoError(t, txn.Put(ctx, []byte("k1"), []byte("v1")))
	require.NoError(t, txn.Rollback(ctx))

	readTxn := engine.Begin()
	var scratch Scratch
	found, err := readTxn.Get(ctx, DefaultReadOptions(), []byte("k1"), &scratch)
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, readTxn.Rollback(ctx))
}
