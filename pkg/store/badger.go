package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerOptions configures the durable root engine. It mirrors the handful
// of knobs the mutation pipeline actually cares about rather than exposing
// badger.Options wholesale.
type BadgerOptions struct {
	DataDir    string
	InMemory   bool
	SyncWrites bool
}

// BadgerEngine owns a badger.DB and hands out TxStore handles scoped to one
// badger transaction apiece.
type BadgerEngine struct {
	db *badger.DB
}

// OpenBadgerEngine opens (or creates) a badger database under opts.DataDir,
// or an in-memory instance when opts.InMemory is set.
func OpenBadgerEngine(opts BadgerOptions) (*BadgerEngine, error) {
	bopts := badger.DefaultOptions(opts.DataDir)
	bopts = bopts.WithInMemory(opts.InMemory)
	bopts = bopts.WithSyncWrites(opts.SyncWrites)
	bopts = bopts.WithLogger(nil)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("store: opening badger engine: %w", err)
	}
	return &BadgerEngine{db: db}, nil
}

func (e *BadgerEngine) Close() error {
	return e.db.Close()
}

// Begin starts a new read-write transaction against the root store. The
// caller owns its lifetime and must eventually Commit or Rollback.
func (e *BadgerEngine) Begin() *BadgerTxStore {
	return &BadgerTxStore{txn: e.db.NewTransaction(true)}
}

// BadgerTxStore adapts one badger.Txn to the TxStore contract. A failed
// write inside the transaction does not roll back prior writes in the same
// txn automatically; the caller decides whether to Rollback on error, same
// as badger's own contract.
type BadgerTxStore struct {
	txn *badger.Txn
}

func (t *BadgerTxStore) Get(_ context.Context, _ ReadOptions, key []byte, scratch *Scratch) (bool, error) {
	item, err := t.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: badger get: %w", err)
	}
	val, err := item.ValueCopy(scratch.Bytes())
	if err != nil {
		return false, fmt.Errorf("store: badger value copy: %w", err)
	}
	scratch.Set(val)
	return true, nil
}

func (t *BadgerTxStore) Put(_ context.Context, key, val []byte) error {
	if err := t.txn.Set(key, val); err != nil {
		return fmt.Errorf("store: badger set: %w", err)
	}
	return nil
}

func (t *BadgerTxStore) Commit(_ context.Context) error {
	if err := t.txn.Commit(); err != nil {
		return fmt.Errorf("store: badger commit: %w", err)
	}
	return nil
}

func (t *BadgerTxStore) Rollback(context.Context) error {
	t.txn.Discard()
	return nil
}
