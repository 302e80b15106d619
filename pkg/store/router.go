package store

import (
	"context"

	"github.com/tesseradb/tessera/pkg/schema"
)

// Router picks the backing store for a TableId: Global tables route to the
// transactional root store, Local tables route to the temporary store. The
// insertion operator is written against this instead of either store
// directly so it never has to branch on persistence itself.
type Router struct {
	Root TxStore
	Temp TempStore
}

// Get probes whichever store id belongs to.
func (r Router) Get(ctx context.Context, id schema.TableId, key []byte, scratch *Scratch) (bool, error) {
	if id.InRoot() {
		return r.Root.Get(ctx, DefaultReadOptions(), key, scratch)
	}
	return r.Temp.Get(ctx, DefaultReadOptions(), key, scratch)
}

// Put writes to whichever store id belongs to.
func (r Router) Put(ctx context.Context, id schema.TableId, key, val []byte) error {
	if id.InRoot() {
		return r.Root.Put(ctx, key, val)
	}
	return r.Temp.Put(ctx, DefaultWriteOptions(), key, val)
}
