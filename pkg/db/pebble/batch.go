package pebble

import (
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"github.com/shelfdb/shelfdb/pkg/db"
)

type Batch struct {
	owner *DB
	batch *pebble.Batch
	done  atomic.Bool
}

func (d *DB) NewBatch() db.Batch {
	return &Batch{
		owner: d,
		batch: d.db.NewBatch(),
	}
}

func (b *Batch) Put(cf string, key, value []byte) error {
	if b.done.Load() {
		return ErrBatchDone
	}
	if err := b.checkCF(cf); err != nil {
		return err
	}
	return b.batch.Set(cfKey(cf, key), value, nil)
}

func (b *Batch) Delete(cf string, key []byte) error {
	if b.done.Load() {
		return ErrBatchDone
	}
	if err := b.checkCF(cf); err != nil {
		return err
	}
	return b.batch.Delete(cfKey(cf, key), nil)
}

func (b *Batch) Commit() error {
	if b.done.Load() {
		return ErrBatchDone
	}
	if err := b.batch.Commit(pebble.Sync); err != nil {
		return err
	}
	b.done.Store(true)
	// The writes are durable at this point; release the batch's buffer
	// rather than leaving it to a Close call that is now a no-op.
	return b.batch.Close()
}

func (b *Batch) Close() error {
	if !b.done.CompareAndSwap(false, true) {
		return nil
	}
	return b.batch.Close()
}

func (b *Batch) checkCF(cf string) error {
	b.owner.mu.RLock()
	defer b.owner.mu.RUnlock()
	return b.owner.check(cf)
}
