package pebble

import (
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/shelfdb/shelfdb/pkg/db"
)

type Iterator struct {
	iter *pebble.Iterator
	// prefixLen is stripped from keys so callers see raw collection keys.
	prefixLen int
}

func (d *DB) NewIterator(cf string) (db.Iterator, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := d.check(cf); err != nil {
		return nil, err
	}

	lower, upper := cfBounds(cf)
	iter, err := d.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	if err != nil {
		return nil, fmt.Errorf(ErrInIteratorCreation, err)
	}
	return &Iterator{iter: iter, prefixLen: len(lower)}, nil
}

func (it *Iterator) Next() bool {
	// If the iterator is un-positioned, position it at the first key
	if !it.iter.Valid() {
		return it.iter.First()
	}
	// Otherwise, move to the next key
	return it.iter.Next()
}

func (it *Iterator) Key() []byte {
	key := it.iter.Key()
	if len(key) < it.prefixLen {
		return nil
	}
	key = key[it.prefixLen:]
	result := make([]byte, len(key))
	copy(result, key)
	return result
}

func (it *Iterator) Value() ([]byte, error) {
	if !it.iter.Valid() {
		return nil, ErrIteratorInvalid
	}

	val, err := it.iter.ValueAndErr()
	if err != nil {
		return nil, fmt.Errorf(ErrIteratorValue, err)
	}

	result := make([]byte, len(val))
	copy(result, val)
	return result, nil
}

func (it *Iterator) Valid() bool {
	return it.iter.Valid()
}

func (it *Iterator) Close() error {
	return it.iter.Close()
}
