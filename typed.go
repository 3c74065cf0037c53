package shelfdb

import (
	"errors"
	"fmt"

	"github.com/shelfdb/shelfdb/pkg/db"
)

// KeyValuePair carries a typed record together with its collection key, for
// callers that want keys alongside values in query and range results.
type KeyValuePair[T any] struct {
	Key   string `json:"key"`
	Value T      `json:"value"`
}

// Insert encodes value through the active codec and stores it under key in
// the default collection. Existing values are replaced.
func Insert[T any](s *Store, key string, value T) error {
	return InsertCF(s, DefaultCF, key, value)
}

// Get reads and decodes the record stored under key in the default
// collection. A missing key yields ErrKeyNotFound.
func Get[T any](s *Store, key string) (T, error) {
	return GetCF[T](s, DefaultCF, key)
}

// BatchInsert writes all pairs to the default collection in one atomic
// batch: either every record becomes visible, or none.
func BatchInsert[T any](s *Store, items []KeyValuePair[T]) error {
	return BatchInsertCF(s, DefaultCF, items)
}

// InsertCF is Insert scoped to a named collection. It is a blind upsert.
func InsertCF[T any](s *Store, cf, key string, value T) error {
	data, err := s.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	if err := s.db.Put(cf, []byte(key), data); err != nil {
		return engineErr(err, cf, key)
	}
	return nil
}

// GetCF is Get scoped to a named collection.
func GetCF[T any](s *Store, cf, key string) (T, error) {
	var value T

	data, err := s.db.Get(cf, []byte(key))
	if err != nil {
		return value, engineErr(err, cf, key)
	}
	if err := s.codec.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	return value, nil
}

// DeleteCF removes key from a named collection. Unlike Delete, it verifies
// presence first and returns ErrKeyNotFound for an absent key, without
// mutating state.
func (s *Store) DeleteCF(cf, key string) error {
	if _, err := s.db.Get(cf, []byte(key)); err != nil {
		return engineErr(err, cf, key)
	}
	if err := s.db.Delete(cf, []byte(key)); err != nil {
		return engineErr(err, cf, key)
	}
	return nil
}

// BatchInsertCF is BatchInsert scoped to a named collection.
func BatchInsertCF[T any](s *Store, cf string, items []KeyValuePair[T]) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	for _, item := range items {
		data, err := s.codec.Marshal(item.Value)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSerialization, err)
		}
		if err := batch.Put(cf, []byte(item.Key), data); err != nil {
			return engineErr(err, cf, item.Key)
		}
	}
	if err := batch.Commit(); err != nil {
		return engineErr(err, cf, "")
	}
	return nil
}

// ensureCF resolves a collection before iteration-based operations so that
// a bad name fails with ErrInvalidCollection rather than an empty result.
func (s *Store) ensureCF(cf string) error {
	if !s.db.CFExists(cf) {
		return fmt.Errorf("%w: %s", ErrInvalidCollection, cf)
	}
	return nil
}

// collectRecords materializes a collection snapshot in ascending raw-key
// order.
func (s *Store) collectRecords(cf string) (keys [][]byte, values [][]byte, err error) {
	iter, err := s.db.NewIterator(cf)
	if err != nil {
		return nil, nil, engineErr(err, cf, "")
	}
	defer iter.Close()

	for iter.Next() {
		value, err := iter.Value()
		if err != nil {
			return nil, nil, engineErr(err, cf, "")
		}
		keys = append(keys, iter.Key())
		values = append(values, value)
	}
	return keys, values, nil
}

// collectKeys materializes just the key sequence of a collection snapshot.
func (s *Store) collectKeys(cf string) ([][]byte, error) {
	iter, err := s.db.NewIterator(cf)
	if err != nil {
		return nil, engineErr(err, cf, "")
	}
	defer iter.Close()

	var keys [][]byte
	for iter.Next() {
		keys = append(keys, iter.Key())
	}
	return keys, nil
}

var errSkip = errors.New("skip")

// getRaw reads a record that may legitimately vanish between key collection
// and fetch; errSkip marks that case.
func (s *Store) getRaw(cf string, key []byte) ([]byte, error) {
	data, err := s.db.Get(cf, key)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, errSkip
		}
		return nil, engineErr(err, cf, string(key))
	}
	return data, nil
}
