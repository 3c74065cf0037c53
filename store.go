// Package shelfdb is a typed, document-oriented access layer over an
// embedded log-structured-merge engine. It exposes named collections of
// codec-encoded records addressed by string keys, with ordered range
// extraction, path-expression queries, and collection-level backup and
// restore through SST export and ingest.
//
// A Store is a shared handle to one opened database; it is safe for
// concurrent use and must be closed exactly once when the process is done
// with it. Typed operations are package-level generic functions taking the
// store as their first argument, since Go methods cannot be generic.
package shelfdb

import (
	"errors"

	"github.com/shelfdb/shelfdb/pkg/db"
	dbpebble "github.com/shelfdb/shelfdb/pkg/db/pebble"
	"github.com/shelfdb/shelfdb/pkg/log"
	"github.com/shelfdb/shelfdb/pkg/serialization/codec"
)

// DefaultCF is the collection every database carries; the raw and
// un-suffixed typed operations act on it.
const DefaultCF = "default"

// Store is the top-level handle to an opened database.
type Store struct {
	db    db.Database
	codec codec.Codec
}

// OpenDefault opens the database at path with default options, creating it
// if absent.
func OpenDefault(path string) (*Store, error) {
	return Open(path, nil)
}

// Open opens the database at path. It fails when the path does not exist
// and the options do not permit creation.
func Open(path string, opts *Options) (*Store, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	d, err := dbpebble.Open(path, &opts.Options)
	if err != nil {
		return nil, engineErr(err, "", "")
	}
	log.Store.Debug().Str("path", path).Msg("database opened")
	return &Store{db: d, codec: opts.codec()}, nil
}

// OpenCF opens the database and ensures the listed collections exist.
// Missing collections are created when the options allow it; otherwise the
// open fails.
func OpenCF(path string, opts *Options, cfs []string) (*Store, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	d, err := dbpebble.OpenCF(path, &opts.Options, cfs)
	if err != nil {
		return nil, engineErr(err, "", "")
	}
	log.Store.Debug().Str("path", path).Strs("collections", cfs).Msg("database opened")
	return &Store{db: d, codec: opts.codec()}, nil
}

// OpenWithExistingCFs opens the database with whatever collections its
// on-disk catalog holds. A path without an initialized database is created
// and opened with only the default collection.
func OpenWithExistingCFs(path string, opts *Options) (*Store, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	d, err := dbpebble.OpenWithExistingCFs(path, &opts.Options)
	if err != nil {
		return nil, engineErr(err, "", "")
	}
	log.Store.Debug().Str("path", path).Msg("database opened")
	return &Store{db: d, codec: opts.codec()}, nil
}

// ListCF enumerates the collection names of an existing database without
// opening it for writing.
func ListCF(path string) ([]string, error) {
	names, err := dbpebble.List(path)
	if err != nil {
		return nil, engineErr(err, "", "")
	}
	return names, nil
}

// Save stores raw bytes under key in the default collection, replacing any
// prior value.
func (s *Store) Save(key string, value []byte) error {
	if err := s.db.Put(DefaultCF, []byte(key), value); err != nil {
		return engineErr(err, DefaultCF, key)
	}
	return nil
}

// Find reads raw bytes from the default collection. Absence is not an
// error: the second return reports whether the key was present.
func (s *Store) Find(key string) ([]byte, bool, error) {
	value, err := s.db.Get(DefaultCF, []byte(key))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, engineErr(err, DefaultCF, key)
	}
	return value, true, nil
}

// Delete removes key from the default collection. Deleting an absent key is
// a no-op.
func (s *Store) Delete(key string) error {
	if err := s.db.Delete(DefaultCF, []byte(key)); err != nil {
		return engineErr(err, DefaultCF, key)
	}
	return nil
}

// CreateCF creates a collection. Creating an existing collection is a
// no-op.
func (s *Store) CreateCF(name string) error {
	if err := s.db.CreateCF(name); err != nil {
		return engineErr(err, name, "")
	}
	log.Store.Debug().Str("collection", name).Msg("collection created")
	return nil
}

// CFExists reports whether a collection exists.
func (s *Store) CFExists(name string) bool {
	return s.db.CFExists(name)
}

// DropCF removes a collection and all of its records.
func (s *Store) DropCF(name string) error {
	if err := s.db.DropCF(name); err != nil {
		return engineErr(err, name, "")
	}
	log.Store.Debug().Str("collection", name).Msg("collection dropped")
	return nil
}

// CFs returns the names of the open database's collections.
func (s *Store) CFs() []string {
	return s.db.ListCF()
}

// Codec returns the active codec.
func (s *Store) Codec() codec.Codec {
	return s.codec
}

// Close releases the database. The store must not be used afterwards.
func (s *Store) Close() error {
	return s.db.Close()
}
