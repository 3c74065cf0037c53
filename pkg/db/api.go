package db

import "errors"

var (
	// ErrNotFound is returned when a key does not exist in a collection.
	ErrNotFound = errors.New("db: key not found")
	// ErrUnknownCF is returned when a collection name does not resolve.
	ErrUnknownCF = errors.New("db: unknown collection")
	// ErrClosed is returned by operations on a closed database.
	ErrClosed = errors.New("db: database is closed")
	// ErrUnknownProperty is returned by PropertyInt for unrecognized names.
	ErrUnknownProperty = errors.New("db: unknown property")
)

// Integer properties readable through Database.PropertyInt.
const (
	PropLiveSSTBytes  = "shelfdb.live-sst-bytes"
	PropMemTableBytes = "shelfdb.memtable-bytes"
	PropBlobBytes     = "shelfdb.blob-bytes"
)

// Database is the engine contract the access layer depends on: a set of
// named collections, each an ordered mapping from byte-string keys to
// byte-string values. Implementations are safe for concurrent use.
type Database interface {
	// CreateCF creates a collection. Creating an existing collection is a no-op.
	CreateCF(name string) error
	// CFExists reports whether a collection exists.
	CFExists(name string) bool
	// DropCF removes a collection and all of its records.
	DropCF(name string) error
	// ListCF returns the names of all collections, "default" included.
	ListCF() []string

	Put(cf string, key, value []byte) error
	Get(cf string, key []byte) ([]byte, error)
	Delete(cf string, key []byte) error

	// NewBatch returns an empty atomic batch.
	NewBatch() Batch
	// NewIterator iterates a collection in ascending raw-key byte order,
	// observing a point-in-time snapshot taken at creation.
	NewIterator(cf string) (Iterator, error)

	// ExportSST writes every record of a collection, in ascending key order,
	// to a standalone sorted-string-table file at path.
	ExportSST(cf, path string) error
	// IngestSST atomically adds the records of an SST file produced by
	// ExportSST to a collection. The source file is retained.
	IngestSST(cf, path string) error

	// PropertyInt reads a numeric engine property for a collection.
	PropertyInt(cf, name string) (uint64, error)

	Close() error
}

type Writer interface {
	Put(cf string, key, value []byte) error
}

// Batch represents an atomic batch of operations.
// All operations in a batch are performed atomically.
type Batch interface {
	Writer
	Delete(cf string, key []byte) error
	Commit() error
	Close() error
}

// Iterator provides sequential access over a collection's key-value pairs.
// Iterators must be closed after use.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() ([]byte, error)
	Valid() bool
	Close() error
}
