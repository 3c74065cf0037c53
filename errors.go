package shelfdb

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/shelfdb/shelfdb/pkg/db"
)

// The closed set of failure kinds surfaced by the store. Errors returned by
// any operation match exactly one of these sentinels under errors.Is; the
// wrapped message carries the offending key, collection name, or detail.
var (
	// ErrDb reports an engine-level failure (I/O inside the engine,
	// corruption, compaction error).
	ErrDb = errors.New("database operation failed")
	// ErrSerialization reports a codec encode failure.
	ErrSerialization = errors.New("serialization error")
	// ErrDeserialization reports a codec decode failure.
	ErrDeserialization = errors.New("deserialization error")
	// ErrKeyNotFound reports an explicit read, or delete, of a missing key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrInvalidCollection reports a collection name that does not resolve.
	ErrInvalidCollection = errors.New("invalid collection")
	// ErrIO reports a filesystem failure outside the engine, such as
	// writing a backup file.
	ErrIO = errors.New("io error")
	// ErrUtf8 reports invalid UTF-8 at a boundary that requires strict
	// string form of a raw key.
	ErrUtf8 = errors.New("utf-8 conversion error")
	// ErrClock reports a system time acquisition failure. The store itself
	// never timestamps; the sentinel is provided for callers' timestamping
	// paths.
	ErrClock = errors.New("system time error")
	// ErrPropertyAccess reports that the engine refused a property read.
	ErrPropertyAccess = errors.New("property access error")
	// ErrInvalidQuery reports a path expression that failed to compile.
	ErrInvalidQuery = errors.New("invalid query")
)

// engineErr maps adapter errors onto the taxonomy. key and cf give the
// wrapped message its payload; either may be empty when not applicable.
func engineErr(err error, cf, key string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	case errors.Is(err, db.ErrUnknownCF):
		return fmt.Errorf("%w: %s", ErrInvalidCollection, cf)
	default:
		return fmt.Errorf("%w: %w", ErrDb, err)
	}
}

// fileErr distinguishes filesystem failures from engine failures for
// operations that touch paths outside the database directory.
func fileErr(err error, cf string) error {
	if errors.Is(err, db.ErrUnknownCF) {
		return fmt.Errorf("%w: %s", ErrInvalidCollection, cf)
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return fmt.Errorf("%w: %w", ErrDb, err)
}
