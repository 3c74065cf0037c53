// Package pebble implements the db.Database contract on top of
// cockroachdb/pebble. Pebble has no native column families, so collections
// are realized as prefix-partitioned keyspaces: a record of collection c
// lives at c || 0x00 || key, and the collection catalog is kept under a
// reserved internal prefix that no valid collection name can reach.
package pebble

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/cockroachdb/pebble"

	"github.com/shelfdb/shelfdb/pkg/db"
)

// catalogPrefix starts with a NUL byte; collection names are printable, so
// user keyspaces can never collide with catalog entries.
var (
	catalogPrefix = []byte{0x00, 'c', 'f', ':'}
	catalogUpper  = []byte{0x00, 'c', 'f', ';'}
)

const defaultCF = "default"

type DB struct {
	db     *pebble.DB
	mu     sync.RWMutex
	cfs    map[string]struct{}
	closed bool
}

var _ db.Database = (*DB)(nil)

// Open opens (or creates, if the options allow) the database at path and
// loads the collection catalog. The default collection always exists after
// a successful open.
func Open(path string, opts *db.Options) (*DB, error) {
	if opts == nil {
		opts = db.DefaultOptions()
	}

	pdb, err := pebble.Open(path, pebbleOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &DB{db: pdb, cfs: make(map[string]struct{})}
	if err := d.loadCatalog(); err != nil {
		_ = pdb.Close()
		return nil, err
	}
	if _, ok := d.cfs[defaultCF]; !ok {
		if err := d.writeCatalogEntry(defaultCF); err != nil {
			_ = pdb.Close()
			return nil, err
		}
		d.cfs[defaultCF] = struct{}{}
	}
	return d, nil
}

// OpenCF opens the database and ensures the listed collections exist.
// Missing collections are created when CreateMissingColumnFamilies is set;
// otherwise the open fails, and it fails before anything is created on
// disk.
func OpenCF(path string, opts *db.Options, cfs []string) (*DB, error) {
	if opts == nil {
		opts = db.DefaultOptions()
	}

	if !opts.CreateMissingColumnFamilies {
		if err := verifyCatalog(path, cfs); err != nil {
			return nil, err
		}
	}

	d, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	for _, name := range cfs {
		if d.CFExists(name) {
			continue
		}
		if !opts.CreateMissingColumnFamilies {
			_ = d.Close()
			return nil, fmt.Errorf("%w: %s", db.ErrUnknownCF, name)
		}
		if err := d.CreateCF(name); err != nil {
			_ = d.Close()
			return nil, err
		}
	}
	return d, nil
}

// verifyCatalog checks the on-disk catalog for the requested collections
// before the database is opened for writing, so a refused open leaves no
// state behind. A path without an initialized database holds only the
// default collection.
func verifyCatalog(path string, cfs []string) error {
	existing := map[string]struct{}{defaultCF: {}}

	if _, err := os.Stat(filepath.Join(path, "CURRENT")); err == nil {
		names, err := List(path)
		if err != nil {
			return err
		}
		for _, name := range names {
			existing[name] = struct{}{}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("inspect database path: %w", err)
	}

	for _, name := range cfs {
		if _, ok := existing[name]; !ok {
			return fmt.Errorf("%w: %s", db.ErrUnknownCF, name)
		}
	}
	return nil
}

// OpenWithExistingCFs inspects the on-disk catalog. If the path holds an
// initialized database (a CURRENT marker is present) it is opened with
// whatever collections it contains; otherwise the directory is created and
// the database opened with only the default collection.
func OpenWithExistingCFs(path string, opts *db.Options) (*DB, error) {
	if opts == nil {
		opts = db.DefaultOptions()
	}

	if _, err := os.Stat(filepath.Join(path, "CURRENT")); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("inspect database path: %w", err)
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		created := *opts
		created.CreateIfMissing = true
		return Open(path, &created)
	}
	return Open(path, opts)
}

// List enumerates the collection names of an existing database without
// keeping it open.
func List(path string) ([]string, error) {
	pdb, err := pebble.Open(path, &pebble.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer pdb.Close()

	iter, err := pdb.NewIter(&pebble.IterOptions{
		LowerBound: catalogPrefix,
		UpperBound: catalogUpper,
	})
	if err != nil {
		return nil, fmt.Errorf(ErrInIteratorCreation, err)
	}
	defer iter.Close()

	var names []string
	for valid := iter.First(); valid; valid = iter.Next() {
		names = append(names, string(iter.Key()[len(catalogPrefix):]))
	}
	sort.Strings(names)
	return names, nil
}

func pebbleOptions(o *db.Options) *pebble.Options {
	popts := &pebble.Options{
		ErrorIfNotExists: !o.CreateIfMissing,
	}
	if o.WriteBufferSize > 0 {
		popts.MemTableSize = o.WriteBufferSize
	}
	if o.MaxWriteBufferNumber > 0 {
		popts.MemTableStopWritesThreshold = o.MaxWriteBufferNumber
	}
	if o.TargetFileSizeBase > 0 {
		popts.Levels = []pebble.LevelOptions{{TargetFileSize: o.TargetFileSizeBase}}
	}
	if o.LevelZeroFileNumCompactionTrigger > 0 {
		popts.L0CompactionFileThreshold = o.LevelZeroFileNumCompactionTrigger
	}
	if o.Parallelism > 0 {
		n := o.Parallelism
		popts.MaxConcurrentCompactions = func() int { return n }
	}
	if o.MaxOpenFiles > 0 {
		popts.MaxOpenFiles = o.MaxOpenFiles
	}
	return popts
}

func (d *DB) loadCatalog() error {
	iter, err := d.db.NewIter(&pebble.IterOptions{
		LowerBound: catalogPrefix,
		UpperBound: catalogUpper,
	})
	if err != nil {
		return fmt.Errorf(ErrInIteratorCreation, err)
	}
	defer iter.Close()

	for valid := iter.First(); valid; valid = iter.Next() {
		d.cfs[string(iter.Key()[len(catalogPrefix):])] = struct{}{}
	}
	return nil
}

func (d *DB) writeCatalogEntry(name string) error {
	key := append(append([]byte{}, catalogPrefix...), name...)
	if err := d.db.Set(key, nil, pebble.Sync); err != nil {
		return fmt.Errorf("write catalog entry: %w", err)
	}
	return nil
}

// validCFName rejects names that could break the keyspace partitioning:
// empty strings, invalid UTF-8, and anything with control bytes.
func validCFName(name string) bool {
	if name == "" || !utf8.ValidString(name) {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < 0x20 || name[i] == 0x7f {
			return false
		}
	}
	return true
}

// cfKey qualifies a user key with its collection prefix.
func cfKey(cf string, key []byte) []byte {
	out := make([]byte, 0, len(cf)+1+len(key))
	out = append(out, cf...)
	out = append(out, 0x00)
	return append(out, key...)
}

// cfBounds returns the iteration window [cf||0x00, cf||0x01) covering every
// record of the collection.
func cfBounds(cf string) (lower, upper []byte) {
	lower = append([]byte(cf), 0x00)
	upper = append([]byte(cf), 0x01)
	return lower, upper
}

func (d *DB) CreateCF(name string) error {
	if !validCFName(name) {
		return fmt.Errorf("%w: %q", db.ErrUnknownCF, name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return db.ErrClosed
	}
	if _, ok := d.cfs[name]; ok {
		return nil
	}
	if err := d.writeCatalogEntry(name); err != nil {
		return err
	}
	d.cfs[name] = struct{}{}
	return nil
}

func (d *DB) CFExists(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}
	_, ok := d.cfs[name]
	return ok
}

// DropCF removes the catalog entry and range-deletes the collection's
// keyspace in one atomic batch.
func (d *DB) DropCF(name string) error {
	if name == defaultCF {
		return ErrDropDefault
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return db.ErrClosed
	}
	if _, ok := d.cfs[name]; !ok {
		return fmt.Errorf("%w: %s", db.ErrUnknownCF, name)
	}

	batch := d.db.NewBatch()
	defer batch.Close()

	lower, upper := cfBounds(name)
	if err := batch.DeleteRange(lower, upper, nil); err != nil {
		return fmt.Errorf("drop collection %s: %w", name, err)
	}
	catalogKey := append(append([]byte{}, catalogPrefix...), name...)
	if err := batch.Delete(catalogKey, nil); err != nil {
		return fmt.Errorf("drop collection %s: %w", name, err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("drop collection %s: %w", name, err)
	}
	delete(d.cfs, name)
	return nil
}

func (d *DB) ListCF() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.cfs))
	for name := range d.cfs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *DB) Put(cf string, key, value []byte) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := d.check(cf); err != nil {
		return err
	}
	return d.db.Set(cfKey(cf, key), value, pebble.Sync)
}

func (d *DB) Get(cf string, key []byte) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := d.check(cf); err != nil {
		return nil, err
	}

	value, closer, err := d.db.Get(cfKey(cf, key))
	if err == pebble.ErrNotFound {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (d *DB) Delete(cf string, key []byte) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := d.check(cf); err != nil {
		return err
	}
	return d.db.Delete(cfKey(cf, key), pebble.Sync)
}

// check validates that the database is open and the collection exists.
// Callers must hold at least a read lock.
func (d *DB) check(cf string) error {
	if d.closed {
		return db.ErrClosed
	}
	if _, ok := d.cfs[cf]; !ok {
		return fmt.Errorf("%w: %s", db.ErrUnknownCF, cf)
	}
	return nil
}

func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.db.Close()
}
