package pebble

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/objstorage/objstorageprovider"
	"github.com/cockroachdb/pebble/sstable"
	"github.com/cockroachdb/pebble/vfs"
)

// ExportSST streams a collection, in ascending key order, into a standalone
// SST file at path. Keys are written without the collection prefix so the
// file can be ingested into any collection.
func (d *DB) ExportSST(cf, path string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := d.check(cf); err != nil {
		return err
	}

	lower, upper := cfBounds(cf)
	iter, err := d.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	if err != nil {
		return fmt.Errorf(ErrInIteratorCreation, err)
	}
	defer iter.Close()

	f, err := vfs.Default.Create(path)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}

	writer := sstable.NewWriter(objstorageprovider.NewFileWritable(f), d.sstWriterOptions())
	for valid := iter.First(); valid; valid = iter.Next() {
		value, verr := iter.ValueAndErr()
		if verr != nil {
			_ = writer.Close()
			return fmt.Errorf(ErrIteratorValue, verr)
		}
		// The iterator yields prefixed keys in sorted order; stripping the
		// shared prefix preserves that order, which the writer requires.
		if err := writer.Set(iter.Key()[len(lower):], value); err != nil {
			_ = writer.Close()
			return fmt.Errorf("write backup entry: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize backup file: %w", err)
	}
	return nil
}

// IngestSST atomically adds the records of an exported SST file to a
// collection. The file's keys are rewritten into the target collection's
// keyspace in a sibling temp file, which is then handed to the engine's
// ingest primitive; the source file is left untouched.
func (d *DB) IngestSST(cf, path string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := d.check(cf); err != nil {
		return err
	}

	f, err := vfs.Default.Open(path)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	readable, err := sstable.NewSimpleReadable(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("read backup file: %w", err)
	}
	reader, err := sstable.NewReader(readable, sstable.ReaderOptions{})
	if err != nil {
		_ = readable.Close()
		return fmt.Errorf("read backup file: %w", err)
	}
	defer reader.Close()

	iter, err := reader.NewIter(nil, nil)
	if err != nil {
		return fmt.Errorf(ErrInIteratorCreation, err)
	}
	defer iter.Close()

	tmp := path + ".ingesting"
	out, err := vfs.Default.Create(tmp)
	if err != nil {
		return fmt.Errorf("create ingest file: %w", err)
	}

	writer := sstable.NewWriter(objstorageprovider.NewFileWritable(out), d.sstWriterOptions())
	entries := 0
	for ik, lv := iter.First(); ik != nil; ik, lv = iter.Next() {
		value, _, verr := lv.Value(nil)
		if verr != nil {
			_ = writer.Close()
			_ = vfs.Default.Remove(tmp)
			return fmt.Errorf("read backup entry: %w", verr)
		}
		// Uniform prefixing keeps the keys sorted.
		if err := writer.Set(cfKey(cf, ik.UserKey), value); err != nil {
			_ = writer.Close()
			_ = vfs.Default.Remove(tmp)
			return fmt.Errorf("write ingest entry: %w", err)
		}
		entries++
	}
	if err := writer.Close(); err != nil {
		_ = vfs.Default.Remove(tmp)
		return fmt.Errorf("finalize ingest file: %w", err)
	}

	// The engine refuses empty sstables, and there is nothing to add anyway.
	if entries == 0 {
		return vfs.Default.Remove(tmp)
	}

	if err := d.db.Ingest([]string{tmp}); err != nil {
		_ = vfs.Default.Remove(tmp)
		return fmt.Errorf("ingest backup: %w", err)
	}
	// Ingest consumes the temp file; removal is best-effort cleanup in case
	// the engine copied instead of linking.
	_ = vfs.Default.Remove(tmp)
	return nil
}

func (d *DB) sstWriterOptions() sstable.WriterOptions {
	return sstable.WriterOptions{
		TableFormat: d.db.FormatMajorVersion().MaxTableFormat(),
	}
}
