package pebble

import (
	"fmt"

	"github.com/shelfdb/shelfdb/pkg/db"
)

// PropertyInt reads a numeric engine property for a collection.
func (d *DB) PropertyInt(cf, name string) (uint64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := d.check(cf); err != nil {
		return 0, err
	}

	switch name {
	case db.PropLiveSSTBytes:
		lower, upper := cfBounds(cf)
		size, err := d.db.EstimateDiskUsage(lower, upper)
		if err != nil {
			return 0, fmt.Errorf("estimate disk usage: %w", err)
		}
		return size, nil
	case db.PropMemTableBytes:
		// Pebble keeps memtables per database, not per collection; this is
		// the process-wide figure.
		return d.db.Metrics().MemTable.Size, nil
	case db.PropBlobBytes:
		// Pebble stores values inline in SSTs; there are no blob files.
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %s", db.ErrUnknownProperty, name)
	}
}
