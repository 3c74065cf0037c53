package shelfdb

import (
	"errors"
	"fmt"

	"github.com/shelfdb/shelfdb/pkg/db"
)

// CFSize is a storage-size breakdown for one collection, derived from
// engine properties. The figures track engine activity (flushes,
// compactions), not instantaneous logical size.
type CFSize struct {
	TotalBytes    uint64 `json:"total_bytes"`
	SSTBytes      uint64 `json:"sst_bytes"`
	MemTableBytes uint64 `json:"mem_table_bytes"`
	BlobBytes     uint64 `json:"blob_bytes"`
}

// TotalMB reports the total in mebibytes.
func (s CFSize) TotalMB() float64 {
	return float64(s.TotalBytes) / (1024.0 * 1024.0)
}

// Size reads the engine's size properties for a collection.
func (s *Store) Size(cf string) (CFSize, error) {
	var size CFSize

	props := []struct {
		name string
		dst  *uint64
	}{
		{db.PropLiveSSTBytes, &size.SSTBytes},
		{db.PropMemTableBytes, &size.MemTableBytes},
		{db.PropBlobBytes, &size.BlobBytes},
	}
	for _, prop := range props {
		v, err := s.db.PropertyInt(cf, prop.name)
		if err != nil {
			if errors.Is(err, db.ErrUnknownCF) {
				return CFSize{}, fmt.Errorf("%w: %s", ErrInvalidCollection, cf)
			}
			return CFSize{}, fmt.Errorf("%w: %s: %v", ErrPropertyAccess, prop.name, err)
		}
		*prop.dst = v
	}
	size.TotalBytes = size.SSTBytes + size.MemTableBytes + size.BlobBytes
	return size, nil
}
