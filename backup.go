package shelfdb

import (
	"github.com/shelfdb/shelfdb/pkg/log"
)

// CreateBackup writes a point-in-time snapshot of a collection to a single
// standalone SST file at path, in ascending raw-key order. The snapshot
// covers exactly the records present when iteration began; it is not
// consistent across collections.
func (s *Store) CreateBackup(cf, path string) error {
	if err := s.db.ExportSST(cf, path); err != nil {
		return fileErr(err, cf)
	}
	log.Backup.Info().Str("collection", cf).Str("path", path).Msg("backup created")
	return nil
}

// RestoreBackup ingests a backup SST into the target collection, which must
// exist but need not be empty. The ingest is atomic: observers see either
// all of the file's records or none. Keys already present resolve to the
// SST's value. The source file is retained.
func (s *Store) RestoreBackup(cf, path string) error {
	if err := s.db.IngestSST(cf, path); err != nil {
		return fileErr(err, cf)
	}
	log.Backup.Info().Str("collection", cf).Str("path", path).Msg("backup restored")
	return nil
}
