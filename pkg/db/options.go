package db

// Options is the engine-neutral configuration bag recognized by the open
// paths. The zero value is usable; DefaultOptions fills in the values a
// fresh database is normally opened with.
type Options struct {
	// CreateIfMissing creates the database directory and the default
	// collection when the path does not exist yet.
	CreateIfMissing bool
	// CreateMissingColumnFamilies creates any named collections missing at
	// open time.
	CreateMissingColumnFamilies bool
	// WriteBufferSize is the memtable size in bytes before a flush is
	// scheduled. Zero keeps the engine default.
	WriteBufferSize uint64
	// MaxWriteBufferNumber caps the number of unflushed memtables.
	MaxWriteBufferNumber int
	// TargetFileSizeBase is the target size of an SST file at the lowest
	// level, in bytes.
	TargetFileSizeBase int64
	// LevelZeroFileNumCompactionTrigger is the L0 file count that triggers
	// a compaction.
	LevelZeroFileNumCompactionTrigger int
	// Parallelism bounds concurrent background compactions.
	Parallelism int
	// MaxOpenFiles caps the engine's file descriptor usage.
	MaxOpenFiles int
}

// DefaultOptions returns the options used by the default open path.
func DefaultOptions() *Options {
	return &Options{
		CreateIfMissing:             true,
		CreateMissingColumnFamilies: true,
	}
}
