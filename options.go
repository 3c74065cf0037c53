package shelfdb

import (
	"github.com/shelfdb/shelfdb/pkg/db"
	"github.com/shelfdb/shelfdb/pkg/serialization/codec"
)

// Options configures the open paths: the engine knobs plus the active
// codec. A database written with one codec must always be reopened with the
// same one.
type Options struct {
	db.Options

	// Codec converts typed records to and from bytes. Nil selects the
	// compact binary codec.
	Codec codec.Codec
}

// DefaultOptions returns the options used by OpenDefault: create the
// database and any missing collections, binary codec.
func DefaultOptions() *Options {
	return &Options{Options: *db.DefaultOptions()}
}

func (o *Options) codec() codec.Codec {
	if o.Codec != nil {
		return o.Codec
	}
	return codec.NewBinaryCodec()
}
