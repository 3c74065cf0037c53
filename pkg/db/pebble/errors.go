package pebble

import "errors"

var (
	ErrBatchDone   = errors.New("pebble: batch already committed or closed")
	ErrDropDefault = errors.New("pebble: cannot drop the default collection")

	ErrIteratorInvalid = errors.New("pebble: iterator is not positioned at a valid entry")
)

const (
	ErrInIteratorCreation = "pebble: create iterator: %w"
	ErrIteratorValue      = "pebble: read iterator value: %w"
)
