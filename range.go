package shelfdb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Direction selects the emission order of a range extraction.
type Direction uint8

const (
	Forward Direction = iota
	Reverse
)

// GetRangeCF returns up to limit decoded records from the ordinal window
// [from, to] of a collection's sorted key sequence.
//
// The window is index-based, not key-based: from and to are zero-based
// positions into the full key sequence, passed as strings. An unparseable
// from falls back to 0 and an unparseable to falls back to one past the
// last key; both are clamped to the collection size, and the window end is
// inclusive. Callers that want key-range semantics must translate keys to
// positions themselves.
//
// Reverse emits the same window back to front. The limit is applied after
// direction; limit 0 yields an empty result. A record that disappears
// between key collection and fetch is skipped; a record that fails to
// decode aborts the call.
func GetRangeCF[T any](s *Store, cf, from, to string, limit int, direction Direction) ([]T, error) {
	pairs, err := rangeCF[T](s, cf, from, to, limit, direction)
	if err != nil {
		return nil, err
	}
	values := make([]T, len(pairs))
	for i, pair := range pairs {
		values[i] = pair.Value
	}
	return values, nil
}

// GetRangeCFWithKeys is GetRangeCF with each record tagged by its key. Keys
// are the UTF-8 form of the raw key bytes, with replacement characters
// substituted for invalid sequences.
func GetRangeCFWithKeys[T any](s *Store, cf, from, to string, limit int, direction Direction) ([]KeyValuePair[T], error) {
	return rangeCF[T](s, cf, from, to, limit, direction)
}

func rangeCF[T any](s *Store, cf, from, to string, limit int, direction Direction) ([]KeyValuePair[T], error) {
	if err := s.ensureCF(cf); err != nil {
		return nil, err
	}

	keys, err := s.collectKeys(cf)
	if err != nil {
		return nil, err
	}

	window := ordinalWindow(keys, from, to)
	if direction == Reverse {
		reversed := make([][]byte, len(window))
		for i, key := range window {
			reversed[len(window)-1-i] = key
		}
		window = reversed
	}
	if limit < 0 {
		limit = 0
	}
	if len(window) > limit {
		window = window[:limit]
	}

	results := make([]KeyValuePair[T], 0, len(window))
	for _, key := range window {
		data, err := s.getRaw(cf, key)
		if errors.Is(err, errSkip) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var value T
		if err := s.codec.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
		}
		results = append(results, KeyValuePair[T]{Key: lossyKey(key), Value: value})
	}
	return results, nil
}

// ordinalWindow slices the sorted key sequence by the [from, to] ordinal
// pair: unparseable or negative positions fall back to their defaults, both
// ends clamp to the sequence length, and the end is inclusive.
func ordinalWindow(keys [][]byte, from, to string) [][]byte {
	fromIdx := 0
	if v, err := strconv.Atoi(from); err == nil && v >= 0 {
		fromIdx = v
	}
	toIdx := len(keys)
	if v, err := strconv.Atoi(to); err == nil && v >= 0 {
		toIdx = v
	}

	if fromIdx > len(keys) {
		fromIdx = len(keys)
	}
	toIdx++
	if toIdx > len(keys) {
		toIdx = len(keys)
	}
	if fromIdx >= toIdx {
		return nil
	}
	return keys[fromIdx:toIdx]
}

// lossyKey converts raw key bytes to string form, substituting the
// replacement character for invalid UTF-8.
func lossyKey(key []byte) string {
	return strings.ToValidUTF8(string(key), "�")
}
