package shelfdb

import (
	"fmt"

	"github.com/shelfdb/shelfdb/pkg/log"
	"github.com/shelfdb/shelfdb/pkg/query"
)

// QueryCF evaluates a path expression over a collection and returns the
// decoded records it selects. The expression is compiled once per call and
// applied to a point-in-time snapshot of the collection in key order; the
// scan is a full pass with no index acceleration, which is fine for bounded
// collections but not recommended for very large ones.
//
// Expressions carrying a projection chain ($[*].name) return the projected
// attribute decoded into T rather than the whole record.
func QueryCF[T any](s *Store, cf, expr string) ([]T, error) {
	pairs, err := queryCF[T](s, cf, expr)
	if err != nil {
		return nil, err
	}
	values := make([]T, len(pairs))
	for i, pair := range pairs {
		values[i] = pair.Value
	}
	return values, nil
}

// QueryCFWithKeys is QueryCF with each surviving record tagged by its
// original collection key.
func QueryCFWithKeys[T any](s *Store, cf, expr string) ([]KeyValuePair[T], error) {
	return queryCF[T](s, cf, expr)
}

func queryCF[T any](s *Store, cf, expr string) ([]KeyValuePair[T], error) {
	q, err := query.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	if err := s.ensureCF(cf); err != nil {
		return nil, err
	}

	keys, raws, err := s.collectRecords(cf)
	if err != nil {
		return nil, err
	}

	// The expression evaluates against the codec's generic document model;
	// survivors are decoded into T from their stored bytes.
	docs := make([]interface{}, len(raws))
	for i, raw := range raws {
		if err := s.codec.Unmarshal(raw, &docs[i]); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
		}
	}

	selections := q.Select(docs)
	results := make([]KeyValuePair[T], 0, len(selections))
	for _, sel := range selections {
		var value T
		if sel.Projected {
			// Projected attributes only exist in the generic model; a codec
			// round-trip shapes them into T.
			data, err := s.codec.Marshal(sel.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
			}
			if err := s.codec.Unmarshal(data, &value); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
			}
		} else {
			if err := s.codec.Unmarshal(raws[sel.Index], &value); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
			}
		}
		results = append(results, KeyValuePair[T]{Key: lossyKey(keys[sel.Index]), Value: value})
	}

	log.Query.Debug().
		Str("collection", cf).
		Str("expr", expr).
		Int("scanned", len(docs)).
		Int("matched", len(results)).
		Msg("query evaluated")
	return results, nil
}
