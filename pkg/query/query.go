// Package query compiles and evaluates path expressions over a sequence of
// decoded records. An expression selects records by position, slice, or
// filter predicate, and may project a nested attribute chain:
//
//	$[*]                           every record
//	$[2]  $[-1]  $[0,3,5]          ordinal selection
//	$[1:4]  $[:3]  $[-2:]          half-open slices
//	$[?@.style=='Team' && @.player_count < @.capacity]
//	$[*].name                      attribute projection
//
// Expressions are compiled once and evaluated against a materialized
// document sequence; evaluation itself never fails.
package query

type selKind uint8

const (
	selWildcard selKind = iota
	selIndices
	selSlice
	selFilter
)

type selector struct {
	kind    selKind
	indices []int // selIndices; emitted in listing order, negatives allowed
	start   *int  // selSlice; nil means open
	end     *int
	filter  expr // selFilter
}

// Query is a compiled path expression, safe for reuse across evaluations.
type Query struct {
	sel  selector
	path []string
}

// Selection identifies one selected record. Index refers to the position in
// the evaluated document sequence. When the expression carries a projection
// chain, Projected is set and Value holds the dereferenced attribute.
type Selection struct {
	Index     int
	Value     interface{}
	Projected bool
}

// Compile parses a path expression. The returned Query is immutable.
func Compile(src string) (*Query, error) {
	return parse(src)
}

// Select evaluates the query over a document sequence and returns the
// selections in emission order.
func (q *Query) Select(docs []interface{}) []Selection {
	positions := q.sel.positions(docs)

	out := make([]Selection, 0, len(positions))
	for _, i := range positions {
		if len(q.path) == 0 {
			out = append(out, Selection{Index: i})
			continue
		}
		v := resolvePath(docs[i], q.path)
		if v == nil {
			// Records the projection chain does not reach are dropped.
			continue
		}
		out = append(out, Selection{Index: i, Value: v, Projected: true})
	}
	return out
}

func (s *selector) positions(docs []interface{}) []int {
	n := len(docs)

	switch s.kind {
	case selWildcard:
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out

	case selIndices:
		out := make([]int, 0, len(s.indices))
		for _, i := range s.indices {
			if i < 0 {
				i += n
			}
			if i >= 0 && i < n {
				out = append(out, i)
			}
		}
		return out

	case selSlice:
		start, end := 0, n
		if s.start != nil {
			start = *s.start
			if start < 0 {
				start += n
			}
		}
		if s.end != nil {
			end = *s.end
			if end < 0 {
				end += n
			}
		}
		start = clamp(start, 0, n)
		end = clamp(end, 0, n)
		var out []int
		for i := start; i < end; i++ {
			out = append(out, i)
		}
		return out

	case selFilter:
		var out []int
		for i, doc := range docs {
			if evalBool(s.filter, doc) {
				out = append(out, i)
			}
		}
		return out
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
