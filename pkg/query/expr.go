package query

import (
	"reflect"
	"strings"
)

// expr is a filter expression node. Evaluation resolves against the
// candidate record (the "@" of the expression) and never fails: absent
// attributes evaluate to nil.
type expr interface {
	eval(doc interface{}) interface{}
}

// pathExpr dereferences an attribute chain of the candidate record.
type pathExpr struct {
	attrs []string
}

func (e *pathExpr) eval(doc interface{}) interface{} {
	return resolvePath(doc, e.attrs)
}

// literalExpr holds a number (float64), string, bool, or nil.
type literalExpr struct {
	val interface{}
}

func (e *literalExpr) eval(interface{}) interface{} {
	return e.val
}

type cmpOp uint8

const (
	opEq cmpOp = iota
	opNe
	opLt
	opLe
	opGt
	opGe
)

type cmpExpr struct {
	op       cmpOp
	lhs, rhs expr
}

func (e *cmpExpr) eval(doc interface{}) interface{} {
	return compare(e.op, e.lhs.eval(doc), e.rhs.eval(doc))
}

type logicOp uint8

const (
	opAnd logicOp = iota
	opOr
)

type logicExpr struct {
	op       logicOp
	lhs, rhs expr
}

func (e *logicExpr) eval(doc interface{}) interface{} {
	// Short-circuit.
	left := evalBool(e.lhs, doc)
	if e.op == opAnd {
		return left && evalBool(e.rhs, doc)
	}
	return left || evalBool(e.rhs, doc)
}

type notExpr struct {
	inner expr
}

func (e *notExpr) eval(doc interface{}) interface{} {
	return !evalBool(e.inner, doc)
}

// evalBool reduces an expression to the filter's accept/reject decision.
// A bare attribute chain is an existence test: truthy iff the attribute is
// present and not null. Any other non-boolean result goes through the
// truthiness rules.
func evalBool(e expr, doc interface{}) bool {
	if p, ok := e.(*pathExpr); ok {
		return p.eval(doc) != nil
	}
	return truthy(e.eval(doc))
}

// truthy applies the selection-value truthiness rules: booleans directly,
// numbers iff non-zero, strings iff non-empty, arrays and objects iff
// non-empty, null/absent falsy.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
		return false
	}
}

// resolvePath walks an attribute chain through nested objects. A missing
// attribute or a non-object intermediate yields nil.
func resolvePath(doc interface{}, attrs []string) interface{} {
	cur := doc
	for _, attr := range attrs {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = obj[attr]
		if !ok {
			return nil
		}
	}
	return cur
}

func compare(op cmpOp, a, b interface{}) bool {
	switch op {
	case opEq:
		return looseEqual(a, b)
	case opNe:
		return !looseEqual(a, b)
	}

	// Ordering. Numbers compare cross-typed; strings compare
	// lexicographically; everything else (booleans included) does not order.
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return false
		}
		switch op {
		case opLt:
			return af < bf
		case opLe:
			return af <= bf
		case opGt:
			return af > bf
		case opGe:
			return af >= bf
		}
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return false
		}
		c := strings.Compare(as, bs)
		switch op {
		case opLt:
			return c < 0
		case opLe:
			return c <= 0
		case opGt:
			return c > 0
		case opGe:
			return c >= 0
		}
	}
	return false
}

// looseEqual compares values the way the document model does: numbers
// cross-typed, otherwise deep equality. Mismatched types are unequal.
func looseEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb
	}
	return reflect.DeepEqual(a, b)
}

// toFloat widens any numeric document value. JSON decodes numbers to
// float64; the binary codec yields uint64, int64, or float64.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
