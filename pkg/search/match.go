package search

import (
	"fmt"
	"reflect"
	"strconv"
)

// Record is a flat field map a domain can be evaluated against.
type Record map[string]any

// Match reports whether record satisfies every clause of d. Unknown
// operators never match.
func (d Domain) Match(record Record) bool {
	for _, clause := range d {
		if !clause.Match(record) {
			return false
		}
	}
	return true
}

// Match evaluates a single clause. A false value on "=" matches empty fields.
// child_of is evaluated as equality since records carry no hierarchy.
func (c Clause) Match(record Record) bool {
	field := record[c.Field]
	switch c.Operator {
	case OpEqual, OpChildOf:
		if b, ok := c.Value.(bool); ok && !b {
			return isEmpty(field)
		}
		return equalValues(field, c.Value)
	case OpIn:
		if values, ok := asSlice(c.Value); ok {
			for _, v := range values {
				if containsOrEqual(field, v) {
					return true
				}
			}
			return false
		}
		return containsOrEqual(field, c.Value)
	case OpGTE:
		cmp, ok := compare(field, c.Value)
		return ok && cmp >= 0
	case OpLT:
		cmp, ok := compare(field, c.Value)
		return ok && cmp < 0
	default:
		return false
	}
}

func containsOrEqual(field, value any) bool {
	if items, ok := asSlice(field); ok {
		for _, item := range items {
			if equalValues(item, value) {
				return true
			}
		}
		return false
	}
	return equalValues(field, value)
}

func asSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case string:
		return val == ""
	}
	if items, ok := asSlice(v); ok {
		return len(items) == 0
	}
	return false
}

func equalValues(a, b any) bool {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1, true
	case sa > sb:
		return 1, true
	default:
		return 0, true
	}
}

func number(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
