package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Row is one record of a query result keyed by field name.
//
// Values are scalars, nil, nested objects (map[string]any or Row), arrays,
// or sub-results shaped as {"totalSize", "done", "records"}.
type Row map[string]any

// SubResult is a nested child result set found inside a Row.
type SubResult struct {
	TotalSize int
	Done      bool
	Records   []Row
}

// Clone returns a deep copy of the row. Nested maps and slices are copied so
// the clone can be modified without affecting the original.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep copies maps and slices; scalars are returned as is.
func cloneValue(v any) any {
	switch val := v.(type) {
	case Row:
		return val.Clone()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case []Row:
		out := make([]Row, len(val))
		for i, inner := range val {
			out[i] = inner.Clone()
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// Lookup returns the value stored under path.
//
// A key equal to the whole path wins. Otherwise path is split on "." and
// walked through nested objects; numeric segments index into arrays, so
// "Contacts.records.3.LastName" reaches the fourth child record.
func (r Row) Lookup(path string) (any, bool) {
	if v, ok := r[path]; ok {
		return v, true
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}

	var current any = r
	for _, segment := range strings.Split(path, ".") {
		next, ok := child(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// child returns the element named segment inside v.
func child(v any, segment string) (any, bool) {
	switch val := v.(type) {
	case Row:
		inner, ok := val[segment]
		return inner, ok
	case map[string]any:
		inner, ok := val[segment]
		return inner, ok
	case []any:
		i, err := strconv.Atoi(segment)
		if err != nil || i < 0 || i >= len(val) {
			return nil, false
		}
		return val[i], true
	case []Row:
		i, err := strconv.Atoi(segment)
		if err != nil || i < 0 || i >= len(val) {
			return nil, false
		}
		return val[i], true
	default:
		return nil, false
	}
}

// AsSubResult interprets v as a nested sub-result. It reports false for nil,
// scalars and objects without a "records" array.
func AsSubResult(v any) (SubResult, bool) {
	var obj map[string]any
	switch val := v.(type) {
	case SubResult:
		return val, true
	case *SubResult:
		if val == nil {
			return SubResult{}, false
		}
		return *val, true
	case *ResultSet:
		if val == nil {
			return SubResult{}, false
		}
		return SubResult{TotalSize: val.TotalSize, Done: val.Done, Records: val.Records}, true
	case Row:
		obj = val
	case map[string]any:
		obj = val
	default:
		return SubResult{}, false
	}

	rawRecords, ok := obj["records"]
	if !ok {
		return SubResult{}, false
	}

	var sub SubResult
	switch records := rawRecords.(type) {
	case []Row:
		sub.Records = records
	case []any:
		sub.Records = make([]Row, 0, len(records))
		for _, rec := range records {
			switch r := rec.(type) {
			case Row:
				sub.Records = append(sub.Records, r)
			case map[string]any:
				sub.Records = append(sub.Records, Row(r))
			default:
				return SubResult{}, false
			}
		}
	case nil:
	default:
		return SubResult{}, false
	}

	if size, ok := ToInt(obj["totalSize"]); ok {
		sub.TotalSize = size
	} else {
		sub.TotalSize = len(sub.Records)
	}
	if done, ok := obj["done"].(bool); ok {
		sub.Done = done
	}
	return sub, true
}

// ToInt converts the numeric representations produced by JSON decoding
// (json.Number, float64) and plain Go integers to int.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}
