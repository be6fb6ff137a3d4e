package report

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nao1215/soqlq/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fieldSet splits a field list the way the row massaging needs it.
type fieldSet struct {
	// columns are the display keys, in order.
	columns []string
	// children are the names of subquery fields.
	children []string
	// aggregates are the function fields without alias, in order.
	aggregates []model.Field
}

// parseFields computes the display keys of fields. Subquery children are
// shown as "<parent>.<child>".
func parseFields(fields []model.Field) fieldSet {
	var fs fieldSet
	for _, f := range fields {
		switch f.Kind() {
		case model.FieldKindSubquery:
			fs.children = append(fs.children, f.Name())
			for _, child := range f.Children() {
				fs.columns = append(fs.columns, f.Name()+"."+child.Name())
			}
		case model.FieldKindFunction:
			fs.columns = append(fs.columns, f.Label())
			if _, ok := f.Alias(); !ok {
				fs.aggregates = append(fs.aggregates, f)
			}
		default:
			fs.columns = append(fs.columns, f.Name())
		}
	}
	return fs
}

// deAlias copies the value of each unaliased aggregate from "expr<k>" to a
// key named after the aggregate.
func deAlias(row model.Row, aggregates []model.Field) {
	for k, agg := range aggregates {
		if v, ok := row["expr"+strconv.Itoa(k)]; ok {
			row[agg.Name()] = v
		}
	}
}

// flatten removes every subquery value from row and returns the row followed
// by one row per nested record, keyed "<subquery>.<key>".
func flatten(row model.Row, children []string) []model.Row {
	out := []model.Row{row}
	subs := make([]any, len(children))
	for i, child := range children {
		subs[i] = row[child]
		delete(row, child)
	}
	for i, child := range children {
		sub, ok := model.AsSubResult(subs[i])
		if !ok {
			continue
		}
		for _, record := range sub.Records {
			flat := make(model.Row, len(record))
			for key, v := range record {
				flat[child+"."+key] = v
			}
			out = append(out, flat)
		}
	}
	return out
}

// massageRows de-aliases aggregates and flattens subqueries of rows in place.
func massageRows(rows []model.Row, fs fieldSet) []model.Row {
	if len(fs.children) == 0 && len(fs.aggregates) == 0 {
		return rows
	}
	out := make([]model.Row, 0, len(rows))
	for _, row := range rows {
		deAlias(row, fs.aggregates)
		if len(fs.children) == 0 {
			out = append(out, row)
			continue
		}
		out = append(out, flatten(row, fs.children)...)
	}
	return out
}

// copyRows deep copies rows so that massaging leaves the caller's data alone.
func copyRows(rows []model.Row) []model.Row {
	out := make([]model.Row, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}

// replaceNulls substitutes marker for every nil value in v, descending into
// nested objects and arrays.
func replaceNulls(v any, marker string) any {
	switch val := v.(type) {
	case nil:
		return marker
	case model.Row:
		for k, inner := range val {
			val[k] = replaceNulls(inner, marker)
		}
		return val
	case map[string]any:
		for k, inner := range val {
			val[k] = replaceNulls(inner, marker)
		}
		return val
	case []model.Row:
		for _, inner := range val {
			replaceNulls(inner, marker)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = replaceNulls(inner, marker)
		}
		return val
	default:
		return v
	}
}

var upperPattern = regexp.MustCompile(`([A-Z])`)

// columnLabel turns a column key into a table heading:
// "NumberOfEmployees" becomes "Number Of Employees".
func columnLabel(key string) string {
	// A Caser keeps state and cannot be shared between goroutines.
	caser := cases.Title(language.Und)
	spaced := upperPattern.ReplaceAllString(key, " $1")
	tokens := strings.Fields(spaced)
	for i, token := range tokens {
		tokens[i] = caser.String(token)
	}
	return strings.Join(tokens, " ")
}

// formatValue returns the text form of a row value. Missing and nil values
// are empty; objects and arrays are written as JSON.
func formatValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return "", errNotRenderable
		}
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case model.Row, map[string]any, []any, []model.Row:
		data, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return fmt.Sprintf("%v", val), nil
	}
}

// cell looks up key in row and formats it. A failure is wrapped in a
// RenderError naming the column and row.
func cell(row model.Row, key string, index int) (string, error) {
	v, ok := row.Lookup(key)
	if !ok {
		return "", nil
	}
	s, err := formatValue(v)
	if err != nil {
		return "", &RenderError{Field: key, Row: index, Err: err}
	}
	return s, nil
}
