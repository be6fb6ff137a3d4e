package report

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/nao1215/soqlq/internal/model"
)

const (
	csvSeparator   = ","
	csvDoubleQuote = `"`
)

// lineTerminator is the end-of-line sequence of the host platform.
var lineTerminator = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// CSVReporter prints a header line and one line per row.
//
// A subquery occupies a fixed block of columns sized by the largest child
// count among the rows: for each position i a "<field>.totalSize" column
// followed by "<field>.records.<i>.<child>" per child column. Rows with
// fewer children leave the extra cells empty. A subquery without any child
// record is a single empty column named after the field.
type CSVReporter struct {
	baseWriter
	eol string
}

// NewCSVReporter creates a CSVReporter.
func NewCSVReporter(params Params, opts ...Option) *CSVReporter {
	return &CSVReporter{
		baseWriter: newBaseWriter(params, newOptions(opts)),
		eol:        lineTerminator,
	}
}

// Format returns FormatCSV.
func (r *CSVReporter) Format() Format {
	return FormatCSV
}

// Render writes the CSV text and returns a nil value.
func (r *CSVReporter) Render(rows []model.Row) (any, error) {
	r.logFields()

	fs := parseFields(r.params.Fields)
	prepared := copyRows(rows)
	for _, row := range prepared {
		deAlias(row, fs.aggregates)
	}

	columns, empty := r.columns(prepared)

	var sb strings.Builder
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = r.escape(c)
	}
	sb.WriteString(strings.Join(header, csvSeparator))
	sb.WriteString(r.eol)

	for i, row := range prepared {
		values := make([]string, len(columns))
		for j, c := range columns {
			if empty[c] {
				continue
			}
			s, err := cell(row, c, i)
			if err != nil {
				return nil, err
			}
			values[j] = r.escape(s)
		}
		sb.WriteString(strings.Join(values, csvSeparator))
		sb.WriteString(r.eol)
	}

	if _, err := r.output.Write([]byte(sb.String())); err != nil {
		return nil, err
	}
	return nil, nil
}

// columns computes the CSV header keys. Subquery blocks are sized by the
// largest totalSize found across all rows; subqueries with no children at
// all are returned in empty.
func (r *CSVReporter) columns(rows []model.Row) (columns []string, empty map[string]bool) {
	empty = make(map[string]bool)
	for _, f := range r.params.Fields {
		switch f.Kind() {
		case model.FieldKindSubquery:
			maxChildren := maxChildCount(rows, f.Name())
			if maxChildren == 0 {
				columns = append(columns, f.Name())
				empty[f.Name()] = true
				continue
			}
			for i := range maxChildren {
				columns = append(columns, f.Name()+".totalSize")
				for _, child := range f.Children() {
					columns = append(columns, f.Name()+".records."+strconv.Itoa(i)+"."+child.Name())
				}
			}
		case model.FieldKindFunction:
			columns = append(columns, f.Label())
		default:
			columns = append(columns, f.Name())
		}
	}
	return columns, empty
}

// maxChildCount returns the largest totalSize of the sub-result name.
func maxChildCount(rows []model.Row, name string) int {
	maxChildren := 0
	for _, row := range rows {
		sub, ok := model.AsSubResult(row[name])
		if ok && sub.TotalSize > maxChildren {
			maxChildren = sub.TotalSize
		}
	}
	return maxChildren
}

// escape quotes value if it contains the separator, a double quote or a
// character of the line terminator. Quotes inside are doubled.
func (r *CSVReporter) escape(value string) string {
	if strings.ContainsAny(value, csvSeparator+csvDoubleQuote+r.eol) {
		return csvDoubleQuote + strings.ReplaceAll(value, csvDoubleQuote, csvDoubleQuote+csvDoubleQuote) + csvDoubleQuote
	}
	return value
}
