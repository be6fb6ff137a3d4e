package report

import (
	"fmt"

	"github.com/nao1215/soqlq/internal/model"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// HumanReporter prints the query in bold, a table of the rows and a summary
// line with the number of records retrieved.
//
// Nested sub-results are flattened: each child record becomes its own table
// row, keyed "<subquery>.<column>", directly below its parent.
type HumanReporter struct {
	baseWriter
}

// NewHumanReporter creates a HumanReporter.
func NewHumanReporter(params Params, opts ...Option) *HumanReporter {
	return &HumanReporter{
		baseWriter: newBaseWriter(params, newOptions(opts)),
	}
}

// Format returns FormatText.
func (r *HumanReporter) Format() Format {
	return FormatText
}

// Render writes the table and returns a nil value.
func (r *HumanReporter) Render(rows []model.Row) (any, error) {
	r.logFields()

	fs := parseFields(r.params.Fields)
	if len(fs.children) > 0 {
		r.logger.Debug("flattening subqueries", "children", fs.children)
	}

	nullMarker := r.bold.Sprint("null")
	prepared := copyRows(rows)
	for _, row := range prepared {
		replaceNulls(row, nullMarker)
	}
	prepared = massageRows(prepared, fs)

	if err := r.println(r.bold.Sprint(r.params.Query)); err != nil {
		return nil, err
	}

	if len(fs.columns) > 0 {
		if err := r.renderTable(fs.columns, prepared); err != nil {
			return nil, err
		}
	}

	if err := r.println(r.bold.Sprint(recordsRetrieved(r.params.TotalCount))); err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *HumanReporter) renderTable(columns []string, rows []model.Row) error {
	data, err := tableRows(columns, rows)
	if err != nil {
		return err
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = columnLabel(c)
	}

	table := tablewriter.NewTable(r.output, tablewriter.WithHeaderAutoFormat(tw.Off))
	table.Header(header...)
	for _, row := range data {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

// tableRows formats every column of every row.
func tableRows(columns []string, rows []model.Row) ([][]string, error) {
	data := make([][]string, 0, len(rows))
	for i, row := range rows {
		line := make([]string, len(columns))
		for j, col := range columns {
			s, err := cell(row, col, i)
			if err != nil {
				return nil, err
			}
			line[j] = s
		}
		data = append(data, line)
	}
	return data, nil
}

// recordsRetrieved is the summary line shared by the text reporters.
func recordsRetrieved(n int) string {
	return fmt.Sprintf("Total number of records retrieved: %d.", n)
}
