package report

import (
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/soqlq/internal/model"
)

// MarkdownReporter writes the query as a SQL code block followed by the
// same table the HumanReporter prints, as a Markdown table.
type MarkdownReporter struct {
	baseWriter
}

// NewMarkdownReporter creates a MarkdownReporter.
func NewMarkdownReporter(params Params, opts ...Option) *MarkdownReporter {
	o := newOptions(opts)
	o.color = false
	return &MarkdownReporter{
		baseWriter: newBaseWriter(params, o),
	}
}

// Format returns FormatMarkdown.
func (r *MarkdownReporter) Format() Format {
	return FormatMarkdown
}

// Render writes the Markdown document and returns a nil value.
func (r *MarkdownReporter) Render(rows []model.Row) (any, error) {
	r.logFields()

	fs := parseFields(r.params.Fields)
	prepared := copyRows(rows)
	for _, row := range prepared {
		replaceNulls(row, "*null*")
	}
	prepared = massageRows(prepared, fs)

	md := markdown.NewMarkdown(r.output)
	md.H2("Query")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlight("sql"), r.params.Query)
	md.PlainText("")

	if len(fs.columns) > 0 {
		data, err := tableRows(fs.columns, prepared)
		if err != nil {
			return nil, err
		}
		header := make([]string, len(fs.columns))
		for i, c := range fs.columns {
			header[i] = escapeCell(columnLabel(c))
		}
		for _, line := range data {
			for i := range line {
				line[i] = escapeCell(line[i])
			}
		}

		md.H2("Records")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: header,
			Rows:   data,
		})
		md.PlainText("")
	}

	md.PlainText(recordsRetrieved(r.params.TotalCount))

	return nil, md.Build()
}

// escapeCell keeps pipes and line breaks from breaking the table layout.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
