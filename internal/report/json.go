package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/soqlq/internal/model"
)

// JSONReporter returns the result as a value for the caller to encode.
// Records are passed through exactly as received and nothing is printed.
type JSONReporter struct {
	params Params
	opts   options
}

// NewJSONReporter creates a JSONReporter.
func NewJSONReporter(params Params, opts ...Option) *JSONReporter {
	return &JSONReporter{
		params: params,
		opts:   newOptions(opts),
	}
}

// Format returns FormatJSON.
func (r *JSONReporter) Format() Format {
	return FormatJSON
}

// Render returns a *model.QueryOutput holding the query, the fields and the
// records. Done is always true since pagination has completed upstream.
func (r *JSONReporter) Render(rows []model.Row) (any, error) {
	r.opts.logger.Debug("rendering json result", "records", len(rows))

	columns := r.params.Fields
	if columns == nil {
		columns = []model.Field{}
	}
	if rows == nil {
		rows = []model.Row{}
	}
	return &model.QueryOutput{
		Query:   r.params.Query,
		Columns: columns,
		Result: model.ResultSet{
			TotalSize: r.params.TotalCount,
			Done:      true,
			Records:   rows,
		},
	}, nil
}

// JSONWriter encodes values as JSON followed by a newline.
type JSONWriter struct {
	output io.Writer

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{output: output}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write marshals v and writes it to the output.
func (w *JSONWriter) Write(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// WriteEnvelope writes out in the {"status":0,"result":{"data":...}} form
// printed for JSON output.
func (w *JSONWriter) WriteEnvelope(out *model.QueryOutput) (int, error) {
	return w.Write(model.NewEnvelope(out))
}
