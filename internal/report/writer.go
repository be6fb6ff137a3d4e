package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/nao1215/soqlq/internal/model"
)

// Format is the kind of output a reporter produces. It doubles as a file
// extension for saved output.
type Format string

const (
	// FormatText is the human table.
	FormatText Format = "txt"
	// FormatCSV is comma separated values.
	FormatCSV Format = "csv"
	// FormatJSON is the JSON result value.
	FormatJSON Format = "json"
	// FormatMarkdown is a Markdown document.
	FormatMarkdown Format = "md"
)

// ErrUnknownFormat is returned by New for a result format without a reporter.
var ErrUnknownFormat = model.ErrUnknownResultFormat

// Reporter renders the rows of one query result.
//
// A reporter is built for a single result, used for one Render call and
// then discarded. Text reporters write to their output and return a nil
// value; the JSON reporter writes nothing and returns the value to encode.
type Reporter interface {
	// Render formats rows. Rows are never modified.
	Render(rows []model.Row) (any, error)

	// Format returns the kind of output produced.
	Format() Format
}

// Params is the per-result input every reporter is constructed with.
type Params struct {
	// Fields is the classified field list in display order.
	Fields []model.Field

	// Query is the query text that produced the rows.
	Query string

	// TotalCount is the number of records the query matched.
	TotalCount int
}

// ParamsFrom returns the reporter parameters of a query result.
func ParamsFrom(qr *model.QueryResult) Params {
	return Params{
		Fields:     qr.Fields,
		Query:      qr.Query,
		TotalCount: qr.TotalSize,
	}
}

// RenderError reports a value that could not be rendered.
type RenderError struct {
	// Field is the column being rendered.
	Field string
	// Row is the zero-based index of the rendered row.
	Row int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render field %q of row %d: %v", e.Field, e.Row, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// errNotRenderable is wrapped in a RenderError for values with no text form.
var errNotRenderable = errors.New("value cannot be rendered as text")

// Option configures a reporter.
type Option func(*options)

type options struct {
	output io.Writer
	logger *slog.Logger
	color  bool
}

// WithOutput sets the destination of text reporters. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithLogger sets the logger used to report the parsed fields.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithColor forces bold output on or off. By default it follows the
// terminal detection of fatih/color.
func WithColor(enabled bool) Option {
	return func(o *options) {
		o.color = enabled
	}
}

func newOptions(opts []Option) options {
	o := options{
		output: os.Stdout,
		color:  !color.NoColor,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// baseWriter provides common functionality for text reporters.
type baseWriter struct {
	output io.Writer
	params Params
	logger *slog.Logger
	bold   *color.Color
}

// newBaseWriter creates a baseWriter from the reporter parameters.
func newBaseWriter(params Params, o options) baseWriter {
	bold := color.New(color.Bold)
	if o.color {
		bold.EnableColor()
	} else {
		bold.DisableColor()
	}
	return baseWriter{
		output: o.output,
		params: params,
		logger: o.logger,
		bold:   bold,
	}
}

// logFields reports the fields a reporter is about to render.
func (w *baseWriter) logFields() {
	if len(w.params.Fields) == 0 {
		w.logger.Info("no fields found", "query", w.params.Query)
		return
	}
	names := make([]string, 0, len(w.params.Fields))
	for _, f := range w.params.Fields {
		names = append(names, f.String())
	}
	w.logger.Debug("found fields", "fields", names)
}

// println writes a single line to the output.
func (w *baseWriter) println(s string) error {
	_, err := fmt.Fprintln(w.output, s)
	return err
}
