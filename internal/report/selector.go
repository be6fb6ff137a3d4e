package report

import (
	"fmt"

	"github.com/nao1215/soqlq/internal/model"
)

// New returns the reporter for format. The format must be one of
// model.ResultFormats; anything else fails with ErrUnknownFormat before any
// rendering takes place.
func New(format model.ResultFormat, params Params, opts ...Option) (Reporter, error) {
	switch format {
	case model.ResultFormatHuman:
		return NewHumanReporter(params, opts...), nil
	case model.ResultFormatCSV:
		return NewCSVReporter(params, opts...), nil
	case model.ResultFormatJSON:
		return NewJSONReporter(params, opts...), nil
	case model.ResultFormatMarkdown:
		return NewMarkdownReporter(params, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// NewFromName parses name as a result format and returns its reporter.
func NewFromName(name string, params Params, opts ...Option) (Reporter, error) {
	format, err := model.ParseResultFormat(name)
	if err != nil {
		return nil, err
	}
	return New(format, params, opts...)
}
