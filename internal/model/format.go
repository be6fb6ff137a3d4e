package model

import (
	"errors"
	"fmt"
	"strings"
)

// ResultFormat selects how a query result is presented.
type ResultFormat string

const (
	// ResultFormatHuman prints a bold query line, a table and a summary.
	ResultFormatHuman ResultFormat = "human"

	// ResultFormatCSV prints comma separated values with expanded subqueries.
	ResultFormatCSV ResultFormat = "csv"

	// ResultFormatJSON returns the result set unchanged.
	ResultFormatJSON ResultFormat = "json"

	// ResultFormatMarkdown prints the query and table as Markdown.
	ResultFormatMarkdown ResultFormat = "markdown"
)

// ErrUnknownResultFormat is returned for a result format that has no reporter.
var ErrUnknownResultFormat = errors.New("unknown result format")

// ResultFormats lists the supported formats in the order shown in help text.
func ResultFormats() []ResultFormat {
	return []ResultFormat{
		ResultFormatHuman,
		ResultFormatCSV,
		ResultFormatJSON,
		ResultFormatMarkdown,
	}
}

// ParseResultFormat converts a user supplied format name. Matching ignores
// case and surrounding whitespace; "md" is accepted for markdown.
func ParseResultFormat(s string) (ResultFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human":
		return ResultFormatHuman, nil
	case "csv":
		return ResultFormatCSV, nil
	case "json":
		return ResultFormatJSON, nil
	case "markdown", "md":
		return ResultFormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownResultFormat, s)
	}
}

// String returns the format name.
func (f ResultFormat) String() string {
	return string(f)
}
