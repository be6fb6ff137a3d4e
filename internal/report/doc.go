// Package report renders query results.
//
// Four reporters share the Reporter interface:
//   - HumanReporter: bold query line, table and record count for terminals
//   - CSVReporter: one line per record with subqueries spread over columns
//   - JSONReporter: the result value, for the caller to encode
//   - MarkdownReporter: the human table as a Markdown document
//
// Reporters are built per result with Params and used for one Render call.
// Input rows are deep copied before any massaging, so callers can render
// the same rows more than once.
//
// JSONWriter encodes the value returned by the JSONReporter, wrapped in the
// status envelope printed by the command line.
package report
