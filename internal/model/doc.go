// Package model defines the data structures shared by the query pipeline,
// the reporters and the CLI.
//
// The main types are:
//   - ColumnMetadata: a column as described by the REST API
//   - Field: a classified column (plain, subquery or aggregate function)
//   - Row and ResultSet: records as returned by a query
//   - QueryOutput and Envelope: the JSON forms of a rendered result
//   - Execution: one query carried through the pipeline
//
// Models live in their own package so that the pipeline, report and
// database packages can share them without import cycles.
package model
