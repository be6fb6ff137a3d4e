// Package pipeline runs a query through its processing steps.
//
// A model.Execution flows through FetchRecordsStep, FetchColumnsStep and
// ClassifyStep; each step fills in its part and failures are recorded in
// the execution. BatchProcessor runs several queries concurrently using
// errgroup while keeping the results in input order.
package pipeline
