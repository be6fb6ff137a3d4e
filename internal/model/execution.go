package model

import (
	"time"

	"github.com/google/uuid"
)

// Execution carries one query through the fetch and classify steps.
// Each step fills in its part; failures are recorded instead of discarded so
// that history keeps a trace of them.
type Execution struct {
	// ID uniquely identifies the execution in the history store.
	ID string `json:"id"`

	// Query is the SOQL text sent to the record store.
	Query string `json:"query"`

	// OrgAlias is the configured org the query ran against, if any.
	OrgAlias string `json:"orgAlias,omitempty"`

	// UseTooling routes the query to the tooling API.
	UseTooling bool `json:"useTooling"`

	// Result is the fetched record payload.
	Result *ResultSet `json:"result,omitempty"`

	// Columns is the raw column metadata. It stays empty for queries that
	// matched no records.
	Columns []ColumnMetadata `json:"columns,omitempty"`

	// Fields is the classified field list.
	Fields []Field `json:"fields,omitempty"`

	// StartedAt is when the first step began.
	StartedAt time.Time `json:"startedAt"`

	// Elapsed is the wall time spent in the pipeline.
	Elapsed time.Duration `json:"elapsed"`

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string `json:"performedSteps"`

	// Error is the error that stopped the pipeline.
	Error error `json:"-"`

	// ErrorMessage is the text of Error, kept for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewExecution returns an execution for query with a fresh ID.
func NewExecution(query string) *Execution {
	return &Execution{
		ID:             uuid.NewString(),
		Query:          query,
		StartedAt:      time.Now(),
		PerformedSteps: make([]string, 0),
	}
}

// Failed reports whether a step recorded an error.
func (e *Execution) Failed() bool {
	return e.Error != nil || e.ErrorMessage != ""
}

// TotalSize returns the number of records matched, or 0 before fetching.
func (e *Execution) TotalSize() int {
	if e.Result == nil {
		return 0
	}
	return e.Result.TotalSize
}

// QueryResult returns the reporter input for this execution.
func (e *Execution) QueryResult() *QueryResult {
	return NewQueryResult(e.Query, e.Fields, e.Result)
}

// Output returns the JSON form of the execution's result.
func (e *Execution) Output() *QueryOutput {
	out := &QueryOutput{
		Query:   e.Query,
		Columns: e.Fields,
		Result:  ResultSet{Records: []Row{}, Done: true},
	}
	if out.Columns == nil {
		out.Columns = []Field{}
	}
	if e.Result != nil {
		out.Result.TotalSize = e.Result.TotalSize
		if e.Result.Records != nil {
			out.Result.Records = e.Result.Records
		}
	}
	return out
}
