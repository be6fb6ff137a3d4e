package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/soqlq/internal/classifier"
	"github.com/nao1215/soqlq/internal/model"
)

// ErrNoResult is returned by steps that need the fetched records when
// FetchRecordsStep has not run.
var ErrNoResult = errors.New("no query result to work on")

// Querier runs queries against the record store.
// *transport.Client satisfies it.
type Querier interface {
	// Query returns every record matched by soql.
	Query(ctx context.Context, soql string) (*model.ResultSet, error)

	// Columns describes the columns of soql.
	Columns(ctx context.Context, soql string) ([]model.ColumnMetadata, error)
}

// FetchRecordsStep fetches all pages of the query result.
type FetchRecordsStep struct {
	querier Querier
	logger  *slog.Logger
}

// NewFetchRecordsStep creates a step that fetches records with querier.
func NewFetchRecordsStep(querier Querier, logger *slog.Logger) *FetchRecordsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchRecordsStep{querier: querier, logger: logger}
}

// Name returns the step name.
func (s *FetchRecordsStep) Name() string {
	return "fetch_records"
}

// Do executes the step.
func (s *FetchRecordsStep) Do(ctx context.Context, exec *model.Execution) error {
	rs, err := s.querier.Query(ctx, exec.Query)
	if err != nil {
		return fmt.Errorf("failed to run query: %w", err)
	}
	exec.Result = rs

	s.logger.Debug("records fetched",
		"total", rs.TotalSize,
		"fetched", len(rs.Records),
	)
	return nil
}

// FetchColumnsStep describes the columns of the query. Queries that matched
// no records are not described, leaving the execution without columns.
type FetchColumnsStep struct {
	querier Querier
	logger  *slog.Logger
}

// NewFetchColumnsStep creates a step that describes columns with querier.
func NewFetchColumnsStep(querier Querier, logger *slog.Logger) *FetchColumnsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchColumnsStep{querier: querier, logger: logger}
}

// Name returns the step name.
func (s *FetchColumnsStep) Name() string {
	return "fetch_columns"
}

// Do executes the step.
func (s *FetchColumnsStep) Do(ctx context.Context, exec *model.Execution) error {
	if exec.Result == nil {
		return ErrNoResult
	}
	if exec.Result.TotalSize == 0 {
		s.logger.Debug("no records, skipping column describe")
		exec.Columns = []model.ColumnMetadata{}
		return nil
	}

	columns, err := s.querier.Columns(ctx, exec.Query)
	if err != nil {
		return fmt.Errorf("failed to describe columns: %w", err)
	}
	exec.Columns = columns
	return nil
}

// ClassifyStep turns the column metadata into the field list.
type ClassifyStep struct{}

// NewClassifyStep creates a classification step.
func NewClassifyStep() *ClassifyStep {
	return &ClassifyStep{}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do executes the step.
func (s *ClassifyStep) Do(_ context.Context, exec *model.Execution) error {
	fields, err := classifier.Classify(exec.Columns)
	if err != nil {
		return err
	}
	exec.Fields = fields
	return nil
}

// NewQueryPipeline returns a pipeline with the fetch, describe and classify
// steps in order.
func NewQueryPipeline(querier Querier, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	p.AddSteps(
		NewFetchRecordsStep(querier, logger),
		NewFetchColumnsStep(querier, logger),
		NewClassifyStep(),
	)
	return p
}
