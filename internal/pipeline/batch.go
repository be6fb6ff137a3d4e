package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/soqlq/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of queries run at once when no
// concurrency is configured.
const DefaultConcurrency = 4

// BatchProcessor runs several queries concurrently, each through its own
// pipeline. Results keep the order of the input queries.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each query.
	pipelineFactory func() *Pipeline

	// execFactory creates the execution for a query.
	execFactory func(query string) *model.Execution

	// concurrency is the maximum number of concurrent queries.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent queries.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithExecutionFactory sets how executions are created, e.g. to stamp the
// org alias on each of them.
func WithExecutionFactory(factory func(query string) *model.Execution) BatchOption {
	return func(b *BatchProcessor) {
		if factory != nil {
			b.execFactory = factory
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each query so that pipeline
// state never leaks between queries.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		execFactory:     model.NewExecution,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs every query and returns their executions in input order.
//
// A failing query does not stop the others; its error is recorded in its
// execution. The returned error is only set when ctx is cancelled, in which
// case executions of queries that never started are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, queries []string) ([]*model.Execution, error) {
	results := make([]*model.Execution, len(queries))

	err := bp.ProcessBatchWithCallback(ctx, queries, func(exec *model.Execution, index int) {
		// each goroutine owns its own index
		results[index] = exec
	})

	return results, err
}

// ProcessBatchWithCallback runs every query and calls callback for each
// completed execution with the index of its query.
//
// The callback is called from the goroutine that ran the query, so it must
// be safe for concurrent use if it touches shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	queries []string,
	callback func(exec *model.Execution, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_queries", len(queries),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, query := range queries {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("running query",
				"index", i+1,
				"total", len(queries),
			)

			exec := bp.execFactory(query)
			if err := bp.pipelineFactory().Execute(ctx, exec); err != nil {
				bp.logger.Warn("query failed",
					"index", i+1,
					"error", err,
				)
			}

			callback(exec, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_queries", len(queries),
		"elapsed", time.Since(startTime),
	)

	return err
}
