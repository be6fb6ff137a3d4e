package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/soqlq/internal/model"
	"github.com/nao1215/soqlq/internal/report"
)

// renderOutput renders out in format to w. The JSON format is printed as
// the {"status":0,"result":{"data":...}} envelope.
func renderOutput(w io.Writer, format model.ResultFormat, out *model.QueryOutput, logger *slog.Logger, useColor bool) error {
	params := report.Params{
		Fields:     out.Columns,
		Query:      out.Query,
		TotalCount: out.Result.TotalSize,
	}

	reporter, err := report.New(format, params,
		report.WithOutput(w),
		report.WithLogger(logger),
		report.WithColor(useColor),
	)
	if err != nil {
		return err
	}

	value, err := reporter.Render(out.Result.Records)
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}

	if qo, ok := value.(*model.QueryOutput); ok {
		if _, err := report.NewJSONWriter(w, report.WithPrettyPrint()).WriteEnvelope(qo); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
	}
	return nil
}

// createFile creates path and its parent directories. Results may contain
// business data, so the file is only readable by the owner.
func createFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// saveOutput writes out as indented JSON to path.
func saveOutput(path string, out *model.QueryOutput) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := report.NewJSONWriter(f, report.WithPrettyPrint()).Write(out); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// loadOutput reads a result saved with saveOutput.
func loadOutput(path string) (*model.QueryOutput, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read saved result: %w", err)
	}
	return model.DecodeQueryOutput(data)
}

// numberedPath returns path unchanged for a single query and inserts the
// 1-based query number before the extension otherwise:
// "out.json" becomes "out-2.json".
func numberedPath(path string, index, total int) string {
	if total <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + strconv.Itoa(index+1) + ext
}
