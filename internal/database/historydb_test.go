package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/soqlq/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func newExecution(query string, startedAt time.Time) *model.Execution {
	exec := model.NewExecution(query)
	exec.StartedAt = startedAt
	exec.Elapsed = 1500 * time.Millisecond
	exec.Result = &model.ResultSet{TotalSize: 3, Done: true, Records: []model.Row{{}, {}, {}}}
	exec.Fields = []model.Field{model.NewSimpleField("Id"), model.NewSimpleField("Name")}
	return exec
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, DBFileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, DBFileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

func TestSaveAndGetExecution(t *testing.T) {
	t.Parallel()

	t.Run("round trips execution metadata", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		startedAt := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
		exec := newExecution("SELECT Id, Name FROM Account", startedAt)
		exec.OrgAlias = "prod"
		exec.UseTooling = true

		if err := db.SaveExecution(ctx, exec, "csv"); err != nil {
			t.Fatalf("SaveExecution() error = %v", err)
		}

		entry, err := db.GetExecution(ctx, exec.ID)
		if err != nil {
			t.Fatalf("GetExecution() error = %v", err)
		}

		if entry.Query != exec.Query || entry.OrgAlias != "prod" || !entry.UseTooling || entry.Format != "csv" {
			t.Errorf("unexpected entry: %+v", entry)
		}
		if entry.TotalSize != 3 || entry.FieldCount != 2 {
			t.Errorf("TotalSize/FieldCount = %d/%d, want 3/2", entry.TotalSize, entry.FieldCount)
		}
		if entry.Elapsed != 1500*time.Millisecond {
			t.Errorf("Elapsed = %v", entry.Elapsed)
		}
		if !entry.ExecutedAt.Equal(startedAt) {
			t.Errorf("ExecutedAt = %v, want %v", entry.ExecutedAt, startedAt)
		}
		if entry.Fingerprint != Fingerprint(exec.Query) {
			t.Errorf("Fingerprint = %q", entry.Fingerprint)
		}
		if entry.Failed() {
			t.Error("expected successful entry")
		}
	})

	t.Run("stores failures", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		exec := model.NewExecution("SELECT FROM")
		exec.Error = errors.New("MALFORMED_QUERY")
		exec.ErrorMessage = exec.Error.Error()

		if err := db.SaveExecution(ctx, exec, "human"); err != nil {
			t.Fatalf("SaveExecution() error = %v", err)
		}

		entry, err := db.GetExecution(ctx, exec.ID)
		if err != nil {
			t.Fatalf("GetExecution() error = %v", err)
		}
		if !entry.Failed() || entry.Error != "MALFORMED_QUERY" {
			t.Errorf("expected stored failure, got %+v", entry)
		}
		if entry.TotalSize != 0 {
			t.Errorf("TotalSize = %d, want 0", entry.TotalSize)
		}
	})

	t.Run("replaces entry saved twice", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		exec := newExecution("SELECT Id FROM Account", time.Now())
		if err := db.SaveExecution(ctx, exec, "human"); err != nil {
			t.Fatal(err)
		}
		if err := db.SaveExecution(ctx, exec, "json"); err != nil {
			t.Fatal(err)
		}

		entries, err := db.ListHistory(ctx, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Format != "json" {
			t.Errorf("expected single json entry, got %d entries", len(entries))
		}
	})

	t.Run("returns ErrEntryNotFound for unknown id", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		_, err := db.GetExecution(context.Background(), "does-not-exist")
		if !errors.Is(err, ErrEntryNotFound) {
			t.Errorf("expected ErrEntryNotFound, got %v", err)
		}
	})
}

func TestListHistory(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	queries := []string{"SELECT Id FROM A", "SELECT Id FROM B", "SELECT Id FROM C"}
	for i, q := range queries {
		if err := db.SaveExecution(ctx, newExecution(q, base.Add(time.Duration(i)*time.Hour)), "human"); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("returns newest first", func(t *testing.T) {
		t.Parallel()

		entries, err := db.ListHistory(ctx, 0)
		if err != nil {
			t.Fatalf("ListHistory() error = %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}
		if entries[0].Query != "SELECT Id FROM C" || entries[2].Query != "SELECT Id FROM A" {
			t.Errorf("unexpected order: %s, %s, %s", entries[0].Query, entries[1].Query, entries[2].Query)
		}
	})

	t.Run("applies limit", func(t *testing.T) {
		t.Parallel()

		entries, err := db.ListHistory(ctx, 2)
		if err != nil {
			t.Fatalf("ListHistory() error = %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("expected 2 entries, got %d", len(entries))
		}
	})
}

func TestCountByFingerprint(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	for _, q := range []string{
		"SELECT Id FROM Account",
		"select  id\n from account",
		"SELECT Id FROM Contact",
	} {
		if err := db.SaveExecution(ctx, newExecution(q, time.Now()), "human"); err != nil {
			t.Fatal(err)
		}
	}

	count, err := db.CountByFingerprint(ctx, "SELECT Id FROM   Account")
	if err != nil {
		t.Fatalf("CountByFingerprint() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	count, err = db.CountByFingerprint(ctx, "SELECT Id FROM Lead")
	if err != nil {
		t.Fatalf("CountByFingerprint() error = %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestDeleteBefore(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	old := newExecution("SELECT Id FROM Old", cutoff.Add(-time.Nanosecond))
	recent := newExecution("SELECT Id FROM Recent", cutoff)

	for _, exec := range []*model.Execution{old, recent} {
		if err := db.SaveExecution(ctx, exec, "human"); err != nil {
			t.Fatal(err)
		}
	}

	n, err := db.DeleteBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d entries, want 1", n)
	}

	if _, err := db.GetExecution(ctx, old.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected old entry to be deleted, got %v", err)
	}
	if _, err := db.GetExecution(ctx, recent.ID); err != nil {
		t.Errorf("expected recent entry to remain, got %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2026-03-14 09:26:53.589793000", time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)},
		{"2026-03-14 09:26:53", time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)},
		{"2026-03-14T09:26:53Z", time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)},
		{"not a time", time.Time{}},
	}

	for _, tt := range tests {
		if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
