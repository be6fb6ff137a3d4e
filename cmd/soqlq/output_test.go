package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/soqlq/internal/model"
)

func TestNumberedPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path  string
		index int
		total int
		want  string
	}{
		{"out.json", 0, 1, "out.json"},
		{"out.json", 0, 3, "out-1.json"},
		{"dir/out.json", 2, 3, "dir/out-3.json"},
		{"result", 1, 2, "result-2"},
	}

	for _, tt := range tests {
		if got := numberedPath(tt.path, tt.index, tt.total); got != tt.want {
			t.Errorf("numberedPath(%q, %d, %d) = %q, want %q", tt.path, tt.index, tt.total, got, tt.want)
		}
	}
}

func savedAccounts(t *testing.T) string {
	t.Helper()

	out := &model.QueryOutput{
		Query: "SELECT Name, (SELECT LastName FROM Contacts) FROM Account",
		Columns: []model.Field{
			model.NewSimpleField("Name"),
			model.NewSubqueryField("Contacts", "LastName"),
		},
		Result: model.ResultSet{
			TotalSize: 1,
			Done:      true,
			Records: []model.Row{{
				"Name": "Acme",
				"Contacts": map[string]any{
					"totalSize": 2,
					"done":      true,
					"records": []any{
						map[string]any{"LastName": "Lovelace"},
						map[string]any{"LastName": "Hopper"},
					},
				},
			}},
		},
	}

	path := filepath.Join(t.TempDir(), "accounts.json")
	if err := saveOutput(path, out); err != nil {
		t.Fatalf("saveOutput() error = %v", err)
	}
	return path
}

func TestRenderCmd(t *testing.T) {
	t.Parallel()

	t.Run("renders saved result as csv", func(t *testing.T) {
		t.Parallel()

		path := savedAccounts(t)

		cmd := NewRenderCmd()
		var stdout bytes.Buffer
		cmd.SetOut(&stdout)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"-r", "csv", path})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := strings.Join([]string{
			"Name,Contacts.totalSize,Contacts.records.0.LastName,Contacts.totalSize,Contacts.records.1.LastName",
			"Acme,2,Lovelace,2,Hopper",
		}, eol()) + eol()
		if stdout.String() != want {
			t.Errorf("output = %q, want %q", stdout.String(), want)
		}
	})

	t.Run("renders saved result as markdown file", func(t *testing.T) {
		t.Parallel()

		path := savedAccounts(t)
		outPath := filepath.Join(t.TempDir(), "accounts.md")

		cmd := NewRenderCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"-r", "md", "-o", outPath, path})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"```sql", "Lovelace", "Hopper", "Total number of records retrieved: 1."} {
			if !strings.Contains(string(data), want) {
				t.Errorf("expected markdown to contain %q, got:\n%s", want, data)
			}
		}
	})

	t.Run("json flag prints envelope", func(t *testing.T) {
		t.Parallel()

		path := savedAccounts(t)

		cmd := NewRenderCmd()
		var stdout bytes.Buffer
		cmd.SetOut(&stdout)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--json", path})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(stdout.String(), "{\n  \"status\": 0,") {
			t.Errorf("unexpected envelope: %s", stdout.String())
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		cmd := NewRenderCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"-r", "xml", savedAccounts(t)})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error for unknown format")
		}
	})

	t.Run("fails for missing file", func(t *testing.T) {
		t.Parallel()

		cmd := NewRenderCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.json")})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
