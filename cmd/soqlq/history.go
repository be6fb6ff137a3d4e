package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/soqlq/internal/config"
	"github.com/nao1215/soqlq/internal/database"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

// maxQueryWidth is the number of query characters shown per history row.
const maxQueryWidth = 60

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously executed queries",
		Long: `History lists the queries recorded in the local history database,
newest first. Only execution metadata is recorded, never the records.

Examples:
  # Show the last 20 executions
  soqlq history

  # Show the last 100 executions
  soqlq history --limit 100

  # Show one execution in detail
  soqlq history --show 1b4e28ba-2fa1-11d2-883f-0016d3cca427

  # Remove executions recorded before 2026-01-01
  soqlq history --prune-before 2026-01-01`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit, "Number of entries to list (0 lists all)")
	cmd.Flags().String("show", "", "Show the execution with this id")
	cmd.Flags().String("prune-before", "", "Remove entries recorded before this date (YYYY-MM-DD)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	show, err := cmd.Flags().GetString("show")
	if err != nil {
		return err
	}
	pruneBefore, err := cmd.Flags().GetString("prune-before")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.Options{CreateIfNotExists: false})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No history recorded yet.")
		return nil //nolint:nilerr // A missing database only means nothing was run yet
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case pruneBefore != "":
		return pruneHistory(ctx, cmd.OutOrStdout(), db, pruneBefore)
	case show != "":
		return showHistoryEntry(ctx, cmd.OutOrStdout(), db, show)
	default:
		return listHistory(ctx, cmd.OutOrStdout(), db, limit, time.Now())
	}
}

// pruneHistory removes entries recorded before the local date day.
func pruneHistory(ctx context.Context, w io.Writer, db *database.HistoryDB, day string) error {
	cutoff, err := time.ParseInLocation(time.DateOnly, day, time.Local)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", day)
	}

	n, err := db.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Removed %s %s recorded before %s.\n",
		humanize.Comma(n), plural(int(n), "entry", "entries"), day)
	return nil
}

// resolveID expands an id prefix, as printed by the history listing, to
// the full id of a single entry.
func resolveID(ctx context.Context, db *database.HistoryDB, prefix string) (string, error) {
	entries, err := db.ListHistory(ctx, 0)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.ID, prefix) {
			matches = append(matches, entry.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", database.ErrEntryNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous id %q matches %d entries", prefix, len(matches))
	}
}

// showHistoryEntry prints every recorded detail of one execution.
func showHistoryEntry(ctx context.Context, w io.Writer, db *database.HistoryDB, prefix string) error {
	id, err := resolveID(ctx, db, prefix)
	if err != nil {
		return err
	}

	entry, err := db.GetExecution(ctx, id)
	if err != nil {
		return err
	}

	runs, err := db.CountByFingerprint(ctx, entry.Query)
	if err != nil {
		return err
	}

	status := "ok"
	if entry.Failed() {
		status = entry.Error
	}

	fmt.Fprintf(w, "ID:        %s\n", entry.ID)
	fmt.Fprintf(w, "Executed:  %s (%s)\n", entry.ExecutedAt.Local().Format(time.DateTime), humanize.Time(entry.ExecutedAt))
	fmt.Fprintf(w, "Org:       %s\n", orDash(entry.OrgAlias))
	fmt.Fprintf(w, "Tooling:   %t\n", entry.UseTooling)
	fmt.Fprintf(w, "Format:    %s\n", orDash(entry.Format))
	fmt.Fprintf(w, "Records:   %s\n", humanize.Comma(int64(entry.TotalSize)))
	fmt.Fprintf(w, "Fields:    %d\n", entry.FieldCount)
	fmt.Fprintf(w, "Elapsed:   %s\n", entry.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Runs:      %d\n", runs)
	fmt.Fprintf(w, "Status:    %s\n", status)
	fmt.Fprintf(w, "Query:\n  %s\n", entry.Query)
	return nil
}

// listHistory prints the most recent entries as a table. Times are shown
// relative to now.
func listHistory(ctx context.Context, w io.Writer, db *database.HistoryDB, limit int, now time.Time) error {
	entries, err := db.ListHistory(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history recorded yet.")
		return nil
	}

	table := tablewriter.NewTable(w, tablewriter.WithHeaderAutoFormat(tw.Off))
	table.Header("ID", "When", "Org", "Format", "Records", "Elapsed", "Status", "Query")

	for _, entry := range entries {
		status := "ok"
		if entry.Failed() {
			status = "failed"
		}
		row := []string{
			shortID(entry.ID),
			humanize.RelTime(entry.ExecutedAt, now, "ago", "from now"),
			orDash(entry.OrgAlias),
			orDash(entry.Format),
			humanize.Comma(int64(entry.TotalSize)),
			entry.Elapsed.Round(time.Millisecond).String(),
			status,
			truncate(oneLine(entry.Query), maxQueryWidth),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}

	return table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
