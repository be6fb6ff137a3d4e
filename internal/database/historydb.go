package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/soqlq/internal/model"
)

// DBFileName is the name of the history database file inside the data dir.
const DBFileName = "history.db"

// timeLayout is the fixed-width UTC layout used for stored timestamps.
// Its lexical order matches chronological order.
const timeLayout = "2006-01-02 15:04:05.000000000"

// ErrEntryNotFound is returned when no history entry has the requested id.
var ErrEntryNotFound = errors.New("history entry not found")

// HistoryDB provides SQLite-based storage for executed queries.
// Only execution metadata is kept; records are never stored.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS executions (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		org_alias TEXT NOT NULL DEFAULT '',
		tooling INTEGER NOT NULL DEFAULT 0,
		format TEXT NOT NULL DEFAULT '',
		total_size INTEGER NOT NULL DEFAULT 0,
		field_count INTEGER NOT NULL DEFAULT 0,
		elapsed_ns INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		executed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_executions_fingerprint ON executions(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_executions_executed_at ON executions(executed_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// HistoryEntry is one stored execution.
type HistoryEntry struct {
	ID          string
	Query       string
	Fingerprint string
	OrgAlias    string
	UseTooling  bool
	Format      string
	TotalSize   int
	FieldCount  int
	Elapsed     time.Duration
	Error       string
	ExecutedAt  time.Time
}

// Failed reports whether the execution ended with an error.
func (e *HistoryEntry) Failed() bool {
	return e.Error != ""
}

// SaveExecution stores the metadata of exec rendered in format.
// Saving the same execution twice replaces the earlier entry.
func (hdb *HistoryDB) SaveExecution(ctx context.Context, exec *model.Execution, format string) error {
	executedAt := exec.StartedAt
	if executedAt.IsZero() {
		executedAt = time.Now()
	}

	query := `
	INSERT INTO executions (id, query, fingerprint, org_alias, tooling, format, total_size, field_count, elapsed_ns, error, executed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		format = excluded.format,
		total_size = excluded.total_size,
		field_count = excluded.field_count,
		elapsed_ns = excluded.elapsed_ns,
		error = excluded.error
	`

	_, err := hdb.db.ExecContext(ctx, query,
		exec.ID,
		exec.Query,
		Fingerprint(exec.Query),
		exec.OrgAlias,
		exec.UseTooling,
		format,
		exec.TotalSize(),
		len(exec.Fields),
		int64(exec.Elapsed),
		exec.ErrorMessage,
		formatTimestamp(executedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}
	return nil
}

const selectEntry = `
	SELECT id, query, fingerprint, org_alias, tooling, format, total_size, field_count, elapsed_ns, error, executed_at
	FROM executions
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*HistoryEntry, error) {
	var (
		entry      HistoryEntry
		elapsedNS  int64
		executedAt string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.Query,
		&entry.Fingerprint,
		&entry.OrgAlias,
		&entry.UseTooling,
		&entry.Format,
		&entry.TotalSize,
		&entry.FieldCount,
		&elapsedNS,
		&entry.Error,
		&executedAt,
	); err != nil {
		return nil, err
	}
	entry.Elapsed = time.Duration(elapsedNS)
	entry.ExecutedAt = parseTimestamp(executedAt)
	return &entry, nil
}

// ListHistory returns the most recent entries, newest first.
// A limit of zero or less returns every entry.
func (hdb *HistoryDB) ListHistory(ctx context.Context, limit int) ([]*HistoryEntry, error) {
	query := selectEntry + ` ORDER BY executed_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := make([]*HistoryEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}

// GetExecution returns the entry with the given id.
func (hdb *HistoryDB) GetExecution(ctx context.Context, id string) (*HistoryEntry, error) {
	row := hdb.db.QueryRowContext(ctx, selectEntry+` WHERE id = ?`, id)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}
	return entry, nil
}

// CountByFingerprint returns how many times a query equivalent to soql
// has been executed.
func (hdb *HistoryDB) CountByFingerprint(ctx context.Context, soql string) (int, error) {
	var count int
	err := hdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM executions WHERE fingerprint = ?`,
		Fingerprint(soql),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count executions: %w", err)
	}
	return count, nil
}

// DeleteBefore removes entries executed before t and returns how many
// were removed.
func (hdb *HistoryDB) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	result, err := hdb.db.ExecContext(ctx,
		`DELETE FROM executions WHERE executed_at < ?`,
		formatTimestamp(t),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned entries: %w", err)
	}
	return n, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestampFormats lists the layouts accepted by parseTimestamp.
var timestampFormats = []string{
	timeLayout,
	"2006-01-02 15:04:05", // SQLite default datetime format
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
