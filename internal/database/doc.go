// Package database stores the query history in SQLite.
//
// HistoryDB (modernc.org/sqlite, no cgo) keeps one row per executed query:
// its id, the query text, a SHA3-256 fingerprint of the normalized query,
// the org, the output format, the number of records matched, the elapsed
// time and the error, if any. Records themselves are never stored.
package database
