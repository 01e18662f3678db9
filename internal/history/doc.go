// Package history keeps a queryable SQLite copy of every variant attempt.
//
// The CSV variant log stays the audit artifact the storefront team reads; the
// history store sits beside it so the CLI can answer "what happened to this
// color last time" without parsing the CSV. Records carry the run ID that
// produced them and the outcome (published, skipped, needs_review).
//
// The database runs in WAL mode with a busy timeout, and writes retry briefly
// on SQLITE_BUSY so concurrent workers never drop a record. A schema version
// mismatch fails Open with ErrSchemaMismatch; the store holds derived data, so
// the remedy is deleting the file.
package history
