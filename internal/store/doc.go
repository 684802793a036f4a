// Package store persists registry entities in a relational database.
//
// SQLite (modernc.org/sqlite, no cgo) is the default backend; Postgres is
// reached through the pgx stdlib driver. Both share one set of queries written
// with "?" placeholders and rebound per dialect. The schema is embedded and
// created on first open under a file lock so concurrent processes never race
// the DDL.
//
// Natural-key uniqueness (manufacturer name, product line and model keys,
// guitar serial number) and the single-primary-image rule are enforced by
// unique indexes. Violations surface as ErrUniqueViolation, which wraps
// services.ErrUniquenessViolation so callers can re-resolve.
//
// All entity reads and writes made during ingestion go through Tx, obtained
// from Store.WithTx. Tx implements resolve.Source.
package store
