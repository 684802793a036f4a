package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Tx is one open registry transaction. Its methods must not be used after
// the WithTx callback returns.
type Tx struct {
	tx      *sql.Tx
	dialect dialect
	now     time.Time
}

// Now returns the timestamp stamped on rows written by this transaction.
func (t *Tx) Now() time.Time {
	return t.now
}

func (t *Tx) exec(ctx context.Context, operation, query string, args ...any) (sql.Result, error) {
	res, err := t.tx.ExecContext(ensureContext(ctx), t.dialect.rebind(query), args...)
	if err != nil {
		return nil, classify(operation, err)
	}
	return res, nil
}

func (t *Tx) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ensureContext(ctx), t.dialect.rebind(query), args...)
}

func (t *Tx) query(ctx context.Context, operation, query string, args ...any) (*sql.Rows, error) {
	rows, err := t.tx.QueryContext(ensureContext(ctx), t.dialect.rebind(query), args...)
	if err != nil {
		return nil, classify(operation, err)
	}
	return rows, nil
}

// scanOne scans a single-row query, mapping no rows to (nil, nil).
func scanOne[T any](operation string, row *sql.Row, scan func(rowScanner) (*T, error)) (*T, error) {
	v, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(operation, err)
	}
	return v, nil
}

func scanAll[T any](operation string, rows *sql.Rows, scan func(rowScanner) (*T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, classify(operation, err)
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(operation, err)
	}
	return out, nil
}

// touchResolved stamps last_resolved_at on an entity that a submission
// resolved to.
func (t *Tx) touchResolved(ctx context.Context, table, id string) error {
	_, err := t.exec(ctx, "touch "+table, "UPDATE "+table+" SET last_resolved_at = ? WHERE id = ?", formatTime(t.now), id)
	return err
}
