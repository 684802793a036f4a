package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gofrs/flock"

	"gtreg/internal/config"
)

// Store manages registry persistence.
type Store struct {
	db      *sql.DB
	dialect dialect
	path    string
	now     func() time.Time
}

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	schemaLockTimeout       = 30 * time.Second
	schemaLockRetryDelay    = 50 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open connects to the configured database and creates the schema on first use.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	ctx = ensureContext(ctx)
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	d, err := dialectFor(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	source := cfg.Database.DSN
	if d.name == config.DriverSQLite {
		source = sqliteDSN(cfg.Database.Path, cfg.Database.BusyTimeoutMS)
	}
	db, err := sql.Open(d.driverName, source)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", d.name, err)
	}
	if d.name == config.DriverSQLite {
		// One connection per store serializes writers inside the process;
		// immediate transactions serialize them across processes.
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open %s db: %w", d.name, err)
		}
	}

	store := &Store{db: db, dialect: d, path: cfg.Database.Path, now: time.Now}
	if d.name != config.DriverSQLite {
		store.path = ""
	}

	lock := flock.New(cfg.LockPath())
	lockCtx, cancel := context.WithTimeout(ctx, schemaLockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, schemaLockRetryDelay)
	if err != nil || !locked {
		_ = db.Close()
		if err == nil {
			err = errors.New("lock not acquired")
		}
		return nil, fmt.Errorf("acquire schema lock %s: %w", cfg.LockPath(), err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// sqliteDSN builds the modernc connection string. Transactions begin
// IMMEDIATE: a writer holds the write lock from its first read, and other
// writers wait up to busy_timeout.
func sqliteDSN(path string, busyTimeoutMS int) string {
	params := url.Values{}
	params.Set("_txlock", "immediate")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	return path + "?" + params.Encode()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver returns the backend name ("sqlite" or "postgres").
func (s *Store) Driver() string {
	return s.dialect.name
}

// WithTx runs fn inside one database transaction. The transaction commits
// when fn returns nil and rolls back otherwise. Once begun, the transaction
// ignores cancellation of ctx so an in-flight commit completes or rolls back
// as a unit; fn should still honour ctx between its own steps.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	ctx = ensureContext(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	txCtx := context.WithoutCancel(ctx)

	var sqlTx *sql.Tx
	if err := retryOnBusy(ctx, func() error {
		var beginErr error
		sqlTx, beginErr = s.db.BeginTx(txCtx, nil)
		return beginErr
	}); err != nil {
		return classify("begin transaction", err)
	}

	tx := &Tx{tx: sqlTx, dialect: s.dialect, now: s.now().UTC()}
	if err := fn(tx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		_ = sqlTx.Rollback()
		return classify("commit", err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ensureContext(ctx), s.dialect.rebind(query), args...)
}
