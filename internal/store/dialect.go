package store

import (
	_ "embed"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"gtreg/internal/config"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

const (
	sqliteBusyCode       = 5
	sqliteConstraintPK   = 1555
	sqliteConstraintUniq = 2067
	pgUniqueViolation    = "23505"
)

// dialect captures the differences between the supported backends.
type dialect struct {
	name       string
	driverName string
	schema     string
	tableQuery string
	numbered   bool
}

var (
	sqliteDialect = dialect{
		name:       config.DriverSQLite,
		driverName: "sqlite",
		schema:     sqliteSchema,
		tableQuery: "SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?",
	}
	postgresDialect = dialect{
		name:       config.DriverPostgres,
		driverName: "pgx",
		schema:     postgresSchema,
		tableQuery: "SELECT COUNT(1) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?",
		numbered:   true,
	}
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return sqliteDialect, nil
	case config.DriverPostgres:
		return postgresDialect, nil
	default:
		return dialect{}, errors.New("unsupported database driver " + strconv.Quote(driver))
	}
}

// rebind rewrites "?" placeholders to "$n" for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '\'' {
			inQuote = !inQuote
		}
		if c == '?' && !inQuote {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// statements splits the embedded schema into individual DDL statements.
func (d dialect) statements() []string {
	parts := strings.Split(d.schema, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		switch coder.Code() {
		case sqliteConstraintUniq, sqliteConstraintPK:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
