package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Counts returns the number of rows in each registry table.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	tables := []string{"manufacturers", "product_lines", "models", "individual_guitars", "specifications", "images"}
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		if err := s.db.QueryRowContext(ensureContext(ctx), "SELECT COUNT(1) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// DatabaseHealth describes the reachability of the registry database.
type DatabaseHealth struct {
	Driver           string
	Path             string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	Error            string
}

// CheckHealth returns diagnostic information about the registry database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{Driver: s.dialect.name, Path: s.path}

	if s.path != "" {
		info, err := os.Stat(s.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return health, nil
			}
			return health, fmt.Errorf("stat registry database: %w", err)
		}
		if info.IsDir() {
			return health, fmt.Errorf("registry database path %q is a directory", s.path)
		}
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("registry database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping registry database: %w", err)
	}
	health.DatabaseReadable = true

	if err := s.db.QueryRowContext(connCtx, "SELECT version FROM schema_version LIMIT 1").Scan(&health.SchemaVersion); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("read schema version: %w", err)
	}
	return health, nil
}
