package store

import (
	"errors"
	"fmt"

	"gtreg/internal/services"
)

// ErrUniqueViolation reports a write rejected by a unique index.
var ErrUniqueViolation = fmt.Errorf("%w: unique constraint", services.ErrUniquenessViolation)

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// classify maps driver errors onto the store's error vocabulary.
func classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", operation, ErrUniqueViolation, err)
	}
	return services.Wrap(services.ErrStorage, "store", operation, "", err)
}
