package submission

import (
	"fmt"
	"strings"

	"gtreg/internal/services"
)

// FieldError describes one validation failure at a JSON path such as
// "model.specifications[1].num_frets".
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// ValidationErrors lists every failure found in one submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.String())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Unwrap ties validation failures to services.ErrValidation.
func (v ValidationErrors) Unwrap() error {
	return services.ErrValidation
}

func (v *ValidationErrors) add(path, format string, args ...any) {
	*v = append(*v, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}
