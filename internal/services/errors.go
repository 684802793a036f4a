package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrResolutionAmbiguous = errors.New("resolution ambiguous")
	ErrResolutionConflict  = errors.New("resolution conflict")
	ErrMissingDependency   = errors.New("missing dependency")
	ErrUniquenessViolation = errors.New("uniqueness violation")
	ErrSelfReference       = errors.New("self reference")
	ErrNotFound            = errors.New("not found")
	ErrStorage             = errors.New("storage error")
	ErrCancelled           = errors.New("cancelled")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later outcome classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrStorage
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Submission outcomes.
const (
	OutcomeSucceeded   = "succeeded"
	OutcomeFailed      = "failed"
	OutcomeNeedsReview = "needs_review"
)

// OutcomeFor maps a submission error to the outcome recorded for it. Ambiguous
// resolutions hold the submission for review; every other error fails it.
func OutcomeFor(err error) string {
	switch {
	case err == nil:
		return OutcomeSucceeded
	case NeedsReview(err):
		return OutcomeNeedsReview
	default:
		return OutcomeFailed
	}
}

// NeedsReview reports whether err should hold a submission for manual
// adjudication rather than fail it.
func NeedsReview(err error) bool {
	return errors.Is(err, ErrResolutionAmbiguous)
}

// ReasonCode maps an error to the short reason recorded on a failed submission.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrResolutionAmbiguous):
		return "resolution_ambiguous"
	case errors.Is(err, ErrMissingDependency):
		return "missing_dependency"
	case errors.Is(err, ErrResolutionConflict):
		return "resolution_conflict"
	case errors.Is(err, ErrUniquenessViolation):
		return "uniqueness_violation"
	case errors.Is(err, ErrSelfReference):
		return "self_reference"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	default:
		return "storage_error"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "registry failure"
	}
	return strings.Join(parts, ": ")
}
