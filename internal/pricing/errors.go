package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is
	ErrValidation = errors.New("validation failed")
	// ErrNotFound matches every *NotFoundError via errors.Is
	ErrNotFound = errors.New("not found")
)

// ValidationError reports malformed or out-of-range input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced entity that is required but absent
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError; id is formatted with %v
func NewNotFoundError(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}

// WarningKind classifies a ConsistencyWarning
type WarningKind string

const (
	WarningOrphanedCategory WarningKind = "orphaned_category"
	WarningCategoryCycle    WarningKind = "category_cycle"
	WarningMissingCategory  WarningKind = "missing_category"
	WarningDanglingRule     WarningKind = "dangling_rule"
)

// ConsistencyWarning describes stale data that was tolerated.
// It is never returned as an error; the computation continues with defaults.
type ConsistencyWarning struct {
	Kind      WarningKind `json:"kind"`
	Entity    string      `json:"entity"`
	ID        string      `json:"id"`
	Reference string      `json:"reference,omitempty"`
	Message   string      `json:"message"`
}

func (w ConsistencyWarning) String() string {
	return fmt.Sprintf("%s: %s %s: %s", w.Kind, w.Entity, w.ID, w.Message)
}
