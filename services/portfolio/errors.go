package portfolio

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfirmationRequired is returned by delete operations when the caller
// has not supplied the confirmation flag. The record is left untouched and
// no audit record is written.
var ErrConfirmationRequired = errors.New("deletion requires confirmation")

// FieldViolation describes a single failed validation rule.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every failing field of a request, not just the
// first one encountered.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError indicates the operation referenced a nonexistent record.
type NotFoundError struct {
	EntityType string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.EntityType, e.ID)
}

// InUseError indicates a deletion was blocked by live references.
type InUseError struct {
	Category string
	Value    string
	Refs     int64
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("option %q in category %q is referenced by %d record(s)", e.Value, e.Category, e.Refs)
}

// StoreUnavailableError indicates the persistence layer could not be
// reached. The operation fails without retry.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// violations accumulates field failures during validation.
type violations []FieldViolation

func (v *violations) add(field, reason string) {
	*v = append(*v, FieldViolation{Field: field, Reason: reason})
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Violations: v}
}

// wrapStore converts unexpected storage-layer failures into
// StoreUnavailableError while letting domain errors pass through.
func wrapStore(err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *ValidationError
		nf *NotFoundError
		iu *InUseError
		su *StoreUnavailableError
	)
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &iu) || errors.As(err, &su) {
		return err
	}
	if errors.Is(err, ErrConfirmationRequired) {
		return err
	}
	return &StoreUnavailableError{Err: err}
}
