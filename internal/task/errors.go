package task

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input (bad slug, name too long,
// invalid enum value). The command surface prints it and exits 0.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NotFoundError reports a missing entity referenced by id or name.
type NotFoundError struct {
	Kind string // "task" or "epic"
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Ref)
}

// ConflictError reports an invariant violation, naming the existing entity
// so the caller can resolve it.
type ConflictError struct {
	ExistingID   string
	ExistingName string
	Reason       string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// NewInProgressConflict builds the error raised when a second task would
// become in-progress. The message wording is load-bearing: agents parse it
// to decide whether to complete or abort the existing task.
func NewInProgressConflict(existing *Task) *ConflictError {
	return &ConflictError{
		ExistingID:   existing.ID,
		ExistingName: existing.Name,
		Reason: fmt.Sprintf("task '%s' (%s) is already in-progress - complete or abort it first",
			existing.Name, existing.ID),
	}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsDomain reports whether err belongs to the domain taxonomy, i.e. should
// be printed as a friendly message rather than treated as operational.
func IsDomain(err error) bool {
	return IsValidation(err) || IsNotFound(err) || IsConflict(err)
}
