package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("already exists")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("dependency unavailable")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (prd, turn)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// GenerationErrorKind distinguishes why the generation collaborator failed
type GenerationErrorKind string

const (
	// GenerationTimeout means the request exceeded its deadline and was abandoned
	GenerationTimeout GenerationErrorKind = "timeout"
	// GenerationUnavailable means the collaborator could not be reached
	GenerationUnavailable GenerationErrorKind = "unavailable"
	// GenerationFailed covers every other failure
	GenerationFailed GenerationErrorKind = "failed"
)

// GenerationError is returned when no assistant turn could be produced.
// Conversation state is unchanged when this error is returned.
type GenerationError struct {
	Kind     GenerationErrorKind
	Provider string
	Message  string
	Details  string
	Err      error
}

// NewGenerationError wraps err with a kind and a human-readable message
func NewGenerationError(kind GenerationErrorKind, provider, message string, err error) *GenerationError {
	ge := &GenerationError{Kind: kind, Provider: provider, Message: message, Err: err}
	if err != nil {
		ge.Details = err.Error()
	}
	return ge
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation %s (%s): %s: %v", e.Kind, e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("generation %s (%s): %s", e.Kind, e.Provider, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// StatusCode implements the HTTPError interface
func (e *GenerationError) StatusCode() int {
	switch e.Kind {
	case GenerationTimeout:
		return http.StatusGatewayTimeout
	case GenerationUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// Is allows errors.Is(err, ErrUnavailable) for unreachable collaborators
func (e *GenerationError) Is(target error) bool {
	return target == ErrUnavailable && e.Kind == GenerationUnavailable
}

// PersistenceError is returned when an exchange succeeded but could not be
// written. Pending carries how many turns are held for a later flush and
// Result carries whatever the caller still needs to render.
type PersistenceError struct {
	Operation string
	Pending   int
	Result    interface{}
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// StatusCode implements the HTTPError interface
func (e *PersistenceError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// Is allows errors.Is(err, ErrUnavailable)
func (e *PersistenceError) Is(target error) bool {
	return target == ErrUnavailable
}
