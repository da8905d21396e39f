package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrScopeNotFound signals that a requested dataset or core does not exist.
	ErrScopeNotFound = errors.New("scope not found")
	// ErrSearchBackend signals a failed call to the search backend (unreachable, rejected query, timeout).
	ErrSearchBackend = errors.New("search backend error")
	// ErrInvalidParameter signals a malformed request parameter.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ScopeKind names the kind of scope a lookup failed for.
type ScopeKind string

const (
	// ScopeDataset is a dataset scope.
	ScopeDataset ScopeKind = "dataset"
	// ScopeCore is a core (category) scope.
	ScopeCore ScopeKind = "core"
)

// ScopeNotFoundError reports a dataset or core that is absent from metadata or configuration.
type ScopeNotFoundError struct {
	Kind ScopeKind
	ID   string
}

func (e *ScopeNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Unwrap lets errors.Is match both ErrScopeNotFound and ErrNotFound.
func (e *ScopeNotFoundError) Unwrap() []error { return []error{ErrScopeNotFound, ErrNotFound} }

// NewScopeNotFound creates a scope not found error.
func NewScopeNotFound(kind ScopeKind, id string) error {
	return &ScopeNotFoundError{Kind: kind, ID: id}
}

// SearchBackendError wraps a backend failure with the operation that failed.
type SearchBackendError struct {
	Op  string
	Err error
}

func (e *SearchBackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSearchBackend.Error(), e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *SearchBackendError) Unwrap() []error { return []error{ErrSearchBackend, e.Err} }

// NewSearchBackendError wraps err as a backend failure. A nil err yields nil.
func NewSearchBackendError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SearchBackendError{Op: op, Err: err}
}

// InvalidParameterError reports a request parameter that could not be decoded.
// It is recovered locally (the parameter falls back to its default).
type InvalidParameterError struct {
	Name  string
	Value string
	Err   error
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s: %s=%q: %v", ErrInvalidParameter.Error(), e.Name, e.Value, e.Err)
}

// Unwrap exposes both the sentinel and the parse error.
func (e *InvalidParameterError) Unwrap() []error { return []error{ErrInvalidParameter, e.Err} }
