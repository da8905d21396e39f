package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSearchBackendError(t *testing.T) {
	err := NewSearchBackendError("search", context.DeadlineExceeded)

	if !errors.Is(err, ErrSearchBackend) {
		t.Error("expected ErrSearchBackend")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected cause to be preserved")
	}
	if !strings.Contains(err.Error(), "search") {
		t.Errorf("Error() = %q", err.Error())
	}
	if NewSearchBackendError("search", nil) != nil {
		t.Error("nil cause should yield nil")
	}
}

func TestInvalidParameterError(t *testing.T) {
	cause := errors.New("bad digit")
	err := error(&InvalidParameterError{Name: "skip", Value: "x", Err: cause})

	if !errors.Is(err, ErrInvalidParameter) || !errors.Is(err, cause) {
		t.Error("expected sentinel and cause")
	}
	if errors.Is(err, ErrScopeNotFound) {
		t.Error("unexpected sentinel match")
	}
}

func TestScopeNotFoundError_Message(t *testing.T) {
	err := NewScopeNotFound(ScopeDataset, "ds-9")
	if err.Error() != `dataset "ds-9" not found` {
		t.Errorf("Error() = %q", err.Error())
	}
}
