package db

import (
	"context"
	"errors"
	"testing"
)

func TestError_Unwrap(t *testing.T) {
	err := error(&Error{Op: OpSearch, Err: context.DeadlineExceeded})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected cause to be reachable")
	}
	if err.Error() != "search: context deadline exceeded" {
		t.Errorf("Error() = %q", err.Error())
	}
}
