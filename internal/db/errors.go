package db

import "errors"

// Sentinel errors for backend operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
)

// Op names the backend call that failed, for error context.
const (
	OpSearch    = "search"
	OpAggregate = "aggregate"
	OpCount     = "count"
	OpGet       = "get"
	OpList      = "list"
	OpScan      = "scan"
	OpPing      = "ping"
	OpDecode    = "decode"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
