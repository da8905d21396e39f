package dwsearch

import "github.com/dwsearch/dwsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrScopeNotFound    = domain.ErrScopeNotFound
	ErrSearchBackend    = domain.ErrSearchBackend
	ErrInvalidParameter = domain.ErrInvalidParameter
)
