package search

import (
	"context"

	"github.com/dwsearch/dwsearch/internal/domain"
	"github.com/dwsearch/dwsearch/internal/domain/search/query"
	"github.com/dwsearch/dwsearch/internal/domain/search/result"
)

// Repository defines the backend contract for search operations.
type Repository interface {
	Search(ctx context.Context, req *query.Request) (result.Result, error)
	Count(ctx context.Context, req *query.Request) (int, error)
}

// DatasetLookup resolves dataset ids against the metadata store.
type DatasetLookup interface {
	Get(ctx context.Context, id string) (domain.Dataset, error)
}
