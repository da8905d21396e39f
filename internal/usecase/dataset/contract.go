package dataset

import (
	"context"

	"github.com/dwsearch/dwsearch/internal/domain"
)

// Repository reads dataset metadata.
type Repository interface {
	Get(ctx context.Context, id string) (domain.Dataset, error)
	List(ctx context.Context) ([]domain.Dataset, error)
}

// Counter counts documents of a core within a dataset.
type Counter interface {
	Count(ctx context.Context, core, dataset string) (int, error)
}
