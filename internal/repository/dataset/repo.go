package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/dwsearch/dwsearch/internal/db"
	"github.com/dwsearch/dwsearch/internal/domain"
)

// store is the consumer interface for dataset metadata (ISP).
type store interface {
	GetDataset(ctx context.Context, index, id string) (*db.Record, error)
	ListDatasets(ctx context.Context, index string, limit int) ([]db.Record, error)
}

// Repo implements usecase/dataset.Repository and usecase/search.DatasetLookup.
type Repo struct {
	store    store
	index    string
	listSize int
}

// New creates a dataset repository over the metadata index.
func New(s store, index string, listSize int) *Repo {
	return &Repo{store: s, index: index, listSize: listSize}
}

// Get returns the dataset metadata. A missing document or a missing
// metadata index both mean the dataset does not exist.
func (r *Repo) Get(ctx context.Context, id string) (domain.Dataset, error) {
	rec, err := r.store.GetDataset(ctx, r.index, id)
	if errors.Is(err, db.ErrKeyNotFound) || errors.Is(err, db.ErrIndexNotFound) {
		return domain.Dataset{}, domain.NewScopeNotFound(domain.ScopeDataset, id)
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("get dataset %s: %w", id, err)
	}
	return domain.Dataset{ID: rec.ID, Meta: rec.Fields}, nil
}

// List returns up to the configured number of datasets.
func (r *Repo) List(ctx context.Context) ([]domain.Dataset, error) {
	recs, err := r.store.ListDatasets(ctx, r.index, r.listSize)
	if errors.Is(err, db.ErrIndexNotFound) {
		return []domain.Dataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}

	out := make([]domain.Dataset, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.Dataset{ID: rec.ID, Meta: rec.Fields})
	}
	return out, nil
}
