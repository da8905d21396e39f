package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/dwsearch/dwsearch/internal/domain"
)

// CoreCount is the number of documents a dataset holds for one core.
type CoreCount struct {
	Core  domain.Core
	Count int
}

// Overview is a dataset with its per-core document counts.
type Overview struct {
	Dataset domain.Dataset
	Counts  []CoreCount
}

// Service handles dataset browsing.
type Service struct {
	repo    Repository
	counter Counter
	catalog *domain.Catalog
}

// New creates a dataset service.
func New(repo Repository, counter Counter, catalog *domain.Catalog) *Service {
	return &Service{repo: repo, counter: counter, catalog: catalog}
}

// List returns every known dataset.
func (s *Service) List(ctx context.Context) ([]domain.Dataset, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.NewSearchBackendError("list datasets", err)
	}
	return list, nil
}

// Get returns a dataset and the document count of every configured core in it.
func (s *Service) Get(ctx context.Context, id string) (Overview, error) {
	ds, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrScopeNotFound) {
			return Overview{}, err
		}
		return Overview{}, domain.NewSearchBackendError("get dataset", err)
	}

	cores := s.catalog.Cores()
	counts := make([]CoreCount, 0, len(cores))
	for _, core := range cores {
		n, err := s.counter.Count(ctx, core.ID, id)
		if err != nil {
			return Overview{}, fmt.Errorf("count %s in %s: %w", core.ID, id, err)
		}
		counts = append(counts, CoreCount{Core: core, Count: n})
	}
	return Overview{Dataset: ds, Counts: counts}, nil
}
