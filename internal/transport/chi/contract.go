package chi

import (
	"context"

	"github.com/dwsearch/dwsearch/internal/domain"
	"github.com/dwsearch/dwsearch/internal/domain/search/params"
	"github.com/dwsearch/dwsearch/internal/domain/search/result"
	datasetuc "github.com/dwsearch/dwsearch/internal/usecase/dataset"
	healthuc "github.com/dwsearch/dwsearch/internal/usecase/health"
)

// Searcher runs scoped searches.
type Searcher interface {
	Search(ctx context.Context, p params.QueryParams, scope domain.Scope) (result.Result, error)
}

// DatasetBrowser lists datasets and reports per-core counts.
type DatasetBrowser interface {
	List(ctx context.Context) ([]domain.Dataset, error)
	Get(ctx context.Context, id string) (datasetuc.Overview, error)
}

// HealthChecker reports backend health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
