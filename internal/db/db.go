package db

import (
	"context"
	"time"

	"github.com/dwsearch/dwsearch/internal/domain/search/query"
)

// Store is the backend facade combining all sub-interfaces.
type Store interface {
	Pinger
	Searcher
	DatasetStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher executes structured search requests.
type Searcher interface {
	// Search returns the requested window plus the total hit count and the
	// viewport bounds computed over every match.
	Search(ctx context.Context, req *query.Request) (*SearchResult, error)
	// Count returns the number of matches without fetching documents.
	Count(ctx context.Context, req *query.Request) (int, error)
}

// DatasetStore reads dataset metadata documents.
type DatasetStore interface {
	GetDataset(ctx context.Context, index, id string) (*Record, error)
	ListDatasets(ctx context.Context, index string, limit int) ([]Record, error)
}
