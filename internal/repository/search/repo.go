package search

import (
	"context"
	"fmt"

	"github.com/dwsearch/dwsearch/internal/db"
	"github.com/dwsearch/dwsearch/internal/domain/search/query"
	"github.com/dwsearch/dwsearch/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, req *query.Request) (*db.SearchResult, error)
	Count(ctx context.Context, req *query.Request) (int, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search executes req and maps the backend hits onto a result page.
func (r *Repo) Search(ctx context.Context, req *query.Request) (result.Result, error) {
	sr, err := r.store.Search(ctx, req)
	if err != nil {
		return result.Result{}, fmt.Errorf("search %s: %w", req.Index(), err)
	}
	if sr == nil {
		return result.New(nil, 0, req.From(), req.Size(), nil), nil
	}

	docs := make([]result.Document, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		docs = append(docs, result.NewDocument(e.ID, e.Fields))
	}
	return result.New(docs, sr.Total, req.From(), req.Size(), sr.Viewport), nil
}

// Count returns the number of documents matching req.
func (r *Repo) Count(ctx context.Context, req *query.Request) (int, error) {
	n, err := r.store.Count(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", req.Index(), err)
	}
	return n, nil
}
