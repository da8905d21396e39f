package search

import (
	"context"
	"testing"

	"github.com/dwsearch/dwsearch/internal/db"
	"github.com/dwsearch/dwsearch/internal/domain/search/query"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, req *query.Request) (*db.SearchResult, error)
	countFn  func(ctx context.Context, req *query.Request) (int, error)
}

func (m *mockStore) Search(ctx context.Context, req *query.Request) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Count(ctx context.Context, req *query.Request) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, req)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func mustRequest(t *testing.T, skip int) *query.Request {
	t.Helper()
	req, err := query.NewBuilder("resolver").Scope("_core", "orgs").Window(skip, query.PageSize).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return req
}
