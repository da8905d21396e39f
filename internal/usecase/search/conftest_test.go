package search

import (
	"context"
	"testing"
	"time"

	"github.com/dwsearch/dwsearch/internal/domain"
	"github.com/dwsearch/dwsearch/internal/domain/search/fieldtype"
	"github.com/dwsearch/dwsearch/internal/domain/search/query"
	"github.com/dwsearch/dwsearch/internal/domain/search/result"
)

// --- Mocks ---

type mockRepo struct {
	searchFn func(ctx context.Context, req *query.Request) (result.Result, error)
	countFn  func(ctx context.Context, req *query.Request) (int, error)
	requests []*query.Request
}

func (m *mockRepo) Search(ctx context.Context, req *query.Request) (result.Result, error) {
	m.requests = append(m.requests, req)
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return result.New(nil, 0, req.From(), req.Size(), nil), nil
}

func (m *mockRepo) Count(ctx context.Context, req *query.Request) (int, error) {
	m.requests = append(m.requests, req)
	if m.countFn != nil {
		return m.countFn(ctx, req)
	}
	return 0, nil
}

func (m *mockRepo) last(t *testing.T) *query.Request {
	t.Helper()
	if len(m.requests) == 0 {
		t.Fatal("no backend request was issued")
	}
	return m.requests[len(m.requests)-1]
}

type mockDatasets struct {
	known map[string]bool
	err   error
}

func (m *mockDatasets) Get(_ context.Context, id string) (domain.Dataset, error) {
	if m.err != nil {
		return domain.Dataset{}, m.err
	}
	if !m.known[id] {
		return domain.Dataset{}, domain.NewScopeNotFound(domain.ScopeDataset, id)
	}
	return domain.Dataset{ID: id}, nil
}

// --- Fixtures ---

func testConfig() Config {
	return Config{
		Index: "resolver",
		Fields: Fields{
			Dataset:  "_dataset",
			Core:     "_core",
			Location: "_location",
			ID:       "_id",
		},
		Types:   fieldtype.Table{"zip": fieldtype.Keyword, "street": fieldtype.Fuzzy},
		Timeout: time.Second,
	}
}

func testCatalog() *domain.Catalog {
	return domain.NewCatalog(
		domain.Core{
			ID:     "orgs",
			Name:   "Organisations",
			Fields: fieldtype.Table{"city": fieldtype.Prefix, "code": fieldtype.Term},
		},
		domain.Core{ID: "people", Name: "People", Index: "people-v2"},
	)
}

func newTestService(t *testing.T) (*Service, *mockRepo, *mockDatasets) {
	t.Helper()
	repo := &mockRepo{}
	ds := &mockDatasets{known: map[string]bool{"ds-1": true}}
	return New(repo, ds, testCatalog(), testConfig()), repo, ds
}

func findClause(clauses []query.Clause, field string) (query.Clause, bool) {
	for _, c := range clauses {
		if c.Field() == field {
			return c, true
		}
	}
	return query.Clause{}, false
}
