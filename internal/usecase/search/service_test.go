package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dwsearch/dwsearch/internal/domain"
	"github.com/dwsearch/dwsearch/internal/domain/geo"
	"github.com/dwsearch/dwsearch/internal/domain/search/fieldtype"
	"github.com/dwsearch/dwsearch/internal/domain/search/params"
	"github.com/dwsearch/dwsearch/internal/domain/search/query"
	"github.com/dwsearch/dwsearch/internal/domain/search/result"
)

func TestSearch_MatchAndPrefixScenario(t *testing.T) {
	svc, repo, _ := newTestService(t)

	p := params.New(0,
		params.Field{Name: "name", Value: "Acme"},
		params.Field{Name: "city.prefix", Value: "Spr"},
	)
	if _, err := svc.Search(context.Background(), p, domain.Scope{Core: "orgs"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := repo.last(t)
	if got := req.Scope(); len(got) != 1 || got[0].Field() != "_core" || got[0].Value() != "orgs" {
		t.Errorf("unexpected scope: %v", got)
	}
	clauses := req.Clauses()
	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %v", clauses)
	}
	if c := clauses[0]; c.Kind() != query.KindMatch || c.Field() != "name" || c.Value() != "Acme" {
		t.Errorf("clause 0 = %v, want match(name=Acme)", c)
	}
	if c := clauses[1]; c.Kind() != query.KindPrefix || c.Field() != "city" || c.Value() != "spr" {
		t.Errorf("clause 1 = %v, want prefix(city=spr)", c)
	}
}

func TestSearch_ScopeOnly(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Search(context.Background(), params.New(0), domain.Scope{Dataset: "ds-1", Core: "orgs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := repo.last(t)
	if len(req.Clauses()) != 0 {
		t.Errorf("expected no field clauses, got %v", req.Clauses())
	}
	scope := req.Scope()
	if len(scope) != 2 ||
		scope[0].Field() != "_dataset" || scope[0].Value() != "ds-1" ||
		scope[1].Field() != "_core" || scope[1].Value() != "orgs" {
		t.Errorf("unexpected scope filters: %v", scope)
	}
	for _, c := range scope {
		if c.Kind() != query.KindFilter {
			t.Errorf("scope clause %v must be a non-scoring filter", c)
		}
	}
	if req.SortField() != "_id" || req.From() != 0 || req.Size() != query.PageSize {
		t.Errorf("unexpected sort/window: sort=%q from=%d size=%d", req.SortField(), req.From(), req.Size())
	}
	if req.ViewportField() != "_location" {
		t.Errorf("viewport field = %q", req.ViewportField())
	}
}

func TestSearch_KeywordSuffixOverridesConfiguredType(t *testing.T) {
	for _, ft := range []fieldtype.FieldType{
		fieldtype.Match, fieldtype.Keyword, fieldtype.Prefix, fieldtype.Fuzzy, fieldtype.Term,
	} {
		t.Run(ft.String(), func(t *testing.T) {
			repo := &mockRepo{}
			cfg := testConfig()
			cfg.Types = fieldtype.Table{"label": ft}
			svc := New(repo, &mockDatasets{}, testCatalog(), cfg)

			p := params.New(0, params.Field{Name: "label.kw", Value: "MiXeD"})
			if _, err := svc.Search(context.Background(), p, domain.Scope{}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			req := repo.last(t)
			if len(req.Queries()) != 0 {
				t.Errorf("expected no scoring clauses, got %v", req.Queries())
			}
			c, ok := findClause(req.Filters(), "label")
			if !ok || c.Kind() != query.KindFilter || c.Value() != "MiXeD" {
				t.Errorf("expected exact filter on label, got %v", req.Filters())
			}
		})
	}
}

func TestSearch_ConfiguredTypes(t *testing.T) {
	svc, repo, _ := newTestService(t)

	p := params.New(0,
		params.Field{Name: "zip", Value: "AB-12"},
		params.Field{Name: "street", Value: "MAIN"},
		params.Field{Name: "code", Value: "XY"},
		params.Field{Name: "city", Value: "Spring"},
		params.Field{Name: "unknown_field", Value: "Keep Case"},
	)
	if _, err := svc.Search(context.Background(), p, domain.Scope{Core: "orgs"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := repo.last(t)
	tests := []struct {
		field string
		kind  query.Kind
		value string
	}{
		{"zip", query.KindFilter, "AB-12"},
		{"street", query.KindFuzzy, "main"},
		{"code", query.KindTerm, "xy"},
		{"city", query.KindPrefix, "spring"},
		{"unknown_field", query.KindMatch, "Keep Case"},
	}
	for _, tt := range tests {
		c, ok := findClause(req.Clauses(), tt.field)
		if !ok {
			t.Errorf("no clause for %s", tt.field)
			continue
		}
		if c.Kind() != tt.kind || c.Value() != tt.value {
			t.Errorf("%s: got %v, want %s(%q)", tt.field, c, tt.kind, tt.value)
		}
	}
}

func TestSearch_CoreTypesApplyOnlyToThatCore(t *testing.T) {
	svc, repo, _ := newTestService(t)

	p := params.New(0, params.Field{Name: "city", Value: "Spring"})
	if _, err := svc.Search(context.Background(), p, domain.Scope{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, _ := findClause(repo.last(t).Clauses(), "city")
	if c.Kind() != query.KindMatch || c.Value() != "Spring" {
		t.Errorf("unscoped search should use the global table, got %v", c)
	}
}

func TestSearch_BlankValuesProduceNoClauses(t *testing.T) {
	svc, repo, _ := newTestService(t)

	p := params.New(0,
		params.Field{Name: "name", Value: ""},
		params.Field{Name: "city.prefix", Value: "   "},
		params.Field{Name: "zip", Value: "\t"},
	)
	if _, err := svc.Search(context.Background(), p, domain.Scope{Core: "orgs"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := repo.last(t)
	if len(req.Clauses()) != 0 {
		t.Errorf("expected zero field clauses, got %v", req.Clauses())
	}
	if len(req.Scope()) != 1 {
		t.Errorf("expected only the core scope filter, got %v", req.Scope())
	}
}

func TestSearch_SkipResolution(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"name=x", 0},
		{"skip=", 0},
		{"skip=abc", 0},
		{"skip=-50", 0},
		{"skip=100", 100},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			svc, repo, _ := newTestService(t)

			p, _ := params.Parse(tt.raw) // a malformed skip still yields usable params
			res, err := svc.Search(context.Background(), p, domain.Scope{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := repo.last(t).From(); got != tt.want {
				t.Errorf("window offset = %d, want %d", got, tt.want)
			}
			if res.Skip() != tt.want {
				t.Errorf("echoed skip = %d, want %d", res.Skip(), tt.want)
			}
			if _, ok := findClause(repo.last(t).Clauses(), params.SkipKey); ok {
				t.Error("skip must never become a clause")
			}
		})
	}
}

func TestSearch_Pagination(t *testing.T) {
	svc, repo, _ := newTestService(t)

	const total = 120
	repo.searchFn = func(_ context.Context, req *query.Request) (result.Result, error) {
		n := min(req.Size(), max(total-req.From(), 0))
		docs := make([]result.Document, n)
		for i := range docs {
			docs[i] = result.NewDocument(fmt.Sprintf("doc-%03d", req.From()+i), nil)
		}
		return result.New(docs, total, req.From(), req.Size(), nil), nil
	}

	res, err := svc.Search(context.Background(), params.New(50), domain.Scope{Core: "orgs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Documents()) != 50 {
		t.Errorf("expected 50 documents, got %d", len(res.Documents()))
	}
	if res.Skip() != 50 || res.Total() != total {
		t.Errorf("skip=%d total=%d", res.Skip(), res.Total())
	}
	if next, ok := res.NextSkip(); !ok || next != 100 {
		t.Errorf("NextSkip() = %d, %v", next, ok)
	}
}

func TestSearch_ViewportIndependentOfSkip(t *testing.T) {
	svc, repo, _ := newTestService(t)

	// the fake backend derives bounds from everything except the window
	repo.searchFn = func(_ context.Context, req *query.Request) (result.Result, error) {
		lat := float64(len(req.Filters())+len(req.Queries())) + 10
		vp := &geo.Bounds{TopLeft: geo.Point{Lat: lat, Lon: 1}, BottomRight: geo.Point{Lat: 1, Lon: lat}}
		if req.ViewportField() == "" {
			vp = nil
		}
		return result.New(nil, 120, req.From(), req.Size(), vp), nil
	}

	fields := []params.Field{{Name: "name", Value: "Acme"}}
	first, err := svc.Search(context.Background(), params.New(0, fields...), domain.Scope{Core: "orgs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Search(context.Background(), params.New(100, fields...), domain.Scope{Core: "orgs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, b := repo.requests[0], repo.requests[1]
	if a.ViewportField() != b.ViewportField() || fmt.Sprint(a.Filters(), a.Queries()) != fmt.Sprint(b.Filters(), b.Queries()) {
		t.Error("filters and aggregation must not depend on skip")
	}
	if first.Viewport() == nil || *first.Viewport() != *second.Viewport() {
		t.Errorf("viewport changed with skip: %v vs %v", first.Viewport(), second.Viewport())
	}
}

func TestSearch_UnknownCore(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Search(context.Background(), params.New(0), domain.Scope{Core: "ships"})
	var snf *domain.ScopeNotFoundError
	if !errors.As(err, &snf) || snf.Kind != domain.ScopeCore {
		t.Fatalf("expected core ScopeNotFoundError, got %v", err)
	}
	if len(repo.requests) != 0 {
		t.Error("backend must not be queried for an unknown core")
	}
}

func TestSearch_UnknownDataset(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Search(context.Background(), params.New(0), domain.Scope{Dataset: "ds-404", Core: "orgs"})
	var snf *domain.ScopeNotFoundError
	if !errors.As(err, &snf) || snf.Kind != domain.ScopeDataset || snf.ID != "ds-404" {
		t.Fatalf("expected dataset ScopeNotFoundError, got %v", err)
	}
	if len(repo.requests) != 0 {
		t.Error("backend must not be queried for an unknown dataset")
	}
}

func TestSearch_DatasetLookupFailure(t *testing.T) {
	svc, _, ds := newTestService(t)
	ds.err = errors.New("connection refused")

	_, err := svc.Search(context.Background(), params.New(0), domain.Scope{Dataset: "ds-1"})
	if !errors.Is(err, domain.ErrSearchBackend) {
		t.Fatalf("expected SearchBackendError, got %v", err)
	}
	if errors.Is(err, domain.ErrScopeNotFound) {
		t.Error("lookup failure must not be reported as not found")
	}
}

func TestSearch_BackendError(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cause := errors.New("malformed query")
	repo.searchFn = func(context.Context, *query.Request) (result.Result, error) {
		return result.Result{}, cause
	}

	_, err := svc.Search(context.Background(), params.New(0), domain.Scope{})
	var sbe *domain.SearchBackendError
	if !errors.As(err, &sbe) {
		t.Fatalf("expected SearchBackendError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be preserved")
	}
}

func TestSearch_Timeout(t *testing.T) {
	repo := &mockRepo{}
	cfg := testConfig()
	cfg.Timeout = time.Millisecond
	svc := New(repo, &mockDatasets{}, testCatalog(), cfg)

	repo.searchFn = func(ctx context.Context, _ *query.Request) (result.Result, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("backend call must carry a deadline")
		}
		<-ctx.Done()
		return result.Result{}, ctx.Err()
	}

	_, err := svc.Search(context.Background(), params.New(0), domain.Scope{})
	if !errors.Is(err, domain.ErrSearchBackend) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected backend timeout, got %v", err)
	}
}

func TestSearch_CoreIndexOverride(t *testing.T) {
	svc, repo, _ := newTestService(t)

	if _, err := svc.Search(context.Background(), params.New(0), domain.Scope{Core: "people"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.last(t).Index(); got != "people-v2" {
		t.Errorf("index = %q, want people-v2", got)
	}

	if _, err := svc.Search(context.Background(), params.New(0), domain.Scope{Core: "orgs"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.last(t).Index(); got != "resolver" {
		t.Errorf("index = %q, want resolver", got)
	}
}

func TestCount(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.countFn = func(context.Context, *query.Request) (int, error) { return 17, nil }

	n, err := svc.Count(context.Background(), "orgs", "ds-1")
	if err != nil || n != 17 {
		t.Fatalf("Count() = %d, %v", n, err)
	}

	req := repo.last(t)
	scope := req.Scope()
	if len(scope) != 2 || scope[0].Value() != "ds-1" || scope[1].Value() != "orgs" {
		t.Errorf("unexpected scope: %v", scope)
	}
	if req.Size() != 0 || len(req.Clauses()) != 0 || req.ViewportField() != "" {
		t.Errorf("count must not request documents or aggregations: %+v", req)
	}
}

func TestCount_CoreOnly(t *testing.T) {
	svc, repo, _ := newTestService(t)

	if _, err := svc.Count(context.Background(), "orgs", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope := repo.last(t).Scope(); len(scope) != 1 || scope[0].Field() != "_core" {
		t.Errorf("unexpected scope: %v", scope)
	}
}

func TestCount_Errors(t *testing.T) {
	svc, repo, _ := newTestService(t)

	if _, err := svc.Count(context.Background(), "ships", ""); !errors.Is(err, domain.ErrScopeNotFound) {
		t.Errorf("expected scope not found, got %v", err)
	}

	repo.countFn = func(context.Context, *query.Request) (int, error) { return 0, errors.New("down") }
	if _, err := svc.Count(context.Background(), "orgs", ""); !errors.Is(err, domain.ErrSearchBackend) {
		t.Errorf("expected backend error, got %v", err)
	}
}

func TestClauseKind(t *testing.T) {
	tests := map[fieldtype.FieldType]query.Kind{
		fieldtype.Keyword: query.KindFilter,
		fieldtype.Prefix:  query.KindPrefix,
		fieldtype.Fuzzy:   query.KindFuzzy,
		fieldtype.Term:    query.KindTerm,
		fieldtype.Match:   query.KindMatch,
	}
	for ft, want := range tests {
		if got := clauseKind(ft); got != want {
			t.Errorf("clauseKind(%v) = %v, want %v", ft, got, want)
		}
	}
}
