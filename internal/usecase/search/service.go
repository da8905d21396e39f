package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dwsearch/dwsearch/internal/domain"
	"github.com/dwsearch/dwsearch/internal/domain/search/fieldtype"
	"github.com/dwsearch/dwsearch/internal/domain/search/params"
	"github.com/dwsearch/dwsearch/internal/domain/search/query"
	"github.com/dwsearch/dwsearch/internal/domain/search/result"
	"github.com/dwsearch/dwsearch/internal/logger"
)

// Fields names the reserved index fields.
type Fields struct {
	Dataset  string
	Core     string
	Location string
	ID       string
}

// Config is the static translator configuration, loaded once at startup.
type Config struct {
	// Index is the document index used when a core declares none.
	Index  string
	Fields Fields
	// Types is the global field type table; a core's own table overrides it.
	Types fieldtype.Table
	// Timeout bounds every backend call. Zero disables the bound.
	Timeout time.Duration
}

// Service translates decoded query parameters into structured searches.
type Service struct {
	repo     Repository
	datasets DatasetLookup
	catalog  *domain.Catalog
	cfg      Config
}

// New creates a search service.
func New(repo Repository, datasets DatasetLookup, catalog *domain.Catalog, cfg Config) *Service {
	return &Service{repo: repo, datasets: datasets, catalog: catalog, cfg: cfg}
}

// Search runs one page of a scoped search.
//
// Unknown cores and datasets fail with *domain.ScopeNotFoundError; any
// backend failure, including the configured timeout, fails with
// *domain.SearchBackendError.
func (s *Service) Search(ctx context.Context, p params.QueryParams, scope domain.Scope) (result.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	core, err := s.resolveScope(ctx, scope)
	if err != nil {
		return result.Result{}, err
	}

	req, err := s.buildRequest(core, p, scope)
	if err != nil {
		return result.Result{}, fmt.Errorf("build request: %w", err)
	}

	res, err := s.repo.Search(ctx, req)
	if err != nil {
		logger.FromContext(ctx).Warn("search backend failed",
			zap.String("index", req.Index()),
			zap.String("dataset", scope.Dataset),
			zap.String("core", scope.Core),
			zap.Error(err),
		)
		return result.Result{}, domain.NewSearchBackendError("search", err)
	}
	return res, nil
}

// Count returns the number of documents in core, optionally restricted to
// dataset. The dataset is not looked up.
func (s *Service) Count(ctx context.Context, core, dataset string) (int, error) {
	c, err := s.catalog.Lookup(core)
	if err != nil {
		return 0, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	b := query.NewBuilder(s.indexFor(&c)).Window(0, 0)
	if dataset != "" {
		b = b.Scope(s.cfg.Fields.Dataset, dataset)
	}
	req, err := b.Scope(s.cfg.Fields.Core, core).Build()
	if err != nil {
		return 0, fmt.Errorf("build count request: %w", err)
	}

	n, err := s.repo.Count(ctx, req)
	if err != nil {
		logger.FromContext(ctx).Warn("count backend failed",
			zap.String("core", core), zap.String("dataset", dataset), zap.Error(err))
		return 0, domain.NewSearchBackendError("count", err)
	}
	return n, nil
}

// resolveScope verifies the scope and returns the core, or nil when the
// search spans all cores.
func (s *Service) resolveScope(ctx context.Context, scope domain.Scope) (*domain.Core, error) {
	var core *domain.Core
	if scope.Core != "" {
		c, err := s.catalog.Lookup(scope.Core)
		if err != nil {
			return nil, err
		}
		core = &c
	}

	if scope.Dataset != "" {
		_, err := s.datasets.Get(ctx, scope.Dataset)
		if errors.Is(err, domain.ErrScopeNotFound) {
			return nil, err
		}
		if err != nil {
			return nil, domain.NewSearchBackendError("dataset lookup", err)
		}
	}
	return core, nil
}

func (s *Service) buildRequest(core *domain.Core, p params.QueryParams, scope domain.Scope) (*query.Request, error) {
	b := query.NewBuilder(s.indexFor(core))
	if scope.Dataset != "" {
		b = b.Scope(s.cfg.Fields.Dataset, scope.Dataset)
	}
	if scope.Core != "" {
		b = b.Scope(s.cfg.Fields.Core, scope.Core)
	}

	table := s.cfg.Types
	if core != nil {
		table = table.Merge(core.Fields)
	}

	for _, f := range p.Fields() {
		if f.IsBlank() {
			continue
		}
		c, err := translate(f, table)
		if err != nil {
			return nil, err
		}
		b = b.Add(c)
	}

	return b.
		SortBy(s.cfg.Fields.ID).
		Window(p.Skip(), query.PageSize).
		Viewport(s.cfg.Fields.Location).
		Build()
}

// translate turns one parameter into a clause; the first matching type rule wins.
func translate(f params.Field, table fieldtype.Table) (query.Clause, error) {
	res := fieldtype.Resolve(f.Name, table)
	value := f.Value
	if res.Type.LowercasesValue() {
		value = strings.ToLower(value)
	}
	return query.NewClause(clauseKind(res.Type), res.Field, value)
}

func clauseKind(t fieldtype.FieldType) query.Kind {
	switch t {
	case fieldtype.Keyword:
		return query.KindFilter
	case fieldtype.Prefix:
		return query.KindPrefix
	case fieldtype.Fuzzy:
		return query.KindFuzzy
	case fieldtype.Term:
		return query.KindTerm
	default:
		return query.KindMatch
	}
}

func (s *Service) indexFor(core *domain.Core) string {
	if core != nil && core.Index != "" {
		return core.Index
	}
	return s.cfg.Index
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}
