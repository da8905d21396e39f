package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dwsearch/dwsearch/internal/domain"
	"github.com/dwsearch/dwsearch/internal/domain/search/fieldtype"
	"github.com/dwsearch/dwsearch/internal/domain/search/params"
	"github.com/dwsearch/dwsearch/internal/logger"
	healthuc "github.com/dwsearch/dwsearch/internal/usecase/health"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeScopeNotFound = "scope_not_found"
	CodeSearchBackend = "search_backend_error"
	CodeNotFound      = "not_found"
	CodeInternal      = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Options carries the static data the API exposes next to search results.
type Options struct {
	Catalog   *domain.Catalog
	Types     fieldtype.Table
	Languages []Language
	Version   string
}

// Server serves the JSON search API.
type Server struct {
	search        Searcher
	datasets      DatasetBrowser
	health        HealthChecker
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	datasets DatasetBrowser,
	health HealthChecker,
	opts Options,
	logger *zap.Logger,
) *Server {
	if opts.Catalog == nil {
		opts.Catalog = domain.NewCatalog()
	}
	s := &Server{
		search:   search,
		datasets: datasets,
		health:   health,
		opts:     opts,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		scopeNotFoundHandler,
		sentinelHandler(domain.ErrSearchBackend, http.StatusBadGateway, CodeSearchBackend),
	}
	return s
}

// Register mounts the API routes on r. Static segments win over the
// {dataset} parameter, so /search and /health never name a dataset.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/", s.ListDatasets)
	r.Get("/search", s.SearchRoot)
	r.Get("/search/{core}", s.SearchCore)
	r.Get("/{dataset}", s.GetDataset)
	r.Get("/{dataset}/{core}", s.SearchDataset)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
	})
}

// ListDatasets handles GET /.
func (s *Server) ListDatasets(w http.ResponseWriter, r *http.Request) {
	list, err := s.datasets.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]DatasetResponse, len(list))
	for i, ds := range list {
		items[i] = datasetToResponse(ds)
	}
	writeJSON(w, http.StatusOK, IndexResponse{
		Datasets:  items,
		Cores:     s.coresToResponse(),
		Languages: s.opts.Languages,
	})
}

// GetDataset handles GET /{dataset}.
func (s *Server) GetDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "dataset")
	ctx := logger.With(r.Context(), zap.String("dataset", id))

	ov, err := s.datasets.Get(ctx, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	cores := make([]CoreResponse, len(ov.Counts))
	for i, cc := range ov.Counts {
		cores[i] = s.coreToResponse(cc.Core)
		n := cc.Count
		cores[i].Count = &n
	}
	writeJSON(w, http.StatusOK, DatasetOverviewResponse{
		Dataset: datasetToResponse(ov.Dataset),
		Cores:   cores,
	})
}

// SearchRoot handles GET /search. A search always needs a core, so the
// bare path leads back to the listing.
func (s *Server) SearchRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

// SearchCore handles GET /search/{core}.
func (s *Server) SearchCore(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, domain.Scope{Core: chi.URLParam(r, "core")})
}

// SearchDataset handles GET /{dataset}/{core}.
func (s *Server) SearchDataset(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, domain.Scope{
		Dataset: chi.URLParam(r, "dataset"),
		Core:    chi.URLParam(r, "core"),
	})
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, scope domain.Scope) {
	ctx := logger.With(r.Context(),
		zap.String("dataset", scope.Dataset),
		zap.String("core", scope.Core),
	)

	p, err := params.Parse(r.URL.RawQuery)
	if err != nil {
		logger.FromContext(ctx).Debug("invalid query parameter, using default", zap.Error(err))
	}

	res, err := s.search.Search(ctx, p, scope)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := searchToResponse(&res, p, scope)
	if core, err := s.opts.Catalog.Lookup(scope.Core); err == nil {
		c := s.coreToResponse(core)
		resp.Core = &c
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: s.opts.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message without exposing backend internals.
func safeDomainMessage(err error) string {
	var snf *domain.ScopeNotFoundError
	if errors.As(err, &snf) {
		return snf.Error()
	}
	if errors.Is(err, domain.ErrSearchBackend) {
		return domain.ErrSearchBackend.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// scopeNotFoundHandler answers 404 and names the missing scope.
func scopeNotFoundHandler(w http.ResponseWriter, err error, msg string) bool {
	var snf *domain.ScopeNotFoundError
	if !errors.As(err, &snf) {
		return false
	}
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Code:    CodeScopeNotFound,
		Message: msg,
		Scope:   string(snf.Kind),
		ID:      snf.ID,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
