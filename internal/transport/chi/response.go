package chi

import (
	"github.com/dwsearch/dwsearch/internal/domain"
	"github.com/dwsearch/dwsearch/internal/domain/geo"
	"github.com/dwsearch/dwsearch/internal/domain/search/fieldtype"
	"github.com/dwsearch/dwsearch/internal/domain/search/params"
	"github.com/dwsearch/dwsearch/internal/domain/search/result"
)

// Language is one entry of the language selector.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Scope   string `json:"scope,omitempty"`
	ID      string `json:"id,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version,omitempty"`
}

// DatasetResponse describes one dataset.
type DatasetResponse struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// FormField is one input of a core's search form.
type FormField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CoreResponse describes a core and its search form.
type CoreResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Form  []FormField `json:"form"`
	Count *int        `json:"count,omitempty"`
}

// IndexResponse is the body of GET /.
type IndexResponse struct {
	Datasets  []DatasetResponse `json:"datasets"`
	Cores     []CoreResponse    `json:"cores"`
	Languages []Language        `json:"languages"`
}

// DatasetOverviewResponse is the body of GET /{dataset}.
type DatasetOverviewResponse struct {
	Dataset DatasetResponse `json:"dataset"`
	Cores   []CoreResponse  `json:"cores"`
}

// DocumentResponse is one search hit.
type DocumentResponse struct {
	ID     string         `json:"id"`
	Source map[string]any `json:"source"`
}

// ViewportResponse is the box over every match, its center and the length
// of its diagonal, which a map client can turn into a zoom level.
type ViewportResponse struct {
	TopLeft        geo.Point `json:"top_left"`
	BottomRight    geo.Point `json:"bottom_right"`
	Center         geo.Point `json:"center"`
	DiagonalMeters float64   `json:"diagonal_meters"`
}

// SearchResponse is the body of the search routes.
type SearchResponse struct {
	Dataset   string             `json:"dataset,omitempty"`
	Core      *CoreResponse      `json:"core,omitempty"`
	Query     string             `json:"query"`
	Total     int                `json:"total"`
	Skip      int                `json:"skip"`
	PageSize  int                `json:"page_size"`
	Documents []DocumentResponse `json:"documents"`
	Viewport  *ViewportResponse  `json:"viewport"`
	Next      *string            `json:"next,omitempty"`
	Prev      *string            `json:"prev,omitempty"`
}

func datasetToResponse(ds domain.Dataset) DatasetResponse {
	return DatasetResponse{ID: ds.ID, Title: ds.Title(), Meta: ds.Meta}
}

func (s *Server) coresToResponse() []CoreResponse {
	cores := s.opts.Catalog.Cores()
	out := make([]CoreResponse, len(cores))
	for i, c := range cores {
		out[i] = s.coreToResponse(c)
	}
	return out
}

// coreToResponse lists the form fields with the type a search on them would use.
func (s *Server) coreToResponse(c domain.Core) CoreResponse {
	table := s.opts.Types.Merge(c.Fields)
	form := make([]FormField, len(c.Form))
	for i, name := range c.Form {
		form[i] = FormField{Name: name, Type: fieldtype.Resolve(name, table).Type.String()}
	}
	return CoreResponse{ID: c.ID, Name: c.Name, Form: form}
}

// searchToResponse renders a result page. Next and prev are query strings
// that repeat the request with a different skip.
func searchToResponse(res *result.Result, p params.QueryParams, scope domain.Scope) SearchResponse {
	docs := res.Documents()
	items := make([]DocumentResponse, len(docs))
	for i := range docs {
		items[i] = DocumentResponse{ID: docs[i].ID(), Source: docs[i].Source()}
	}

	resp := SearchResponse{
		Dataset:   scope.Dataset,
		Query:     p.Encode(),
		Total:     res.Total(),
		Skip:      res.Skip(),
		PageSize:  res.PageSize(),
		Documents: items,
	}
	if vp := res.Viewport(); vp != nil {
		resp.Viewport = &ViewportResponse{
			TopLeft:        vp.TopLeft,
			BottomRight:    vp.BottomRight,
			Center:         vp.Center(),
			DiagonalMeters: vp.DiagonalMeters(),
		}
	}
	if skip, ok := res.NextSkip(); ok {
		q := p.WithSkip(skip).Encode()
		resp.Next = &q
	}
	if skip, ok := res.PrevSkip(); ok {
		q := p.WithSkip(skip).Encode()
		resp.Prev = &q
	}
	return resp
}
