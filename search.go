package dwsearch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dwsearch/dwsearch/internal/domain"
	"github.com/dwsearch/dwsearch/internal/domain/geo"
	"github.com/dwsearch/dwsearch/internal/domain/search/params"
	"github.com/dwsearch/dwsearch/internal/domain/search/result"
	logpkg "github.com/dwsearch/dwsearch/internal/logger"
)

// Scope narrows a search. An empty Dataset searches every dataset.
type Scope struct {
	Dataset string
	Core    string
}

// Document is one search hit.
type Document struct {
	ID     string
	Source map[string]any
}

// Point is a latitude/longitude pair in degrees.
type Point = geo.Point

// Viewport is the box enclosing every match that has a location.
type Viewport struct {
	TopLeft        Point
	BottomRight    Point
	Center         Point
	DiagonalMeters float64
}

// Page is one page of search results. Next and Prev are query strings
// for the neighbouring pages, empty when there is none.
type Page struct {
	Documents []Document
	Total     int
	Skip      int
	PageSize  int
	Viewport  *Viewport
	Next      string
	Prev      string
}

// Dataset is a top-level document collection.
type Dataset struct {
	ID    string
	Title string
	Meta  map[string]any
}

// Search runs a URL query string (for example "name=Acme&city.prefix=spr&skip=50")
// inside scope. A malformed skip is logged at debug and treated as 0.
func (c *Client) Search(ctx context.Context, scope Scope, rawQuery string) (*Page, error) {
	ctx = logpkg.ContextWithLogger(ctx, c.logger)

	p, err := params.Parse(rawQuery)
	if err != nil {
		logpkg.FromContext(ctx).Debug("invalid query parameter, using default", zap.Error(err))
	}

	res, err := c.search.Search(ctx, p, domain.Scope{Dataset: scope.Dataset, Core: scope.Core})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return toPage(&res, p), nil
}

// Count returns the number of documents in core, optionally within dataset.
func (c *Client) Count(ctx context.Context, core, dataset string) (int, error) {
	n, err := c.search.Count(ctx, core, dataset)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Datasets lists the known datasets.
func (c *Client) Datasets(ctx context.Context) ([]Dataset, error) {
	list, err := c.datasets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("datasets: %w", err)
	}
	out := make([]Dataset, len(list))
	for i, ds := range list {
		out[i] = Dataset{ID: ds.ID, Title: ds.Title(), Meta: ds.Meta}
	}
	return out, nil
}

// DatasetCounts returns the per-core document counts of a dataset.
func (c *Client) DatasetCounts(ctx context.Context, id string) (map[string]int, error) {
	ov, err := c.datasets.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", id, err)
	}
	counts := make(map[string]int, len(ov.Counts))
	for _, cc := range ov.Counts {
		counts[cc.Core.ID] = cc.Count
	}
	return counts, nil
}

func toPage(res *result.Result, p params.QueryParams) *Page {
	docs := res.Documents()
	page := &Page{
		Documents: make([]Document, len(docs)),
		Total:     res.Total(),
		Skip:      res.Skip(),
		PageSize:  res.PageSize(),
	}
	for i := range docs {
		page.Documents[i] = Document{ID: docs[i].ID(), Source: docs[i].Source()}
	}
	if vp := res.Viewport(); vp != nil {
		page.Viewport = &Viewport{
			TopLeft:        vp.TopLeft,
			BottomRight:    vp.BottomRight,
			Center:         vp.Center(),
			DiagonalMeters: vp.DiagonalMeters(),
		}
	}
	if skip, ok := res.NextSkip(); ok {
		page.Next = p.WithSkip(skip).Encode()
	}
	if skip, ok := res.PrevSkip(); ok {
		page.Prev = p.WithSkip(skip).Encode()
	}
	return page
}
