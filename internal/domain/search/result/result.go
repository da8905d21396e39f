package result

import "github.com/dwsearch/dwsearch/internal/domain/geo"

// Document is a single matched document.
type Document struct {
	id     string
	source map[string]any
}

// NewDocument creates a document.
func NewDocument(id string, source map[string]any) Document {
	return Document{id: id, source: source}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Source returns the stored document fields.
func (d *Document) Source() map[string]any { return d.source }

// Result is one page of a search.
type Result struct {
	documents []Document
	total     int
	skip      int
	pageSize  int
	viewport  *geo.Bounds
}

// New creates a search result page.
func New(documents []Document, total, skip, pageSize int, viewport *geo.Bounds) Result {
	return Result{
		documents: documents,
		total:     total,
		skip:      skip,
		pageSize:  pageSize,
		viewport:  viewport,
	}
}

// Documents returns the page, ordered by document id.
func (r *Result) Documents() []Document { return r.documents }

// Total returns the number of matches across all pages.
func (r *Result) Total() int { return r.total }

// Skip returns the resolved offset of this page.
func (r *Result) Skip() int { return r.skip }

// PageSize returns the page size the result was fetched with.
func (r *Result) PageSize() int { return r.pageSize }

// Viewport returns the bounds over all matches, or nil when no match has a location.
func (r *Result) Viewport() *geo.Bounds { return r.viewport }

// NextSkip returns the offset of the following page, if there is one.
func (r *Result) NextSkip() (int, bool) {
	next := r.skip + r.pageSize
	if r.pageSize <= 0 || next >= r.total {
		return 0, false
	}
	return next, true
}

// PrevSkip returns the offset of the preceding page, if there is one.
func (r *Result) PrevSkip() (int, bool) {
	if r.skip <= 0 {
		return 0, false
	}
	return max(r.skip-r.pageSize, 0), true
}
