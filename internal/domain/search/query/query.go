// Package query holds the backend-neutral structured search request.
package query

import (
	"errors"
	"fmt"
)

// PageSize is the fixed number of documents per result page.
const PageSize = 50

// ViewportAggregation is the name of the geo-bounds aggregation.
const ViewportAggregation = "viewport"

// Kind is the clause flavour a backend has to render.
type Kind int

const (
	// KindFilter is an exact, non-scoring term filter.
	KindFilter Kind = iota
	// KindPrefix is a prefix query.
	KindPrefix
	// KindFuzzy is a fuzzy query.
	KindFuzzy
	// KindTerm is an exact, scoring term query.
	KindTerm
	// KindMatch is an analyzed full-text match query.
	KindMatch
)

func (k Kind) String() string {
	switch k {
	case KindFilter:
		return "filter"
	case KindPrefix:
		return "prefix"
	case KindFuzzy:
		return "fuzzy"
	case KindTerm:
		return "term"
	case KindMatch:
		return "match"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Scoring reports whether the clause contributes to relevance.
func (k Kind) Scoring() bool { return k != KindFilter }

// Clause is a single field constraint.
type Clause struct {
	kind  Kind
	field string
	value string
}

// NewClause validates and creates a clause.
func NewClause(kind Kind, field, value string) (Clause, error) {
	if field == "" {
		return Clause{}, errors.New("clause field is required")
	}
	if value == "" {
		return Clause{}, fmt.Errorf("clause value is required for field %q", field)
	}
	if kind < KindFilter || kind > KindMatch {
		return Clause{}, fmt.Errorf("unknown clause kind %d", int(kind))
	}
	return Clause{kind: kind, field: field, value: value}, nil
}

// Kind returns the clause kind.
func (c Clause) Kind() Kind { return c.kind }

// Field returns the index field name.
func (c Clause) Field() string { return c.field }

// Value returns the value to match.
func (c Clause) Value() string { return c.value }

func (c Clause) String() string { return fmt.Sprintf("%s(%s=%q)", c.kind, c.field, c.value) }

// Request is a complete, validated search request.
type Request struct {
	index         string
	scope         []Clause
	clauses       []Clause
	sortField     string
	from          int
	size          int
	viewportField string
}

// Index returns the target index name.
func (r *Request) Index() string { return r.index }

// Scope returns the dataset/core equality filters, always AND-combined.
func (r *Request) Scope() []Clause { return r.scope }

// Clauses returns the per-field clauses generated from query parameters.
func (r *Request) Clauses() []Clause { return r.clauses }

// Filters returns every non-scoring clause: scope filters first, then keyword filters.
func (r *Request) Filters() []Clause {
	out := make([]Clause, 0, len(r.scope)+len(r.clauses))
	out = append(out, r.scope...)
	for _, c := range r.clauses {
		if !c.kind.Scoring() {
			out = append(out, c)
		}
	}
	return out
}

// Queries returns the scoring clauses.
func (r *Request) Queries() []Clause {
	var out []Clause
	for _, c := range r.clauses {
		if c.kind.Scoring() {
			out = append(out, c)
		}
	}
	return out
}

// SortField returns the field results are sorted on, ascending. Empty means backend order.
func (r *Request) SortField() string { return r.sortField }

// From returns the window offset.
func (r *Request) From() int { return r.from }

// Size returns the window size.
func (r *Request) Size() int { return r.size }

// ViewportField returns the location field for the geo-bounds aggregation, or "".
func (r *Request) ViewportField() string { return r.viewportField }

// Builder assembles a Request.
type Builder struct {
	req Request
	err error
}

// NewBuilder starts a request against index with the default window [0, PageSize).
func NewBuilder(index string) *Builder {
	return &Builder{req: Request{index: index, size: PageSize}}
}

// Scope adds an equality filter on a reserved scope field.
func (b *Builder) Scope(field, value string) *Builder {
	c, err := NewClause(KindFilter, field, value)
	if err != nil {
		b.setErr(fmt.Errorf("scope: %w", err))
		return b
	}
	b.req.scope = append(b.req.scope, c)
	return b
}

// Add appends field clauses.
func (b *Builder) Add(clauses ...Clause) *Builder {
	b.req.clauses = append(b.req.clauses, clauses...)
	return b
}

// SortBy sorts results ascending on field.
func (b *Builder) SortBy(field string) *Builder {
	b.req.sortField = field
	return b
}

// Window selects the page [from, from+size).
func (b *Builder) Window(from, size int) *Builder {
	b.req.from = from
	b.req.size = size
	return b
}

// Viewport requests a geo-bounds aggregation over the location field.
func (b *Builder) Viewport(field string) *Builder {
	b.req.viewportField = field
	return b
}

// Build validates and returns the request.
func (b *Builder) Build() (*Request, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.req.index == "" {
		return nil, errors.New("index name is required")
	}
	if b.req.from < 0 {
		return nil, fmt.Errorf("window offset must not be negative, got %d", b.req.from)
	}
	if b.req.size < 0 {
		return nil, fmt.Errorf("window size must not be negative, got %d", b.req.size)
	}
	req := b.req
	return &req, nil
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}
