package db

import "github.com/dwsearch/dwsearch/internal/domain/geo"

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []Record
	// Viewport is nil when the request asked for none or nothing had a location.
	Viewport *geo.Bounds
}

// Record is a single stored document: its id and decoded source fields.
type Record struct {
	ID     string
	Fields map[string]any
}
