package domain

import (
	"slices"

	"github.com/dwsearch/dwsearch/internal/domain/search/fieldtype"
)

// Core is a named category of documents with its own field schema.
type Core struct {
	ID     string
	Name   string
	Index  string
	Fields fieldtype.Table
	// Form lists the fields offered as search inputs, in display order.
	Form []string
}

// Scope narrows a search to a dataset and/or a core. Zero value searches everything.
type Scope struct {
	Dataset string
	Core    string
}

// IsEmpty reports whether the scope searches everything.
func (s Scope) IsEmpty() bool { return s.Dataset == "" && s.Core == "" }

// Catalog is the static, read-only table of configured cores.
type Catalog struct {
	cores map[string]Core
	order []string
}

// NewCatalog builds a catalog. Cores keep their given order for listing.
func NewCatalog(cores ...Core) *Catalog {
	c := &Catalog{cores: make(map[string]Core, len(cores))}
	for _, core := range cores {
		if _, dup := c.cores[core.ID]; !dup {
			c.order = append(c.order, core.ID)
		}
		c.cores[core.ID] = core
	}
	return c
}

// Lookup returns the core with the given id or a ScopeNotFoundError.
func (c *Catalog) Lookup(id string) (Core, error) {
	core, ok := c.cores[id]
	if !ok {
		return Core{}, NewScopeNotFound(ScopeCore, id)
	}
	return core, nil
}

// Cores returns every core in configuration order.
func (c *Catalog) Cores() []Core {
	out := make([]Core, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.cores[id])
	}
	return out
}

// IDs returns the core ids in configuration order.
func (c *Catalog) IDs() []string { return slices.Clone(c.order) }
