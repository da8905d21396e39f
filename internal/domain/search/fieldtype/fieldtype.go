// Package fieldtype resolves how a query parameter is turned into a search clause.
//
// A field's type comes from two places: an inline suffix on the parameter name
// (".kw", ".prefix", ".fuzzy", ".term") and the configured type table. Resolution
// walks a fixed priority list of rules; the first rule that matches wins and a
// suffix always beats the configured type.
package fieldtype

import (
	"fmt"
	"strings"
)

// FieldType is the declared semantics of a searchable field.
type FieldType int

const (
	// Match is an analyzed full-text match (the default).
	Match FieldType = iota
	// Keyword is an exact, non-scoring term filter.
	Keyword
	// Prefix is a prefix query on the lower-cased value.
	Prefix
	// Fuzzy is a fuzzy query on the lower-cased value.
	Fuzzy
	// Term is an exact, scoring term query on the lower-cased value.
	Term
)

var names = map[FieldType]string{
	Match:   "match",
	Keyword: "keyword",
	Prefix:  "prefix",
	Fuzzy:   "fuzzy",
	Term:    "term",
}

// String returns the configuration name of the type.
func (t FieldType) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// IsValid reports whether t is one of the known types.
func (t FieldType) IsValid() bool {
	_, ok := names[t]
	return ok
}

// LowercasesValue reports whether values for this type are lower-cased before querying.
func (t FieldType) LowercasesValue() bool {
	return t == Prefix || t == Fuzzy || t == Term
}

// Parse converts a configuration name into a FieldType.
// Empty, "default" and "match" all mean Match.
func Parse(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "match":
		return Match, nil
	case "keyword":
		return Keyword, nil
	case "prefix":
		return Prefix, nil
	case "fuzzy":
		return Fuzzy, nil
	case "term":
		return Term, nil
	default:
		return Match, fmt.Errorf("unknown field type %q", s)
	}
}

// Table maps field names to their configured type.
type Table map[string]FieldType

// Lookup returns the configured type for field, or Match when undeclared.
func (t Table) Lookup(field string) FieldType {
	if ft, ok := t[field]; ok {
		return ft
	}
	return Match
}

// Merge returns a new table with overrides applied on top of t.
func (t Table) Merge(overrides Table) Table {
	out := make(Table, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Suffixes recognized on parameter names, in priority order.
const (
	SuffixKeyword = ".kw"
	SuffixPrefix  = ".prefix"
	SuffixFuzzy   = ".fuzzy"
	SuffixTerm    = ".term"
)

type rule struct {
	suffix string
	typ    FieldType
}

// rules is evaluated top to bottom: suffix rules first, then the configured type.
var rules = []rule{
	{SuffixKeyword, Keyword},
	{SuffixPrefix, Prefix},
	{SuffixFuzzy, Fuzzy},
	{SuffixTerm, Term},
}

// Resolution is the outcome of resolving a parameter name.
type Resolution struct {
	// Field is the index field name with any recognized suffix stripped.
	Field string
	// Type is the effective field type.
	Type FieldType
	// Suffixed reports whether an inline suffix decided the type.
	Suffixed bool
}

// Resolve determines the effective field and type for a parameter name.
// Only a trailing suffix counts, and only one suffix is stripped: "a.kw.prefix"
// resolves to a prefix query on "a.kw". A bare suffix (".kw") is not a suffix.
func Resolve(name string, table Table) Resolution {
	for _, r := range rules {
		if base, ok := strings.CutSuffix(name, r.suffix); ok && base != "" {
			return Resolution{Field: base, Type: r.typ, Suffixed: true}
		}
	}
	return Resolution{Field: name, Type: table.Lookup(name)}
}
