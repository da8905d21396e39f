// Package params decodes search query strings into a typed QueryParams value.
package params

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/dwsearch/dwsearch/internal/domain"
)

// SkipKey is the reserved pagination parameter. It never becomes a search clause.
const SkipKey = "skip"

// Field is a single field=value pair in request order.
type Field struct {
	Name  string
	Value string
}

// IsBlank reports whether the value is empty after trimming whitespace.
func (f Field) IsBlank() bool {
	return strings.TrimSpace(f.Value) == ""
}

// QueryParams is a decoded search query: a pagination offset plus ordered fields.
type QueryParams struct {
	skip   int
	fields []Field
}

// New creates QueryParams from already-decoded parts. Negative skip is clamped to 0.
func New(skip int, fields ...Field) QueryParams {
	return QueryParams{skip: max(skip, 0), fields: dedupe(fields)}
}

// Skip returns the resolved, non-negative pagination offset.
func (p QueryParams) Skip() int { return p.skip }

// Fields returns the field pairs in first-seen order. The skip key is never included.
func (p QueryParams) Fields() []Field { return p.fields }

// Get returns the value of a field and whether it was present.
func (p QueryParams) Get(name string) (string, bool) {
	for _, f := range p.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// WithSkip returns a copy with a different offset.
func (p QueryParams) WithSkip(skip int) QueryParams {
	return QueryParams{skip: max(skip, 0), fields: p.fields}
}

// Encode renders the params back into a query string, fields first in order, skip last.
// Blank fields are dropped; skip is omitted when zero.
func (p QueryParams) Encode() string {
	var b strings.Builder
	for _, f := range p.fields {
		if f.IsBlank() {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}
	if p.skip > 0 {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(SkipKey + "=" + strconv.Itoa(p.skip))
	}
	return b.String()
}

// Parse decodes a raw query string, preserving parameter order.
//
// A malformed skip yields an *domain.InvalidParameterError together with usable
// params (skip=0): callers log it and carry on. Pairs whose escaping cannot be
// decoded are dropped. When a field repeats, the last value wins and the first
// position is kept.
func Parse(rawQuery string) (QueryParams, error) {
	var (
		fields  []Field
		rawSkip string
		hasSkip bool
	)
	for rawQuery != "" {
		var pair string
		pair, rawQuery, _ = strings.Cut(rawQuery, "&")
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil || key == "" {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}
		if key == SkipKey {
			rawSkip, hasSkip = value, true
			continue
		}
		fields = append(fields, Field{Name: key, Value: value})
	}

	skip, err := parseSkip(rawSkip, hasSkip)
	return QueryParams{skip: skip, fields: dedupe(fields)}, err
}

var errNegativeSkip = errors.New("must not be negative")

// parseSkip resolves the offset. Absent or empty → 0 without error; non-numeric
// or negative → 0 with an InvalidParameterError.
func parseSkip(raw string, present bool) (int, error) {
	raw = strings.TrimSpace(raw)
	if !present || raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.InvalidParameterError{Name: SkipKey, Value: raw, Err: err}
	}
	if n < 0 {
		return 0, &domain.InvalidParameterError{Name: SkipKey, Value: raw, Err: errNegativeSkip}
	}
	return n, nil
}

func dedupe(fields []Field) []Field {
	if len(fields) < 2 {
		return fields
	}
	pos := make(map[string]int, len(fields))
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if i, ok := pos[f.Name]; ok {
			out[i].Value = f.Value
			continue
		}
		pos[f.Name] = len(out)
		out = append(out, f)
	}
	return out
}

