package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/dwsearch/dwsearch/internal/db"
	"github.com/dwsearch/dwsearch/internal/domain/geo"
	"github.com/dwsearch/dwsearch/internal/domain/search/query"
)

// Viewport reducers run over two numeric attributes derived from the
// location field: <field>_lat and <field>_lon.
const (
	latSuffix = "_lat"
	lonSuffix = "_lon"
)

// Search runs FT.SEARCH for the page and, when a viewport is requested,
// FT.AGGREGATE over the same query in the same round-trip.
func (s *Store) Search(ctx context.Context, req *query.Request) (*db.SearchResult, error) {
	q := buildQuery(req)

	args := []string{req.Index(), q}
	if f := req.SortField(); f != "" {
		args = append(args, "SORTBY", f, "ASC")
	}
	args = append(args,
		"LIMIT", strconv.Itoa(req.From()), strconv.Itoa(req.Size()),
		"DIALECT", "2",
	)
	cmds := rueidis.Commands{s.b().Arbitrary("FT.SEARCH").Args(args...).Build()}
	if f := req.ViewportField(); f != "" {
		cmds = append(cmds, s.b().Arbitrary("FT.AGGREGATE").Args(viewportArgs(req.Index(), q, f)...).Build())
	}

	results := s.client.DoMulti(ctx, cmds...)

	raw, err := results[0].ToArray()
	if err != nil {
		return nil, wrap(db.OpSearch, err)
	}
	out, err := parseSearchResult(raw, req.Index())
	if err != nil {
		return nil, &db.Error{Op: db.OpDecode, Err: err}
	}

	if len(results) > 1 {
		agg, err := results[1].ToArray()
		if err != nil {
			return nil, wrap(db.OpAggregate, err)
		}
		out.Viewport = parseViewport(agg)
	}
	return out, nil
}

// Count returns the number of matches via FT.SEARCH with LIMIT 0 0.
func (s *Store) Count(ctx context.Context, req *query.Request) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").
		Args(req.Index(), buildQuery(req), "LIMIT", "0", "0", "DIALECT", "2").
		Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, wrap(db.OpCount, err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpDecode, Err: fmt.Errorf("parse count: %w", err)}
	}
	return int(total), nil
}

func viewportArgs(index, q, field string) []string {
	lat, lon := "@"+escapeField(field+latSuffix), "@"+escapeField(field+lonSuffix)
	return []string{
		index, q,
		"GROUPBY", "0",
		"REDUCE", "MIN", "1", lat, "AS", "min_lat",
		"REDUCE", "MAX", "1", lat, "AS", "max_lat",
		"REDUCE", "MIN", "1", lon, "AS", "min_lon",
		"REDUCE", "MAX", "1", lon, "AS", "max_lon",
		"DIALECT", "2",
	}
}

// --- Result parsing ---

// parseSearchResult reads [total, key1, fields1, key2, fields2, ...].
// JSON documents arrive as a single "$" field holding the whole document.
func parseSearchResult(raw []rueidis.RedisMessage, index string) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	entries := make([]db.Record, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		pairs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		fields, err := decodeFields(parseFieldPairs(pairs))
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", key, err)
		}
		entries = append(entries, db.Record{ID: trimKey(index, key), Fields: fields})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func decodeFields(pairs map[string]string) (map[string]any, error) {
	if doc, ok := pairs["$"]; ok {
		var m map[string]any
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			return nil, err
		}
		return m, nil
	}
	m := make(map[string]any, len(pairs))
	for k, v := range pairs {
		m[k] = v
	}
	return m, nil
}

// parseViewport reads [1, [min_lat, v, max_lat, v, min_lon, v, max_lon, v]].
// Any missing or non-finite value means no document carried a location.
func parseViewport(raw []rueidis.RedisMessage) *geo.Bounds {
	if len(raw) < 2 {
		return nil
	}
	row, err := raw[1].ToArray()
	if err != nil {
		return nil
	}
	vals := make(map[string]float64, 4)
	for k, v := range parseFieldPairs(row) {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil
		}
		vals[k] = f
	}
	for _, k := range []string{"min_lat", "max_lat", "min_lon", "max_lon"} {
		if _, ok := vals[k]; !ok {
			return nil
		}
	}
	b, err := geo.FromMinMax(vals["min_lat"], vals["max_lat"], vals["min_lon"], vals["max_lon"])
	if err != nil {
		return nil
	}
	return &b
}

func trimKey(index, key string) string {
	return strings.TrimPrefix(key, index+":")
}

// --- Query building ---

// buildQuery renders every clause as an intersected RediSearch term.
// A request without clauses matches all documents.
func buildQuery(req *query.Request) string {
	parts := make([]string, 0, len(req.Scope())+len(req.Clauses()))
	for _, c := range req.Filters() {
		parts = append(parts, renderClause(c))
	}
	for _, c := range req.Queries() {
		parts = append(parts, renderClause(c))
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func renderClause(c query.Clause) string {
	field := escapeField(c.Field())
	switch c.Kind() {
	case query.KindFilter:
		return fmt.Sprintf("@%s:{%s}", field, tagEscaper.Replace(c.Value()))
	case query.KindPrefix:
		return fmt.Sprintf("@%s:%s", field, group(words(c.Value()), "", "*"))
	case query.KindFuzzy:
		return fmt.Sprintf("@%s:%s", field, group(words(c.Value()), "%", "%"))
	case query.KindTerm:
		return fmt.Sprintf(`@%s:"%s"`, field, phraseEscaper.Replace(c.Value()))
	default:
		return fmt.Sprintf("@%s:(%s)", field, escapeQuery(c.Value()))
	}
}

// words splits a value into escaped query terms.
func words(v string) []string {
	ws := strings.Fields(v)
	for i, w := range ws {
		ws[i] = escapeQuery(w)
	}
	return ws
}

// group renders prefix and fuzzy values. Every word of a fuzzy value is
// wrapped; only the last word of a prefix value gets the wildcard, so a
// multi-word prefix stays bound to its field.
func group(ws []string, open, closing string) string {
	if len(ws) <= 1 {
		return open + strings.Join(ws, "") + closing
	}
	parts := make([]string, len(ws))
	for i, w := range ws {
		switch {
		case open != "":
			parts[i] = open + w + closing
		case i == len(ws)-1:
			parts[i] = w + closing
		default:
			parts[i] = w
		}
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// escapeField escapes every rune of an attribute name outside [A-Za-z0-9_],
// so a parameter name cannot alter the query.
func escapeField(name string) string {
	var b strings.Builder
	for _, r := range name {
		if !isFieldRune(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isFieldRune(r rune) bool {
	return r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	"\\", "\\\\",
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

var phraseEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
