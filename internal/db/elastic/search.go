package elastic

import (
	"context"
	"encoding/json"
	"fmt"

	es "github.com/olivere/elastic/v7"

	"github.com/dwsearch/dwsearch/internal/db"
	"github.com/dwsearch/dwsearch/internal/domain/geo"
	"github.com/dwsearch/dwsearch/internal/domain/search/query"
)

// Search runs a bool query with an optional geo_bounds aggregation.
func (s *Store) Search(ctx context.Context, req *query.Request) (*db.SearchResult, error) {
	svc := s.client.Search(req.Index()).
		Query(buildQuery(req)).
		From(req.From()).
		Size(req.Size()).
		TrackTotalHits(true)
	if f := req.SortField(); f != "" {
		svc = svc.Sort(f, true)
	}
	if f := req.ViewportField(); f != "" {
		svc = svc.Aggregation(query.ViewportAggregation, es.NewGeoBoundsAggregation().Field(f))
	}

	res, err := svc.Do(ctx)
	if err != nil {
		return nil, wrap(db.OpSearch, err)
	}

	out := &db.SearchResult{Total: int(res.TotalHits())}
	if res.Hits != nil {
		out.Entries = make([]db.Record, 0, len(res.Hits.Hits))
		for _, hit := range res.Hits.Hits {
			fields, err := decodeSource(hit.Source)
			if err != nil {
				return nil, &db.Error{Op: db.OpDecode, Err: fmt.Errorf("hit %s: %w", hit.Id, err)}
			}
			out.Entries = append(out.Entries, db.Record{ID: hit.Id, Fields: fields})
		}
	}

	if raw, ok := res.Aggregations[query.ViewportAggregation]; ok {
		vp, err := parseViewport(raw)
		if err != nil {
			return nil, &db.Error{Op: db.OpDecode, Err: err}
		}
		out.Viewport = vp
	}
	return out, nil
}

// Count runs the request's query against _count.
func (s *Store) Count(ctx context.Context, req *query.Request) (int, error) {
	n, err := s.client.Count(req.Index()).Query(buildQuery(req)).Do(ctx)
	if err != nil {
		return 0, wrap(db.OpCount, err)
	}
	return int(n), nil
}

// buildQuery renders filters into bool.filter and scoring clauses into bool.must.
// A bool query without clauses matches every document.
func buildQuery(req *query.Request) *es.BoolQuery {
	bq := es.NewBoolQuery()
	for _, c := range req.Filters() {
		bq = bq.Filter(es.NewTermQuery(c.Field(), c.Value()))
	}
	for _, c := range req.Queries() {
		bq = bq.Must(clauseQuery(c))
	}
	return bq
}

func clauseQuery(c query.Clause) es.Query {
	switch c.Kind() {
	case query.KindPrefix:
		return es.NewPrefixQuery(c.Field(), c.Value())
	case query.KindFuzzy:
		return es.NewFuzzyQuery(c.Field(), c.Value())
	case query.KindTerm, query.KindFilter:
		return es.NewTermQuery(c.Field(), c.Value())
	default:
		return es.NewMatchQuery(c.Field(), c.Value())
	}
}

type geoBoundsAgg struct {
	Bounds *struct {
		TopLeft     geo.Point `json:"top_left"`
		BottomRight geo.Point `json:"bottom_right"`
	} `json:"bounds"`
}

// parseViewport decodes a geo_bounds aggregation. Elasticsearch omits
// "bounds" when no matching document has a location.
func parseViewport(raw json.RawMessage) (*geo.Bounds, error) {
	var agg geoBoundsAgg
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, fmt.Errorf("viewport aggregation: %w", err)
	}
	if agg.Bounds == nil {
		return nil, nil
	}
	return &geo.Bounds{TopLeft: agg.Bounds.TopLeft, BottomRight: agg.Bounds.BottomRight}, nil
}

func decodeSource(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
