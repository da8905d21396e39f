package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/redis/rueidis"

	"github.com/dwsearch/dwsearch/internal/db"
)

// GetDataset reads the JSON document stored at <index>:<id>.
func (s *Store) GetDataset(ctx context.Context, index, id string) (*db.Record, error) {
	key := index + ":" + id
	cmd := s.b().Arbitrary("JSON.GET").Keys(key).Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, wrap(db.OpGet, err)
	}
	if raw == "" {
		return nil, db.ErrKeyNotFound
	}
	fields, err := decodeDocument(raw)
	if err != nil {
		return nil, &db.Error{Op: db.OpDecode, Err: fmt.Errorf("dataset %s: %w", id, err)}
	}
	return &db.Record{ID: id, Fields: fields}, nil
}

// ListDatasets scans <index>:* and fetches up to limit documents, ordered by key.
func (s *Store) ListDatasets(ctx context.Context, index string, limit int) ([]db.Record, error) {
	keys, err := s.scan(ctx, index+":*")
	if err != nil {
		return nil, err
	}
	slices.Sort(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make(rueidis.Commands, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Arbitrary("JSON.GET").Keys(key).Build()
	}

	out := make([]db.Record, 0, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		raw, err := res.ToString()
		if rueidis.IsRedisNil(err) {
			// deleted between SCAN and JSON.GET
			continue
		}
		if err != nil {
			return nil, &db.Error{Op: db.OpGet, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		fields, err := decodeDocument(raw)
		if err != nil {
			return nil, &db.Error{Op: db.OpDecode, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		out = append(out, db.Record{ID: trimKey(index, keys[i]), Fields: fields})
	}
	return out, nil
}

// scan iterates keys matching a pattern.
func (s *Store) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// decodeDocument accepts both a bare object and the single-element array
// returned for JSONPath queries.
func decodeDocument(raw string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err == nil {
		return m, nil
	}
	var arr []map[string]any
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return map[string]any{}, nil
	}
	return arr[0], nil
}
