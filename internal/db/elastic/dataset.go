package elastic

import (
	"context"
	"fmt"

	"github.com/dwsearch/dwsearch/internal/db"
)

// GetDataset fetches one metadata document by id.
func (s *Store) GetDataset(ctx context.Context, index, id string) (*db.Record, error) {
	res, err := s.client.Get().Index(index).Id(id).Do(ctx)
	if err != nil {
		return nil, wrap(db.OpGet, err)
	}
	if !res.Found {
		return nil, db.ErrKeyNotFound
	}
	fields, err := decodeSource(res.Source)
	if err != nil {
		return nil, &db.Error{Op: db.OpDecode, Err: fmt.Errorf("dataset %s: %w", id, err)}
	}
	return &db.Record{ID: res.Id, Fields: fields}, nil
}

// ListDatasets returns up to limit metadata documents in index order.
func (s *Store) ListDatasets(ctx context.Context, index string, limit int) ([]db.Record, error) {
	res, err := s.client.Search(index).Size(limit).Do(ctx)
	if err != nil {
		return nil, wrap(db.OpList, err)
	}
	if res.Hits == nil {
		return nil, nil
	}
	out := make([]db.Record, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		fields, err := decodeSource(hit.Source)
		if err != nil {
			return nil, &db.Error{Op: db.OpDecode, Err: fmt.Errorf("dataset %s: %w", hit.Id, err)}
		}
		out = append(out, db.Record{ID: hit.Id, Fields: fields})
	}
	return out, nil
}
