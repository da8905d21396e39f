package dataset

import (
	"context"
	"testing"

	"github.com/dwsearch/dwsearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn  func(ctx context.Context, index, id string) (*db.Record, error)
	listFn func(ctx context.Context, index string, limit int) ([]db.Record, error)
}

func (m *mockStore) GetDataset(ctx context.Context, index, id string) (*db.Record, error) {
	if m.getFn != nil {
		return m.getFn(ctx, index, id)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) ListDatasets(ctx context.Context, index string, limit int) ([]db.Record, error) {
	if m.listFn != nil {
		return m.listFn(ctx, index, limit)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "datasets", 500), ms
}
