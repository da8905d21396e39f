package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/dwsearch/dwsearch/internal/db"
	"github.com/dwsearch/dwsearch/internal/domain"
)

func TestGet_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.getFn = func(_ context.Context, index, id string) (*db.Record, error) {
		if index != "datasets" || id != "ds-1" {
			t.Errorf("unexpected lookup %s/%s", index, id)
		}
		return &db.Record{ID: id, Fields: map[string]any{"title": "Registry"}}, nil
	}

	ds, err := repo.Get(context.Background(), "ds-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.ID != "ds-1" || ds.Title() != "Registry" {
		t.Errorf("unexpected dataset: %+v", ds)
	}
}

func TestGet_NotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"missing document", db.ErrKeyNotFound},
		{"missing index", &db.Error{Op: db.OpGet, Err: db.ErrIndexNotFound}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.getFn = func(context.Context, string, string) (*db.Record, error) { return nil, tt.err }

			_, err := repo.Get(context.Background(), "ds-9")
			var snf *domain.ScopeNotFoundError
			if !errors.As(err, &snf) || snf.Kind != domain.ScopeDataset || snf.ID != "ds-9" {
				t.Fatalf("expected dataset scope not found, got %v", err)
			}
		})
	}
}

func TestGet_BackendError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.getFn = func(context.Context, string, string) (*db.Record, error) {
		return nil, &db.Error{Op: db.OpGet, Err: context.DeadlineExceeded}
	}

	_, err := repo.Get(context.Background(), "ds-1")
	if errors.Is(err, domain.ErrScopeNotFound) {
		t.Fatal("backend failure must not look like a missing dataset")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected cause, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.listFn = func(_ context.Context, _ string, limit int) ([]db.Record, error) {
		if limit != 500 {
			t.Errorf("unexpected limit %d", limit)
		}
		return []db.Record{{ID: "ds-1"}, {ID: "ds-2"}}, nil
	}

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[1].ID != "ds-2" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestList_MissingIndexIsEmpty(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.listFn = func(context.Context, string, int) ([]db.Record, error) {
		return nil, &db.Error{Op: db.OpList, Err: db.ErrIndexNotFound}
	}

	list, err := repo.List(context.Background())
	if err != nil || len(list) != 0 {
		t.Fatalf("List() = %v, %v", list, err)
	}
}
