package elastic

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsearch/dwsearch/internal/db"
)

func TestGetDataset(t *testing.T) {
	node, s := newFakeNode(t)
	node.reply("/datasets/_doc/ds-1", http.StatusOK,
		`{"_index":"datasets","_id":"ds-1","found":true,"_source":{"title":"Registry"}}`)

	rec, err := s.GetDataset(context.Background(), "datasets", "ds-1")
	require.NoError(t, err)
	assert.Equal(t, "ds-1", rec.ID)
	assert.Equal(t, "Registry", rec.Fields["title"])
}

func TestGetDataset_NotFound(t *testing.T) {
	node, s := newFakeNode(t)
	node.reply("/datasets/_doc/nope", http.StatusNotFound,
		`{"_index":"datasets","_id":"nope","found":false}`)

	_, err := s.GetDataset(context.Background(), "datasets", "nope")
	assert.True(t, errors.Is(err, db.ErrKeyNotFound), "got %v", err)
}

func TestListDatasets(t *testing.T) {
	node, s := newFakeNode(t)
	node.reply("/datasets/_search", http.StatusOK, `{
		"hits": {"total": {"value": 2, "relation": "eq"}, "hits": [
			{"_id": "ds-1", "_source": {"title": "One"}},
			{"_id": "ds-2", "_source": {"title": "Two"}}
		]}}`)

	recs, err := s.ListDatasets(context.Background(), "datasets", 500)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "ds-2", recs[1].ID)

	body := node.lastBody(t, "/datasets/_search")
	assert.EqualValues(t, 500, body["size"])
}

func TestPing(t *testing.T) {
	node, s := newFakeNode(t)
	node.reply("/", http.StatusOK, `{"name":"node-1","cluster_name":"test","version":{"number":"7.17.0"}}`)

	require.NoError(t, s.Ping(context.Background()))
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	_, err := NewStore(Config{})
	assert.Error(t, err)
}
