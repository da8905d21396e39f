// Package elastic implements db.Store on top of an Elasticsearch 7 cluster.
package elastic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	es "github.com/olivere/elastic/v7"

	"github.com/dwsearch/dwsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	// Sniff discovers the remaining cluster nodes from the first address.
	Sniff bool
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Store implements db.Store via olivere/elastic.
type Store struct {
	client *es.Client
	url    string
}

// NewStore creates an Elasticsearch store. No request is sent until first use.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}

	opts := []es.ClientOptionFunc{
		es.SetURL(cfg.Addrs...),
		es.SetSniff(cfg.Sniff),
		es.SetHealthcheck(false),
	}
	if cfg.Username != "" {
		opts = append(opts, es.SetBasicAuth(cfg.Username, cfg.Password))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, es.SetHttpClient(cfg.HTTPClient))
	}

	client, err := es.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, url: cfg.Addrs[0]}, nil
}

// Ping checks connectivity against the first configured node.
func (s *Store) Ping(ctx context.Context) error {
	_, code, err := s.client.Ping(s.url).Do(ctx)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	if code >= http.StatusBadRequest {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("unexpected status %d", code)}
	}
	return nil
}

// Close stops background goroutines of the client.
func (s *Store) Close() {
	s.client.Stop()
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for elasticsearch: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// wrap maps a client error onto the db error vocabulary.
func wrap(op string, err error) error {
	if es.IsNotFound(err) {
		if op == db.OpGet {
			return db.ErrKeyNotFound
		}
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrIndexNotFound, err)}
	}
	return &db.Error{Op: op, Err: err}
}
