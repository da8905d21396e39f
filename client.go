// Package dwsearch embeds the dataset search layer in another program:
// query strings in, scoped result pages out.
package dwsearch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dwsearch/dwsearch/internal/db"
	"github.com/dwsearch/dwsearch/internal/db/driver"
	"github.com/dwsearch/dwsearch/internal/domain"
	"github.com/dwsearch/dwsearch/internal/domain/search/fieldtype"
	datasetrepo "github.com/dwsearch/dwsearch/internal/repository/dataset"
	searchrepo "github.com/dwsearch/dwsearch/internal/repository/search"
	datasetuc "github.com/dwsearch/dwsearch/internal/usecase/dataset"
	searchuc "github.com/dwsearch/dwsearch/internal/usecase/search"
)

// Client is the dwsearch entry point.
type Client struct {
	store    db.Store
	search   *searchuc.Service
	datasets *datasetuc.Service
	logger   *zap.Logger
}

// New creates a Client and connects to the search backend.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	cfg.applyDefaults()

	if len(cfg.addrs) == 0 {
		return nil, errors.New("dwsearch: backend address required (use WithElasticsearch or WithRedis)")
	}

	store, err := driver.Open(driver.Config{
		Driver:   cfg.driver,
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
		Sniff:    cfg.sniff,
	})
	if err != nil {
		return nil, fmt.Errorf("dwsearch: %w", err)
	}

	if err := store.WaitForReady(context.Background(), cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("dwsearch: backend not ready: %w", err)
	}

	c, err := wireClient(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	types, err := parseTypes(cfg.fieldTypes)
	if err != nil {
		return nil, fmt.Errorf("dwsearch: field types: %w", err)
	}

	cores := make([]domain.Core, 0, len(cfg.cores))
	for _, c := range cfg.cores {
		fields, err := parseTypes(c.Fields)
		if err != nil {
			return nil, fmt.Errorf("dwsearch: core %s: %w", c.ID, err)
		}
		name := c.Name
		if name == "" {
			name = c.ID
		}
		cores = append(cores, domain.Core{ID: c.ID, Name: name, Index: c.Index, Fields: fields, Form: c.Form})
	}
	catalog := domain.NewCatalog(cores...)

	searchRepo := searchrepo.New(store)
	datasetRepo := datasetrepo.New(store, cfg.datasetsIndex, cfg.listSize)

	searchSvc := searchuc.New(searchRepo, datasetRepo, catalog, searchuc.Config{
		Index: cfg.resolverIndex,
		Fields: searchuc.Fields{
			Dataset:  cfg.fields.Dataset,
			Core:     cfg.fields.Core,
			Location: cfg.fields.Location,
			ID:       cfg.fields.ID,
		},
		Types:   types,
		Timeout: cfg.timeout,
	})

	return &Client{
		store:    store,
		search:   searchSvc,
		datasets: datasetuc.New(datasetRepo, searchSvc, catalog),
		logger:   cfg.logger,
	}, nil
}

func parseTypes(m map[string]string) (fieldtype.Table, error) {
	t := make(fieldtype.Table, len(m))
	for name, s := range m {
		ft, err := fieldtype.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		t[name] = ft
	}
	return t, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks backend connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
