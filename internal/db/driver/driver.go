// Package driver opens the search backend named in configuration.
package driver

import (
	"fmt"

	"github.com/dwsearch/dwsearch/internal/db"
	dbElastic "github.com/dwsearch/dwsearch/internal/db/elastic"
	dbRedis "github.com/dwsearch/dwsearch/internal/db/redis"
)

// Supported drivers.
const (
	Elasticsearch = "elasticsearch"
	Redis         = "redis"
)

// Config selects and parameterizes a backend.
type Config struct {
	Driver   string
	Addrs    []string
	Username string
	Password string
	DB       int  // redis only
	Sniff    bool // elasticsearch only
}

// Open creates the store for cfg.Driver. No request is sent yet; callers
// wait with Store.WaitForReady.
func Open(cfg Config) (db.Store, error) {
	switch cfg.Driver {
	case Elasticsearch:
		s, err := dbElastic.NewStore(dbElastic.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			Sniff:    cfg.Sniff,
		})
		if err != nil {
			return nil, fmt.Errorf("create elasticsearch store: %w", err)
		}
		return s, nil
	case Redis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.Driver)
	}
}
