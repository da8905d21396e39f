package dwsearch

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "elasticsearch" or "redis"
	addrs    []string
	username string
	password string
	db       int  // redis only
	sniff    bool // elasticsearch only

	resolverIndex string
	datasetsIndex string
	listSize      int

	fields     Fields
	fieldTypes map[string]string
	cores      []Core

	timeout          time.Duration
	readinessTimeout time.Duration

	logger *zap.Logger
}

// Fields names the reserved index fields. Empty names keep the defaults.
type Fields struct {
	Dataset  string
	Core     string
	Location string
	ID       string
}

// Core declares a document category. Fields maps a field name to its
// query type: match, keyword, prefix, fuzzy or term.
type Core struct {
	ID     string
	Name   string
	Index  string
	Fields map[string]string
	Form   []string
}

// WithElasticsearch connects the client to an Elasticsearch cluster.
func WithElasticsearch(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "elasticsearch"
		c.addrs = addrs
	})
}

// WithRedis connects the client to a Redis instance with RediSearch and RedisJSON.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithSniff lets the Elasticsearch client discover the remaining cluster nodes.
func WithSniff() Option {
	return optionFunc(func(c *clientConfig) {
		c.sniff = true
	})
}

// WithRedisDB selects the Redis logical database.
func WithRedisDB(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.db = n
	})
}

// WithBasicAuth sets backend credentials.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithIndexes overrides the document and dataset metadata index names.
// Defaults: "resolver" and "datasets".
func WithIndexes(resolver, datasets string) Option {
	return optionFunc(func(c *clientConfig) {
		c.resolverIndex = resolver
		c.datasetsIndex = datasets
	})
}

// WithFields overrides the reserved field names.
func WithFields(f Fields) Option {
	return optionFunc(func(c *clientConfig) {
		c.fields = f
	})
}

// WithFieldTypes sets the global field type table.
func WithFieldTypes(types map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.fieldTypes = types
	})
}

// WithCores declares the searchable cores.
func WithCores(cores ...Core) Option {
	return optionFunc(func(c *clientConfig) {
		c.cores = append(c.cores, cores...)
	})
}

// WithTimeout bounds every backend call. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithLogger sets the logger for client operations. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

func (c *clientConfig) applyDefaults() {
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.resolverIndex == "" {
		c.resolverIndex = "resolver"
	}
	if c.datasetsIndex == "" {
		c.datasetsIndex = "datasets"
	}
	if c.listSize <= 0 {
		c.listSize = 500
	}
	if c.fields.Dataset == "" {
		c.fields.Dataset = "_dataset"
	}
	if c.fields.Core == "" {
		c.fields.Core = "_core"
	}
	if c.fields.Location == "" {
		c.fields.Location = "_location"
	}
	if c.fields.ID == "" {
		c.fields.ID = "_id"
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	if c.readinessTimeout <= 0 {
		c.readinessTimeout = 10 * time.Second
	}
}
