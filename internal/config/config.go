package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dwsearch/dwsearch/internal/domain"
	"github.com/dwsearch/dwsearch/internal/domain/search/fieldtype"
)

// Backend drivers.
const (
	DriverElasticsearch = "elasticsearch"
	DriverRedis         = "redis"
)

// Config holds the dwsearch configuration. It is loaded once at startup and
// never mutated afterwards.
type Config struct {
	HTTP      HTTPConfig             `yaml:"http"`
	Backend   BackendConfig          `yaml:"backend"`
	Index     IndexConfig            `yaml:"index"`
	Fields    FieldsConfig           `yaml:"fields"`
	Search    map[string]FieldConfig `yaml:"search"`
	Cores     map[string]CoreConfig  `yaml:"cores"`
	Languages []LanguageConfig       `yaml:"languages"`
	Logging   LoggingConfig          `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// BackendConfig holds search backend connection settings.
type BackendConfig struct {
	Driver           string   `yaml:"driver"` // elasticsearch, redis (default: elasticsearch)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`                    // redis only
	Sniff            bool     `yaml:"sniff"`                 // elasticsearch only
	TimeoutSec       int      `yaml:"timeout_sec"`           // per backend call
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"` // startup wait
}

// IndexConfig names the document and metadata indexes.
type IndexConfig struct {
	Resolver        string `yaml:"resolver"`
	Datasets        string `yaml:"datasets"`
	DatasetListSize int    `yaml:"dataset_list_size"`
}

// FieldsConfig holds the reserved index field names.
type FieldsConfig struct {
	Dataset  string `yaml:"dataset"`
	Core     string `yaml:"core"`
	Location string `yaml:"location"`
	ID       string `yaml:"id"`
}

// FieldConfig declares how a searchable field is queried.
type FieldConfig struct {
	Type string `yaml:"type"` // match (default), keyword, prefix, fuzzy, term
}

// CoreConfig describes one core (document category).
type CoreConfig struct {
	Name   string                 `yaml:"name"`
	Index  string                 `yaml:"index"` // optional, defaults to index.resolver
	Fields map[string]FieldConfig `yaml:"fields"`
	Form   []string               `yaml:"form"` // fields offered on the search form
}

// LanguageConfig is one entry of the language selector.
type LanguageConfig struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads, expands, defaults and validates a configuration file.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Backend.Driver == "" {
		c.Backend.Driver = DriverElasticsearch
	}
	if c.Backend.TimeoutSec <= 0 {
		c.Backend.TimeoutSec = 10
	}
	if c.Backend.ReadinessTimeout <= 0 {
		c.Backend.ReadinessTimeout = 10
	}
	if c.Index.Resolver == "" {
		c.Index.Resolver = "resolver"
	}
	if c.Index.Datasets == "" {
		c.Index.Datasets = "datasets"
	}
	if c.Index.DatasetListSize <= 0 {
		c.Index.DatasetListSize = 500
	}
	if c.Fields.Dataset == "" {
		c.Fields.Dataset = "_dataset"
	}
	if c.Fields.Core == "" {
		c.Fields.Core = "_core"
	}
	if c.Fields.Location == "" {
		c.Fields.Location = "_location"
	}
	if c.Fields.ID == "" {
		c.Fields.ID = "_id"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Backend.Driver {
	case DriverElasticsearch, DriverRedis:
	default:
		return fmt.Errorf("backend.driver must be %q or %q, got %q", DriverElasticsearch, DriverRedis, c.Backend.Driver)
	}
	if len(c.Backend.Addrs) == 0 {
		return errors.New("backend.addrs is required")
	}
	if _, err := parseTable(c.Search); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	for id, core := range c.Cores {
		if _, err := parseTable(core.Fields); err != nil {
			return fmt.Errorf("cores.%s.fields: %w", id, err)
		}
	}
	return nil
}

// FieldTypes returns the global field type table.
func (c *Config) FieldTypes() fieldtype.Table {
	t, _ := parseTable(c.Search) // checked by Validate
	return t
}

// Catalog builds the core catalog, ordered by core id.
func (c *Config) Catalog() *domain.Catalog {
	ids := make([]string, 0, len(c.Cores))
	for id := range c.Cores {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	cores := make([]domain.Core, 0, len(ids))
	for _, id := range ids {
		cc := c.Cores[id]
		fields, _ := parseTable(cc.Fields) // checked by Validate
		name := cc.Name
		if name == "" {
			name = id
		}
		cores = append(cores, domain.Core{
			ID:     id,
			Name:   name,
			Index:  cc.Index,
			Fields: fields,
			Form:   cc.Form,
		})
	}
	return domain.NewCatalog(cores...)
}

func parseTable(fields map[string]FieldConfig) (fieldtype.Table, error) {
	t := make(fieldtype.Table, len(fields))
	for name, f := range fields {
		ft, err := fieldtype.Parse(f.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		t[name] = ft
	}
	return t, nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
