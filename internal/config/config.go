// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/sigil-dev/redvec/internal/embedding"
	"github.com/sigil-dev/redvec/internal/store"
	"github.com/sigil-dev/redvec/internal/vector"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// EnvPrefix is the prefix of every environment override, e.g.
// REDVEC_REDIS_HOST for redis.host.
const EnvPrefix = "REDVEC"

// Config is the top-level redvec configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Index    IndexConfig    `mapstructure:"index" yaml:"index"`
	Query    QueryConfig    `mapstructure:"query" yaml:"query"`
	Embedder EmbedderConfig `mapstructure:"embedder" yaml:"embedder"`
	Greeting GreetingConfig `mapstructure:"greeting" yaml:"greeting"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// StorageConfig selects the storage backend.
type StorageConfig struct {
	Backend    string `mapstructure:"backend" yaml:"backend"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// RedisConfig holds the connection settings of the redis backend.
type RedisConfig struct {
	Host            string `mapstructure:"host" yaml:"host"`
	Port            int    `mapstructure:"port" yaml:"port"`
	Password        string `mapstructure:"password" yaml:"password"`
	DB              int    `mapstructure:"db" yaml:"db"`
	Protocol        int    `mapstructure:"protocol" yaml:"protocol"`
	DecodeResponses bool   `mapstructure:"decode_responses" yaml:"decode_responses"`
}

// IndexConfig declares the search index the workflow provisions.
type IndexConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Prefix      string `mapstructure:"prefix" yaml:"prefix"`
	TagField    string `mapstructure:"tag_field" yaml:"tag_field"`
	VectorField string `mapstructure:"vector_field" yaml:"vector_field"`
	Dimension   int    `mapstructure:"dimension" yaml:"dimension"`
	Metric      string `mapstructure:"metric" yaml:"metric"`
	Algorithm   string `mapstructure:"algorithm" yaml:"algorithm"`
}

// QueryConfig holds KNN query defaults.
type QueryConfig struct {
	K          int    `mapstructure:"k" yaml:"k"`
	Offset     int    `mapstructure:"offset" yaml:"offset"`
	Limit      int    `mapstructure:"limit" yaml:"limit"`
	Dialect    int    `mapstructure:"dialect" yaml:"dialect"`
	ScoreField string `mapstructure:"score_field" yaml:"score_field"`
}

// EmbedderConfig selects where record and query vectors come from.
type EmbedderConfig struct {
	Type    string `mapstructure:"type" yaml:"type"`
	Seed    uint64 `mapstructure:"seed" yaml:"seed"`
	Model   string `mapstructure:"model" yaml:"model"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// GreetingConfig is the key/value pair of the hello-world round trip.
type GreetingConfig struct {
	Key     string `mapstructure:"key" yaml:"key"`
	Message string `mapstructure:"message" yaml:"message"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Listen      string   `mapstructure:"listen" yaml:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig controls the slog handler installed by the CLI.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", store.DefaultBackend)
	v.SetDefault("storage.sqlite_path", "redvec.db")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.protocol", 2)
	v.SetDefault("redis.decode_responses", true)

	v.SetDefault("index.name", "index")
	v.SetDefault("index.prefix", "doc:")
	v.SetDefault("index.tag_field", "tag")
	v.SetDefault("index.vector_field", "vector")
	v.SetDefault("index.dimension", 1536)
	v.SetDefault("index.metric", string(vector.MetricCosine))
	v.SetDefault("index.algorithm", string(vector.AlgorithmFlat))

	v.SetDefault("query.k", 2)
	v.SetDefault("query.offset", 0)
	v.SetDefault("query.limit", 2)
	v.SetDefault("query.dialect", 2)
	v.SetDefault("query.score_field", "score")

	v.SetDefault("embedder.type", embedding.RandomName)
	v.SetDefault("embedder.seed", 0)
	v.SetDefault("embedder.model", "")
	v.SetDefault("embedder.api_key", "")
	v.SetDefault("embedder.base_url", "")

	v.SetDefault("greeting.key", "msg:greeting")
	v.SetDefault("greeting.message", "Hello World!")

	v.SetDefault("server.listen", "127.0.0.1:8080")
	v.SetDefault("server.cors_origins", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// SetupEnv enables REDVEC_-prefixed environment overrides on v.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix REDVEC_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, sigilerr.Errorf(sigilerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, sigilerr.Errorf(sigilerr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateRedis()...)
	errs = append(errs, c.validateIndex()...)
	errs = append(errs, c.validateQuery()...)
	errs = append(errs, c.validateEmbedder()...)
	errs = append(errs, c.validateGreeting()...)
	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"redis": true, "sqlite": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [redis, sqlite], got %q",
			c.Storage.Backend,
		))
	}

	if c.Storage.Backend == "sqlite" && c.Storage.SQLitePath == "" {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: storage.sqlite_path must not be empty when storage.backend is sqlite"))
	}

	return errs
}

func (c *Config) validateRedis() []error {
	var errs []error

	if c.Redis.Host == "" {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue, "config: redis.host must not be empty"))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: redis.port must be between 1 and 65535, got %d",
			c.Redis.Port,
		))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: redis.db must not be negative, got %d",
			c.Redis.DB,
		))
	}
	if c.Redis.Protocol != 2 {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: redis.protocol must be 2 (RESP2), got %d",
			c.Redis.Protocol,
		))
	}

	return errs
}

func (c *Config) validateIndex() []error {
	var errs []error

	if c.Index.Name == "" {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue, "config: index.name must not be empty"))
	}
	if c.Index.Prefix == "" {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue, "config: index.prefix must not be empty"))
	}
	if c.Index.TagField == "" || c.Index.VectorField == "" {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: index.tag_field and index.vector_field must not be empty"))
	} else if c.Index.TagField == c.Index.VectorField {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: index.tag_field and index.vector_field must differ, both are %q",
			c.Index.TagField,
		))
	} else if c.Index.TagField == store.NameField || c.Index.VectorField == store.NameField {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: index.tag_field and index.vector_field must not be %q, it holds the record name",
			store.NameField,
		))
	}
	if c.Index.Dimension <= 0 {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: index.dimension must be greater than 0, got %d",
			c.Index.Dimension,
		))
	}
	if _, err := vector.ParseMetric(c.Index.Metric); err != nil {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: index.metric must be one of [COSINE, L2, IP], got %q",
			c.Index.Metric,
		))
	}
	if _, err := vector.ParseAlgorithm(c.Index.Algorithm); err != nil {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: index.algorithm must be one of [FLAT, HNSW], got %q",
			c.Index.Algorithm,
		))
	}

	return errs
}

func (c *Config) validateQuery() []error {
	var errs []error

	if c.Query.K <= 0 {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: query.k must be greater than 0, got %d",
			c.Query.K,
		))
	}
	if c.Query.Offset < 0 {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: query.offset must not be negative, got %d",
			c.Query.Offset,
		))
	}
	if c.Query.Limit < 0 {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: query.limit must not be negative, got %d",
			c.Query.Limit,
		))
	}
	if c.Query.Dialect < 2 {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: query.dialect must be at least 2 for vector queries, got %d",
			c.Query.Dialect,
		))
	}
	if c.Query.ScoreField == "" {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue, "config: query.score_field must not be empty"))
	}

	return errs
}

func (c *Config) validateEmbedder() []error {
	var errs []error

	switch strings.ToLower(c.Embedder.Type) {
	case embedding.RandomName:
	case embedding.OpenAIName, embedding.GoogleName:
		if c.Embedder.APIKey == "" {
			errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
				"config: embedder.api_key must be set for embedder type %q",
				c.Embedder.Type,
			))
		}
	default:
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: embedder.type must be one of [random, openai, google], got %q",
			c.Embedder.Type,
		))
	}

	return errs
}

func (c *Config) validateGreeting() []error {
	if c.Greeting.Key == "" {
		return []error{sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue, "config: greeting.key must not be empty")}
	}
	return nil
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
		return errs
	}

	_, portStr, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: server.listen must be a valid host:port address, got %q: %w",
			c.Server.Listen, err,
		))
		return errs
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be a number, got %q",
			portStr,
		))
	} else if port < 0 || port > 65535 {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be between 0 and 65535, got %d",
			port,
		))
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: logging.level must be one of [debug, info, warn, error], got %q",
			c.Logging.Level,
		))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: logging.format must be one of [text, json], got %q",
			c.Logging.Format,
		))
	}

	return errs
}

// StorageConfig converts the storage and redis sections for store.Open.
func (c *Config) StorageConfig() *store.StorageConfig {
	return &store.StorageConfig{
		Backend:    c.Storage.Backend,
		SQLitePath: c.Storage.SQLitePath,
		Redis: store.RedisConfig{
			Host:     c.Redis.Host,
			Port:     c.Redis.Port,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Protocol: c.Redis.Protocol,
		},
	}
}

// IndexSpec converts the index section. Validate has already accepted the
// metric and algorithm names.
func (c *Config) IndexSpec() store.IndexSpec {
	metric, _ := vector.ParseMetric(c.Index.Metric)
	alg, _ := vector.ParseAlgorithm(c.Index.Algorithm)
	return store.IndexSpec{
		Name:        c.Index.Name,
		Prefix:      c.Index.Prefix,
		TagField:    c.Index.TagField,
		VectorField: c.Index.VectorField,
		Dimension:   c.Index.Dimension,
		Metric:      metric,
		Algorithm:   alg,
		ElementType: vector.ElementFloat32,
	}
}

// EmbeddingConfig converts the embedder section, sized to the index.
func (c *Config) EmbeddingConfig() embedding.Config {
	return embedding.Config{
		Type:      c.Embedder.Type,
		Dimension: c.Index.Dimension,
		Seed:      c.Embedder.Seed,
		Model:     c.Embedder.Model,
		APIKey:    c.Embedder.APIKey,
		BaseURL:   c.Embedder.BaseURL,
	}
}

// Page returns the configured result window. A zero limit means k.
func (c *Config) Page() store.Page {
	limit := c.Query.Limit
	if limit == 0 {
		limit = c.Query.K
	}
	return store.Page{Offset: c.Query.Offset, Limit: limit}
}
