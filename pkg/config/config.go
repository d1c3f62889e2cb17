// Package config provides the configuration system for metactx.
// A single Config structure carries every section; each component reads the
// section it needs.
//
// The configuration is organized into logical sections:
//   - Server: HTTP listener and authentication of the metadata server
//   - Storage: which backend persists elements and where
//   - Repository: paging limits and the user allow-list
//   - Context: the defaults a connector context forwards on every call
//   - Remote: how a connector reaches a remote metadata server
//   - Events: publication of element events to Kafka
//   - Observability: logging, tracing and metrics
//
// Example usage:
//
//	cfg := config.Default()
//	cfg.Storage.Backend = config.BackendPostgres
//	cfg.Storage.PostgresDSN = "postgres://localhost/metadata"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"strings"
	"time"
)

// Storage backend names.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongoDB  = "mongodb"
)

// Config is the root configuration structure.
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server" mapstructure:"server"`
	Storage       StorageConfig       `yaml:"storage" json:"storage" mapstructure:"storage"`
	Repository    RepositoryConfig    `yaml:"repository" json:"repository" mapstructure:"repository"`
	Context       ContextConfig       `yaml:"context" json:"context" mapstructure:"context"`
	Remote        RemoteConfig        `yaml:"remote" json:"remote" mapstructure:"remote"`
	Events        EventsConfig        `yaml:"events" json:"events" mapstructure:"events"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`
}

// ServerConfig configures the HTTP metadata server.
type ServerConfig struct {
	// Name is the metadata server name used in request paths
	Name string `yaml:"name" json:"name" mapstructure:"name"`
	// Address is the listen address
	Address string `yaml:"address" json:"address" mapstructure:"address"`
	// JWTSecret enables HS256 bearer token verification when set
	JWTSecret       string        `yaml:"jwt_secret" json:"jwt_secret" mapstructure:"jwt_secret"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	// Backend is one of memory, postgres, mongodb
	Backend       string `yaml:"backend" json:"backend" mapstructure:"backend"`
	PostgresDSN   string `yaml:"postgres_dsn" json:"postgres_dsn" mapstructure:"postgres_dsn"`
	MongoURI      string `yaml:"mongo_uri" json:"mongo_uri" mapstructure:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database" json:"mongo_database" mapstructure:"mongo_database"`
	// SnapshotPath persists the memory backend across restarts
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path" mapstructure:"snapshot_path"`
	// SnapshotCodec is zstd, lz4, s2 or none; empty picks by file extension
	SnapshotCodec string `yaml:"snapshot_codec" json:"snapshot_codec" mapstructure:"snapshot_codec"`
}

// RepositoryConfig configures the repository semantics.
type RepositoryConfig struct {
	// MaxPageSize caps the page size of every query
	MaxPageSize int `yaml:"max_page_size" json:"max_page_size" mapstructure:"max_page_size"`
	// AllowedUsers restricts callers when non-empty
	AllowedUsers []string `yaml:"allowed_users" json:"allowed_users" mapstructure:"allowed_users"`
}

// ContextConfig holds the defaults a connector context forwards on each call.
type ContextConfig struct {
	UserID                 string `yaml:"user_id" json:"user_id" mapstructure:"user_id"`
	ConnectorName          string `yaml:"connector_name" json:"connector_name" mapstructure:"connector_name"`
	ConnectorGUID          string `yaml:"connector_guid" json:"connector_guid" mapstructure:"connector_guid"`
	ExternalSourceGUID     string `yaml:"external_source_guid" json:"external_source_guid" mapstructure:"external_source_guid"`
	ExternalSourceName     string `yaml:"external_source_name" json:"external_source_name" mapstructure:"external_source_name"`
	ForLineage             bool   `yaml:"for_lineage" json:"for_lineage" mapstructure:"for_lineage"`
	ForDuplicateProcessing bool   `yaml:"for_duplicate_processing" json:"for_duplicate_processing" mapstructure:"for_duplicate_processing"`
	SequencingOrder        string `yaml:"sequencing_order" json:"sequencing_order" mapstructure:"sequencing_order"`
	SequencingProperty     string `yaml:"sequencing_property" json:"sequencing_property" mapstructure:"sequencing_property"`
	DeleteMethod           string `yaml:"delete_method" json:"delete_method" mapstructure:"delete_method"`
	PageSize               int    `yaml:"page_size" json:"page_size" mapstructure:"page_size"`
}

// OAuth2Config configures client-credentials authentication.
type OAuth2Config struct {
	ClientID     string   `yaml:"client_id" json:"client_id" mapstructure:"client_id"`
	ClientSecret string   `yaml:"client_secret" json:"client_secret" mapstructure:"client_secret"`
	TokenURL     string   `yaml:"token_url" json:"token_url" mapstructure:"token_url"`
	Scopes       []string `yaml:"scopes" json:"scopes" mapstructure:"scopes"`
}

// Enabled reports whether client credentials are configured.
func (o OAuth2Config) Enabled() bool {
	return o.ClientID != "" && o.TokenURL != ""
}

// RemoteConfig configures the HTTP metadata client.
type RemoteConfig struct {
	BaseURL    string       `yaml:"base_url" json:"base_url" mapstructure:"base_url"`
	ServerName string       `yaml:"server_name" json:"server_name" mapstructure:"server_name"`
	Token      string       `yaml:"token" json:"token" mapstructure:"token"`
	OAuth2     OAuth2Config `yaml:"oauth2" json:"oauth2" mapstructure:"oauth2"`
	// RateLimitPerSec limits requests per second (0 = unlimited)
	RateLimitPerSec  float64       `yaml:"rate_limit_per_sec" json:"rate_limit_per_sec" mapstructure:"rate_limit_per_sec"`
	RateBurst        int           `yaml:"rate_burst" json:"rate_burst" mapstructure:"rate_burst"`
	RetryAttempts    int           `yaml:"retry_attempts" json:"retry_attempts" mapstructure:"retry_attempts"`
	RetryDelay       time.Duration `yaml:"retry_delay" json:"retry_delay" mapstructure:"retry_delay"`
	MaxRetryDelay    time.Duration `yaml:"max_retry_delay" json:"max_retry_delay" mapstructure:"max_retry_delay"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	CircuitBreaker   bool          `yaml:"circuit_breaker" json:"circuit_breaker" mapstructure:"circuit_breaker"`
	FailureThreshold int           `yaml:"failure_threshold" json:"failure_threshold" mapstructure:"failure_threshold"`
	SuccessThreshold int           `yaml:"success_threshold" json:"success_threshold" mapstructure:"success_threshold"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout" json:"breaker_timeout" mapstructure:"breaker_timeout"`
	EnableHTTP2      bool          `yaml:"enable_http2" json:"enable_http2" mapstructure:"enable_http2"`
}

// EventsConfig configures element event publication.
type EventsConfig struct {
	Enabled     bool     `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Brokers     []string `yaml:"brokers" json:"brokers" mapstructure:"brokers"`
	Topic       string   `yaml:"topic" json:"topic" mapstructure:"topic"`
	ClientID    string   `yaml:"client_id" json:"client_id" mapstructure:"client_id"`
	Acks        string   `yaml:"acks" json:"acks" mapstructure:"acks"`
	Compression string   `yaml:"compression" json:"compression" mapstructure:"compression"`
}

// ObservabilityConfig contains logging, tracing and metrics settings.
type ObservabilityConfig struct {
	LogLevel          string  `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	LogEncoding       string  `yaml:"log_encoding" json:"log_encoding" mapstructure:"log_encoding"`
	Development       bool    `yaml:"development" json:"development" mapstructure:"development"`
	EnableTracing     bool    `yaml:"enable_tracing" json:"enable_tracing" mapstructure:"enable_tracing"`
	EnableMetrics     bool    `yaml:"enable_metrics" json:"enable_metrics" mapstructure:"enable_metrics"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate" mapstructure:"tracing_sample_rate"`
}

// Default returns a Config with production-ready defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:            "metactx",
			Address:         ":9443",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Backend:       BackendMemory,
			MongoDatabase: "metactx",
		},
		Repository: RepositoryConfig{
			MaxPageSize: 1000,
		},
		Context: ContextConfig{
			UserID:          "integration-daemon",
			ConnectorName:   "metactx-connector",
			SequencingOrder: "CREATION_DATE_RECENT",
			DeleteMethod:    "LOOK_FOR_LINEAGE",
			PageSize:        0,
		},
		Remote: RemoteConfig{
			ServerName:       "metactx",
			RateLimitPerSec:  0,
			RateBurst:        10,
			RetryAttempts:    3,
			RetryDelay:       200 * time.Millisecond,
			MaxRetryDelay:    5 * time.Second,
			Timeout:          30 * time.Second,
			CircuitBreaker:   true,
			FailureThreshold: 5,
			SuccessThreshold: 2,
			BreakerTimeout:   30 * time.Second,
			EnableHTTP2:      false,
		},
		Events: EventsConfig{
			Enabled:     false,
			Topic:       "metactx.elements",
			ClientID:    "metactx",
			Acks:        "all",
			Compression: "none",
		},
		Observability: ObservabilityConfig{
			LogLevel:          "info",
			LogEncoding:       "json",
			EnableMetrics:     true,
			EnableTracing:     false,
			TracingSampleRate: 0.1,
		},
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return fmt.Errorf("server.name is required")
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres backend")
		}
	case BackendMongoDB:
		if c.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for the mongodb backend")
		}
		if c.Storage.MongoDatabase == "" {
			return fmt.Errorf("storage.mongo_database is required for the mongodb backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	switch strings.ToLower(c.Storage.SnapshotCodec) {
	case "", "zstd", "lz4", "s2", "none":
	default:
		return fmt.Errorf("unknown storage.snapshot_codec %q", c.Storage.SnapshotCodec)
	}
	if c.Repository.MaxPageSize <= 0 {
		return fmt.Errorf("repository.max_page_size must be positive")
	}
	if c.Context.PageSize < 0 {
		return fmt.Errorf("context.page_size cannot be negative")
	}
	if c.Context.PageSize > c.Repository.MaxPageSize {
		return fmt.Errorf("context.page_size cannot exceed repository.max_page_size")
	}
	if c.Remote.RetryAttempts < 0 {
		return fmt.Errorf("remote.retry_attempts cannot be negative")
	}
	if c.Remote.RateLimitPerSec < 0 {
		return fmt.Errorf("remote.rate_limit_per_sec cannot be negative")
	}
	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("events.brokers is required when events are enabled")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("events.topic is required when events are enabled")
		}
	}
	if c.Observability.TracingSampleRate < 0 || c.Observability.TracingSampleRate > 1 {
		return fmt.Errorf("observability.tracing_sample_rate must be between 0 and 1")
	}
	return nil
}

// IsRateLimited returns true if rate limiting is enabled
func (r *RemoteConfig) IsRateLimited() bool {
	return r.RateLimitPerSec > 0
}
