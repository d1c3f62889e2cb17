package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. METACTX_STORAGE_BACKEND.
const EnvPrefix = "METACTX"

// Load reads configuration with viper: defaults, then the optional file at
// path (yaml or json by extension), then METACTX_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a yaml file on top of the defaults. ${VAR_NAME} references
// in the file are replaced by environment values before parsing.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as yaml.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		content = content[:start] + os.Getenv(varName) + content[end+1:]
	}
	return content
}

// setDefaults registers every default value with viper so that environment
// variables are bound for keys absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.name", d.Server.Name)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.jwt_secret", d.Server.JWTSecret)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)
	v.SetDefault("storage.mongo_uri", d.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", d.Storage.MongoDatabase)
	v.SetDefault("storage.snapshot_path", d.Storage.SnapshotPath)
	v.SetDefault("storage.snapshot_codec", d.Storage.SnapshotCodec)

	v.SetDefault("repository.max_page_size", d.Repository.MaxPageSize)
	v.SetDefault("repository.allowed_users", d.Repository.AllowedUsers)

	v.SetDefault("context.user_id", d.Context.UserID)
	v.SetDefault("context.connector_name", d.Context.ConnectorName)
	v.SetDefault("context.connector_guid", d.Context.ConnectorGUID)
	v.SetDefault("context.external_source_guid", d.Context.ExternalSourceGUID)
	v.SetDefault("context.external_source_name", d.Context.ExternalSourceName)
	v.SetDefault("context.for_lineage", d.Context.ForLineage)
	v.SetDefault("context.for_duplicate_processing", d.Context.ForDuplicateProcessing)
	v.SetDefault("context.sequencing_order", d.Context.SequencingOrder)
	v.SetDefault("context.sequencing_property", d.Context.SequencingProperty)
	v.SetDefault("context.delete_method", d.Context.DeleteMethod)
	v.SetDefault("context.page_size", d.Context.PageSize)

	v.SetDefault("remote.base_url", d.Remote.BaseURL)
	v.SetDefault("remote.server_name", d.Remote.ServerName)
	v.SetDefault("remote.token", d.Remote.Token)
	v.SetDefault("remote.oauth2.client_id", d.Remote.OAuth2.ClientID)
	v.SetDefault("remote.oauth2.client_secret", d.Remote.OAuth2.ClientSecret)
	v.SetDefault("remote.oauth2.token_url", d.Remote.OAuth2.TokenURL)
	v.SetDefault("remote.oauth2.scopes", d.Remote.OAuth2.Scopes)
	v.SetDefault("remote.rate_limit_per_sec", d.Remote.RateLimitPerSec)
	v.SetDefault("remote.rate_burst", d.Remote.RateBurst)
	v.SetDefault("remote.retry_attempts", d.Remote.RetryAttempts)
	v.SetDefault("remote.retry_delay", d.Remote.RetryDelay)
	v.SetDefault("remote.max_retry_delay", d.Remote.MaxRetryDelay)
	v.SetDefault("remote.timeout", d.Remote.Timeout)
	v.SetDefault("remote.circuit_breaker", d.Remote.CircuitBreaker)
	v.SetDefault("remote.failure_threshold", d.Remote.FailureThreshold)
	v.SetDefault("remote.success_threshold", d.Remote.SuccessThreshold)
	v.SetDefault("remote.breaker_timeout", d.Remote.BreakerTimeout)
	v.SetDefault("remote.enable_http2", d.Remote.EnableHTTP2)

	v.SetDefault("events.enabled", d.Events.Enabled)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
	v.SetDefault("events.client_id", d.Events.ClientID)
	v.SetDefault("events.acks", d.Events.Acks)
	v.SetDefault("events.compression", d.Events.Compression)

	v.SetDefault("observability.log_level", d.Observability.LogLevel)
	v.SetDefault("observability.log_encoding", d.Observability.LogEncoding)
	v.SetDefault("observability.development", d.Observability.Development)
	v.SetDefault("observability.enable_tracing", d.Observability.EnableTracing)
	v.SetDefault("observability.enable_metrics", d.Observability.EnableMetrics)
	v.SetDefault("observability.tracing_sample_rate", d.Observability.TracingSampleRate)
}
