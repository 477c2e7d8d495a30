package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	platformstrings "impactledger/pkg/platform/strings"
)

// UnknownDelegatePolicy controls what an impact query returns for a delegate
// that was never registered.
type UnknownDelegatePolicy string

const (
	UnknownDelegateNotFound UnknownDelegatePolicy = "not_found"
	UnknownDelegateZero     UnknownDelegatePolicy = "zero"
)

// Config is the full process configuration.
type Config struct {
	Server   Server         `yaml:"server"`
	Registry Registry       `yaml:"registry"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	LogLevel string         `yaml:"log_level"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string `yaml:"addr"`
	JWTSigningKey string `yaml:"jwt_signing_key"`
	JWTIssuer     string `yaml:"jwt_issuer"`

	// Zero timeouts fall back to the httpserver defaults.
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Registry holds the ledger's authorization and read policies.
type Registry struct {
	// Administrator is the only account allowed to issue credentials.
	Administrator         string                `yaml:"administrator"`
	UnknownDelegatePolicy UnknownDelegatePolicy `yaml:"unknown_delegate_policy"`
}

// DatabaseConfig selects the Postgres store. An empty URL selects the in-memory store.
type DatabaseConfig struct {
	URL          string        `yaml:"url"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	ConnMaxLife  time.Duration `yaml:"conn_max_life"`
}

// RedisConfig configures the credential cache. An empty URL disables caching.
type RedisConfig struct {
	URL           string        `yaml:"url"`
	PoolSize      int           `yaml:"pool_size"`
	MinIdleConns  int           `yaml:"min_idle_conns"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	CredentialTTL time.Duration `yaml:"credential_ttl"`
}

// KafkaConfig configures audit publishing. No brokers keeps audit events in memory.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Default returns development defaults.
func Default() Config {
	return Config{
		Server: Server{
			Addr: ":8080",
			// Use a default for development - should be overridden in production
			JWTSigningKey: "dev-secret-key-change-in-production",
			JWTIssuer:     "impactledger",

			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Registry: Registry{
			UnknownDelegatePolicy: UnknownDelegateNotFound,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			ConnMaxLife:  30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:      10,
			MinIdleConns:  2,
			DialTimeout:   5 * time.Second,
			ReadTimeout:   3 * time.Second,
			WriteTimeout:  3 * time.Second,
			CredentialTTL: 10 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic: "impactledger.audit",
		},
		LogLevel: "info",
	}
}

// FromEnv builds the config from REGISTRY_CONFIG (optional YAML file) and
// environment overrides so main stays lean.
func FromEnv() (Config, error) {
	return Load(os.Getenv("REGISTRY_CONFIG"), os.LookupEnv)
}

// Load reads the YAML file at path (if non-empty), applies overrides from lookup
// and validates the result.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the registry cannot run with.
func (c Config) Validate() error {
	if c.Registry.Administrator == "" {
		return fmt.Errorf("registry administrator is required")
	}
	switch c.Registry.UnknownDelegatePolicy {
	case UnknownDelegateNotFound, UnknownDelegateZero:
	default:
		return fmt.Errorf("unknown_delegate_policy must be %q or %q, got %q",
			UnknownDelegateNotFound, UnknownDelegateZero, c.Registry.UnknownDelegatePolicy)
	}
	if c.Server.JWTSigningKey == "" {
		return fmt.Errorf("jwt signing key is required")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required when brokers are set")
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("REGISTRY_ADDR", &cfg.Server.Addr)
	str("JWT_SIGNING_KEY", &cfg.Server.JWTSigningKey)
	str("JWT_ISSUER", &cfg.Server.JWTIssuer)
	str("REGISTRY_ADMINISTRATOR", &cfg.Registry.Administrator)
	str("DATABASE_URL", &cfg.Database.URL)
	str("REDIS_URL", &cfg.Redis.URL)
	str("KAFKA_TOPIC", &cfg.Kafka.Topic)
	str("LOG_LEVEL", &cfg.LogLevel)

	if v, ok := lookup("UNKNOWN_DELEGATE_POLICY"); ok && v != "" {
		cfg.Registry.UnknownDelegatePolicy = UnknownDelegatePolicy(v)
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		cfg.Kafka.Brokers = platformstrings.SplitList(v, ",")
	}
	if v, ok := lookup("REDIS_POOL_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_POOL_SIZE: %w", err)
		}
		cfg.Redis.PoolSize = n
	}
	if v, ok := lookup("REGISTRY_SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REGISTRY_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}
	if v, ok := lookup("REDIS_CREDENTIAL_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REDIS_CREDENTIAL_TTL: %w", err)
		}
		cfg.Redis.CredentialTTL = d
	}
	return nil
}
