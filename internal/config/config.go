// Package config loads the skill server configuration from a YAML (or JSON) file
// and environment variables prefixed with CADENCE_.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CADENCE_STORE_TYPE.
const EnvPrefix = "CADENCE_"

// Store types.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server" envPrefix:"SERVER_"`
	Log      LogConfig      `yaml:"log" json:"log" envPrefix:"LOG_"`
	Store    StoreConfig    `yaml:"store" json:"store" envPrefix:"STORE_"`
	Resolver ResolverConfig `yaml:"resolver" json:"resolver" envPrefix:"RESOLVER_"`
	Security SecurityConfig `yaml:"security" json:"security" envPrefix:"SECURITY_"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr" env:"ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level" env:"LEVEL"`
	Format string `yaml:"format" json:"format" env:"FORMAT"` // text | json
}

type StoreConfig struct {
	Type       string      `yaml:"type" json:"type" env:"TYPE"`
	Dir        string      `yaml:"dir" json:"dir" env:"DIR"`
	SQLitePath string      `yaml:"sqlite_path" json:"sqlite_path" env:"SQLITE_PATH"`
	Redis      RedisConfig `yaml:"redis" json:"redis" envPrefix:"REDIS_"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr" env:"ADDR"`
	Password string        `yaml:"password" json:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" json:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" json:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" json:"ttl" env:"TTL"`
}

type ResolverConfig struct {
	// MinTruncatedLength stops "_" truncation below this many runes. 0 disables the limit.
	MinTruncatedLength int `yaml:"min_truncated_length" json:"min_truncated_length" env:"MIN_TRUNCATED_LENGTH"`
}

type SecurityConfig struct {
	// EncryptionKey is a base64-encoded 32-byte AES key. Empty disables encryption at rest.
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key" env:"ENCRYPTION_KEY"`
	FallbackKeys  []string `yaml:"fallback_keys" json:"fallback_keys" env:"FALLBACK_KEYS"`
	// PIIKeys are regular expressions; matching attribute keys are masked before storage.
	PIIKeys []string `yaml:"pii_keys" json:"pii_keys" env:"PII_KEYS"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Type:       StoreMemory,
			Dir:        filepath.Join(".cadence", "attributes"),
			SQLitePath: filepath.Join(".cadence", "attributes.db"),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "cadence:attributes:",
			},
		},
	}
}

// Load reads path (a missing file leaves the defaults in place), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil environ reads the process environment.
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFile decodes path into c. JSON files go through the YAML decoder too,
// so durations such as "5s" parse in both formats.
func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Type {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.type %q is not one of memory, file, redis, sqlite", c.Store.Type))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	if c.Resolver.MinTruncatedLength < 0 {
		errs = append(errs, errors.New("resolver.min_truncated_length cannot be negative"))
	}
	if _, _, err := c.Security.Keys(); err != nil {
		errs = append(errs, err)
	}
	for i, p := range c.Security.PIIKeys {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("security.pii_keys[%d]: %w", i, err))
		}
	}
	if c.Security.EncryptionKey == "" && len(c.Security.FallbackKeys) > 0 {
		errs = append(errs, errors.New("security.fallback_keys requires security.encryption_key"))
	}

	return errors.Join(errs...)
}

// Keys decodes the active and fallback encryption keys. active is nil when encryption is off.
func (s SecurityConfig) Keys() (active []byte, fallbacks [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err = decodeKey("security.encryption_key", s.EncryptionKey)
	if err != nil {
		return nil, nil, err
	}
	for i, k := range s.FallbackKeys {
		fb, err := decodeKey(fmt.Sprintf("security.fallback_keys[%d]", i), k)
		if err != nil {
			return nil, nil, err
		}
		fallbacks = append(fallbacks, fb)
	}
	return active, fallbacks, nil
}

func decodeKey(field, value string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %w", field, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", field, len(key))
	}
	return key, nil
}
