// Package config loads server configuration from an optional YAML file with
// environment-variable overrides. A .env file, if present, is read into the
// environment first, so local development needs no exported variables.
//
// Precedence (lowest to highest): built-in defaults → YAML file → environment.
// Environment keys map to config paths by lowercasing and replacing "_" with
// ".", e.g. SERVER_PORT → server.port, SESSION_TTL → session.ttl.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	Session  SessionConfig  `koanf:"session"`
}

type ServerConfig struct {
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

type AuthConfig struct {
	// TokenSecret signs the credential string returned by /register.
	// Nothing in this API validates that token; requests authenticate
	// through the session cookie.
	TokenSecret string `koanf:"token_secret"`
	BcryptCost  int    `koanf:"bcrypt_cost"`
}

type SessionConfig struct {
	CookieName string        `koanf:"cookie_name"`
	TTL        time.Duration `koanf:"ttl"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{Path: "data/blog.db"},
		Log:      LogConfig{Level: "info"},
		Auth: AuthConfig{
			TokenSecret: "",
			BcryptCost:  12,
		},
		Session: SessionConfig{
			CookieName: "session_id",
			TTL:        24 * time.Hour,
		},
	}
}

// Load reads configuration. configPath may be empty, in which case only the
// defaults, .env, and the environment apply.
func Load(configPath string) (*Config, error) {
	// Ignore a missing .env — it is a development convenience, not required.
	_ = godotenv.Load()

	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: session ttl must be positive")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("config: session cookie name must not be empty")
	}
	return nil
}
