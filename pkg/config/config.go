package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	Environment               string        `koanf:"environment"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"-"`
	MediaDir                  string        `koanf:"media_dir"`
	JWTSecret                 string        `koanf:"jwt_secret"`
	FrontendURL               string        `koanf:"frontend_url"`
}

const (
	configFileENV = "CONFIG_FILE"
	envPrefix     = "BOOKBEAR_"
)

// New loads the configuration: built-in defaults, then an optional YAML file
// (CONFIG_FILE), then BOOKBEAR_* environment variables.
func New() (*Config, error) {
	cfg := &Config{
		Environment:               "development",
		ServerHost:                "127.0.0.1",
		ServerPort:                8000,
		DatabaseFilePath:          "./tmp/data.sqlite",
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		MediaDir:                  "./tmp/media",
		JWTSecret:                 "",
		FrontendURL:               "http://localhost:5173",
	}

	k := koanf.New(".")

	if path := os.Getenv(configFileENV); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file: %s", path)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	switch cfg.Environment {
	case "development":
		cfg.DatabaseDebug = true
	case "test":
		cfg.DatabaseFilePath = ":memory:"
		cfg.MediaDir = os.TempDir()
	case "production":
	default:
		return nil, errors.Errorf("unknown environment: %s", cfg.Environment)
	}

	if cfg.Environment == "production" && cfg.JWTSecret == "" {
		return nil, errors.New("jwt_secret is required in production")
	}
	if cfg.JWTSecret == "" {
		// Development fallback so that a fresh checkout boots.
		cfg.JWTSecret = "bookbear-development-secret"
	}

	return cfg, nil
}
