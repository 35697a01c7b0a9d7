// Package config loads runtime settings from the environment.
//
// Every variable carries the CBLOG_ prefix. A .env file in the working
// directory is read first when present; real environment variables win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const envPrefix = "CBLOG_"

// Config holds the settings shared by the server and the maintenance tool.
type Config struct {
	// Storage
	Backend     string `env:"BACKEND"      envDefault:"cdb"`
	DBPath      string `env:"DB_PATH"      envDefault:"blog.cdb"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Presentation
	PostsPerPage int    `env:"POSTS_PER_PAGE" envDefault:"10"`
	DateFormat   string `env:"DATE_FORMAT"    envDefault:"%d/%m/%Y"`
	Timezone     string `env:"TIMEZONE"       envDefault:"Local"`
	ThemeDir     string `env:"THEME_DIR"`
	ImagesDir    string `env:"IMAGES_DIR"`
	Title        string `env:"TITLE"          envDefault:"cblog"`
	URL          string `env:"URL"            envDefault:"http://localhost:8080"`

	// Server
	ListenAddr      string        `env:"LISTEN_ADDR"      envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS"   envDefault:"20"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads the optional .env file and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return Parse(nil)
}

// Parse builds a Config from environment, or from vars when it is not nil.
func Parse(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	opts := env.Options{Prefix: envPrefix}
	if vars != nil {
		opts.Environment = vars
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case "cdb", "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("%sDB_PATH is required for the %s backend", envPrefix, c.Backend)
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("%sDATABASE_URL is required for the postgres backend", envPrefix)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.PostsPerPage < 1 {
		return fmt.Errorf("%sPOSTS_PER_PAGE must be positive, got %d", envPrefix, c.PostsPerPage)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Level resolves LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

func (c *Config) ConsoleLogs() bool {
	return strings.EqualFold(c.LogFormat, "console")
}
