package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global zerolog logger.
func (c *Config) SetupLogging() {
	c.setupLogging(os.Stderr)
}

func (c *Config) setupLogging(w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	if c.ConsoleLogs() {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	// validate already rejected bad levels
	lvl, _ := c.Level()
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
