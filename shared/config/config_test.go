package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "cdb", cfg.Backend)
	assert.Equal(t, "blog.cdb", cfg.DBPath)
	assert.Equal(t, 10, cfg.PostsPerPage)
	assert.Equal(t, "%d/%m/%Y", cfg.DateFormat)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.ConsoleLogs())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse(map[string]string{
		"CBLOG_BACKEND":        "postgres",
		"CBLOG_DATABASE_URL":   "postgres://blog@localhost/blog",
		"CBLOG_POSTS_PER_PAGE": "5",
		"CBLOG_TIMEZONE":       "UTC",
		"CBLOG_LOG_LEVEL":      "DEBUG",
		"CBLOG_LOG_FORMAT":     "console",
		"BACKEND":              "sqlite",
	})
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Backend, "unprefixed variables are ignored")
	assert.Equal(t, 5, cfg.PostsPerPage)
	assert.True(t, cfg.ConsoleLogs())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "unknown backend", vars: map[string]string{"CBLOG_BACKEND": "redis"}},
		{name: "postgres without url", vars: map[string]string{"CBLOG_BACKEND": "postgres"}},
		{name: "zero page size", vars: map[string]string{"CBLOG_POSTS_PER_PAGE": "0"}},
		{name: "page size not a number", vars: map[string]string{"CBLOG_POSTS_PER_PAGE": "ten"}},
		{name: "bad timezone", vars: map[string]string{"CBLOG_TIMEZONE": "Mars/Olympus"}},
		{name: "bad log level", vars: map[string]string{"CBLOG_LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.vars)
			assert.Error(t, err)
		})
	}
}

func TestSetupLogging(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	defer func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	}()

	cfg, err := Parse(map[string]string{"CBLOG_LOG_LEVEL": "warn"})
	require.NoError(t, err)

	var buf bytes.Buffer
	cfg.setupLogging(&buf)

	log.Info().Msg("hidden")
	log.Warn().Str("slug", "hello").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"slug":"hello"`)
	assert.Contains(t, out, `"level":"warn"`)
}
