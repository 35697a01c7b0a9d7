package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sun-exploit/cblog/blog/application"
	"github.com/sun-exploit/cblog/blog/domain"
	"github.com/sun-exploit/cblog/blog/persistence"
	"github.com/sun-exploit/cblog/internal/middleware"
	"github.com/sun-exploit/cblog/internal/web"
	"github.com/sun-exploit/cblog/internal/web/theme"
	"github.com/sun-exploit/cblog/shared/config"
)

const readHeaderTimeout = 10 * time.Second

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg.SetupLogging()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load timezone")
	}

	repoOpts := persistence.Options{
		Backend:     cfg.Backend,
		Path:        cfg.DBPath,
		DatabaseURL: cfg.DatabaseURL,
	}
	engine := application.NewEngine(func(ctx context.Context) (domain.PostRepository, error) {
		return persistence.Open(ctx, repoOpts)
	}, cfg.PostsPerPage, loc)

	// The engine degrades per request, so an unreachable store is not fatal.
	if repo, err := persistence.Open(context.Background(), repoOpts); err != nil {
		log.Warn().Err(err).Str("location", repoOpts.Location()).Msg("Repository is not available yet")
	} else {
		repo.Close()
	}

	th, err := theme.Load(cfg.ThemeDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ThemeDir).Msg("Failed to load theme")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := web.NewRouter(web.Deps{
		Engine: engine,
		Theme:  th,
		Site: web.Site{
			Title:      cfg.Title,
			URL:        cfg.URL,
			Version:    version,
			DateFormat: cfg.DateFormat,
		},
		Limiter:   limiter,
		ImagesDir: cfg.ImagesDir,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info().
			Str("addr", cfg.ListenAddr).
			Str("backend", cfg.Backend).
			Str("location", repoOpts.Location()).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}
