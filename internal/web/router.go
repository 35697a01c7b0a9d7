package web

import (
	"github.com/gin-gonic/gin"

	"github.com/sun-exploit/cblog/blog/application"
	"github.com/sun-exploit/cblog/internal/middleware"
	"github.com/sun-exploit/cblog/internal/rest"
	"github.com/sun-exploit/cblog/internal/web/theme"
)

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Engine *application.Engine
	Theme  *theme.Theme
	Site   Site
	// Limiter is optional.
	Limiter *middleware.RateLimiter
	// ImagesDir, when set, is served under /images, where rendered posts
	// point their relative image links.
	ImagesDir string
}

// NewRouter wires the JSON API and the blog pages. Every path the API does
// not claim is handed to the blog.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	if d.Limiter != nil {
		router.Use(d.Limiter.Middleware())
	}

	rest.NewApi(router, d.Engine)
	if d.ImagesDir != "" {
		router.Static("/images", d.ImagesDir)
	}

	blog := NewBlogHandler(d.Engine, d.Theme, d.Site)
	router.NoRoute(blog.Serve)
	return router
}
