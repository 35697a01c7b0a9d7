// Package web serves the blog pages and feeds over HTTP.
package web

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sun-exploit/cblog/blog/application"
	"github.com/sun-exploit/cblog/blog/domain"
	"github.com/sun-exploit/cblog/blog/render"
	"github.com/sun-exploit/cblog/internal/web/theme"
)

// Site holds the values shared by every rendered page.
type Site struct {
	Title      string
	URL        string
	Version    string
	DateFormat string
}

// BlogHandler renders engine results through the theme.
type BlogHandler struct {
	engine *application.Engine
	theme  *theme.Theme
	site   Site
	now    func() time.Time
}

func NewBlogHandler(engine *application.Engine, th *theme.Theme, site Site) *BlogHandler {
	return &BlogHandler{
		engine: engine,
		theme:  th,
		site:   site,
		now:    time.Now,
	}
}

// Serve answers GET and HEAD for any blog path.
func (h *BlogHandler) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Header("Allow", "GET, HEAD")
		c.AbortWithStatus(http.StatusMethodNotAllowed)
		return
	}

	res := h.engine.Handle(c.Request.Context(), application.RequestInput{
		Path: c.Request.URL.Path,
		Feed: c.Query("feed"),
		Page: c.Query("page"),
	})

	// Errors are always shown as a page, never as a feed.
	if res.ErrorMessage != "" {
		res.Request.Feed = domain.FeedHTML
	}

	tree := render.Project(res, render.Options{
		Title:      h.site.Title,
		URL:        h.site.URL,
		Version:    h.site.Version,
		DateFormat: h.site.DateFormat,
		Location:   h.engine.Location(),
		Now:        h.now(),
	})

	var buf bytes.Buffer
	if err := h.theme.Render(&buf, res.Request.Feed, tree.Map()); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", res.Request.Path).Msg("Failed to render page")
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	c.Data(statusOf(res), theme.ContentType(res.Request.Feed), buf.Bytes())
}

// statusOf reports every error outcome, unreadable repositories included,
// as not found. The themed page is rendered either way.
func statusOf(res application.Result) int {
	if res.NotFound || res.Degraded {
		return http.StatusNotFound
	}
	return http.StatusOK
}
