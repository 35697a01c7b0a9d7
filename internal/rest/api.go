// Package rest serves the blog as JSON.
package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sun-exploit/cblog/api"
	"github.com/sun-exploit/cblog/blog/application"
	"github.com/sun-exploit/cblog/blog/domain"
)

type Api struct {
	engine *application.Engine
}

func NewApi(router *gin.Engine, engine *application.Engine) *Api {
	a := &Api{engine: engine}

	postsV1 := router.Group("/api/posts/v1")
	{
		postsV1.GET("", a.GetPosts)
		postsV1.GET("/:slug", a.GetPost)
	}

	commentsV1 := router.Group("/api/comments/v1")
	{
		commentsV1.GET("/:slug", a.GetComments)
	}

	router.GET("/api/tags/v1", a.GetTags)
	return a
}

// fail answers 404 for any error outcome of res, and reports whether it did.
func fail(c *gin.Context, res application.Result) bool {
	if !res.NotFound && !res.Degraded {
		return false
	}
	c.JSON(http.StatusNotFound, api.Error{Error: res.ErrorMessage})
	return true
}

func toPost(p domain.PostSummary) api.Post {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return api.Post{
		Slug:         p.Slug,
		Title:        p.Title,
		CreatedAt:    formatTime(p.CTime),
		HTML:         p.HTML,
		Source:       p.Source,
		Tags:         tags,
		CommentCount: p.CommentCount,
	}
}

func toComments(comments []domain.Comment) []api.Comment {
	out := make([]api.Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, api.Comment{
			Author:    c.Author,
			Body:      c.Body,
			CreatedAt: formatTime(c.CTime),
		})
	}
	return out
}

func formatTime(ctime int64) string {
	return time.Unix(ctime, 0).UTC().Format(time.RFC3339)
}
