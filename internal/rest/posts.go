package rest

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sun-exploit/cblog/api"
	"github.com/sun-exploit/cblog/blog/application"
)

var archivePattern = regexp.MustCompile(`^\d{4}(/\d{1,2}(/\d{1,2})?)?$`)

// GetPosts lists one page of posts. The tag and archive parameters select
// the same views as /tag/<name> and /<yyyy>[/<mm>[/<dd>]].
func (a *Api) GetPosts(c *gin.Context) {
	path := "/"
	if tag := c.Query("tag"); tag != "" {
		path = "/tag/" + tag
	} else if archive := strings.Trim(c.Query("archive"), "/"); archive != "" {
		if !archivePattern.MatchString(archive) {
			c.JSON(http.StatusBadRequest, api.Error{Error: "archive must be yyyy[/mm[/dd]]"})
			return
		}
		path = "/" + archive
	}

	res := a.engine.Handle(c.Request.Context(), application.RequestInput{
		Path: path,
		Page: c.Query("page"),
	})
	if fail(c, res) {
		return
	}

	list := api.PostList{
		Posts: make([]api.Post, 0, len(res.Posts)),
		Page:  res.Page,
		Pages: res.Pages,
		Total: res.Total,
	}
	for _, p := range res.Posts {
		list.Posts = append(list.Posts, toPost(p))
	}
	c.JSON(http.StatusOK, list)
}

func (a *Api) GetPost(c *gin.Context) {
	res := a.engine.Handle(c.Request.Context(), application.RequestInput{
		Path: "/post/" + c.Param("slug"),
	})
	if fail(c, res) {
		return
	}

	post := toPost(res.Posts[0])
	post.Comments = toComments(res.Comments)
	c.JSON(http.StatusOK, post)
}

func (a *Api) GetTags(c *gin.Context) {
	tags, err := a.engine.Tags(c.Request.Context())
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Failed to aggregate tags")
		c.JSON(http.StatusNotFound, api.Error{Error: "Unable to read the posts database"})
		return
	}

	out := make([]api.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, api.Tag{Name: t.Name, Count: t.Count})
	}
	c.JSON(http.StatusOK, out)
}
