package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sun-exploit/cblog/blog/application"
)

func (a *Api) GetComments(c *gin.Context) {
	res := a.engine.Handle(c.Request.Context(), application.RequestInput{
		Path: "/post/" + c.Param("slug"),
	})
	if fail(c, res) {
		return
	}

	c.JSON(http.StatusOK, toComments(res.Comments))
}
