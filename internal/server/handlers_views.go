package server

import (
	"scribble/internal/web"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleHome(c *gin.Context) {
	templ.Handler(web.Home(s.homeSettings(), s.homeSummaries())).ServeHTTP(c.Writer, c.Request)
}
