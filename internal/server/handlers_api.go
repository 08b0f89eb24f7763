package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type sessionURI struct {
	ID string `uri:"id" binding:"required,max=64,sessionid"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.engine.SessionCount(),
	})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Settings())
}

func (s *Server) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Summaries())
}

func (s *Server) handleGetSession(c *gin.Context) {
	var req sessionURI
	if !bindURI(c, &req) {
		return
	}
	snapshot, ok := s.engine.Snapshot(req.ID)
	if !ok {
		writeError(c, http.StatusNotFound, "session not found")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
