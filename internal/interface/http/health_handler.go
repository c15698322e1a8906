package httpapi

import (
	"net/http"
	"time"

	"kospi-treasure/internal/infrastructure/db"

	"github.com/gin-gonic/gin"
)

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "pong",
		"timestamp": time.Now().Unix(),
		"status":    "alive",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"success": true,
		"health":  "ok",
		"db":      db.Status(c.Request.Context(), s.db),
		"time":    time.Now().Format(time.RFC3339),
	}
	if s.db == nil {
		companies, industries := s.store.Stats()
		body["companies"] = companies
		body["industries"] = industries
	}
	c.JSON(http.StatusOK, body)
}
