package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	shellPath string
}

// NewHealthHandler reports healthy only while the HTML shell at shellPath exists
func NewHealthHandler(shellPath string) *HealthHandler {
	return &HealthHandler{
		shellPath: shellPath,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	if info, err := os.Stat(h.shellPath); err != nil || info.IsDir() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "build output not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
