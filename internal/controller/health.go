package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todo-bills/pkg/logger"
)

// Health returns 200 if the process is alive.
func (h *Handlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 when every configured dependency answers.
func (h *Handlers) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	for _, rc := range h.ReadyChecks {
		if err := rc.Check(ctx); err != nil {
			logger.Warn(ctx, "Readiness check failed", "dependency", rc.Name, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": rc.Name + " unavailable"})
			return
		}
	}
	c.String(http.StatusOK, "OK")
}
