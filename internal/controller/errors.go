package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-bills/internal/validation"
	"todo-bills/pkg/logger"
)

func badRequest(c *gin.Context, details validation.Errors) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

func conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, gin.H{"error": msg})
}

// internalError logs err and writes 500 with its innermost message as details.
func internalError(c *gin.Context, msg string, err error) {
	logger.Error(c.Request.Context(), msg, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "details": rootMessage(err)})
}

func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
