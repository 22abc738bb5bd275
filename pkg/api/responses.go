package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// badRequest rejects a request at ingress with HTTP 400.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}

// pipelineError reports a whole-request failure with HTTP 500. Partial
// analyzer failures never reach here; they degrade the response instead.
func pipelineError(c *gin.Context, op string, err error) {
	slog.Error("Request failed", "op", op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   op + " failed",
		"details": err.Error(),
	})
}
