package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sentinel-red/sentinel-backend/internal/apperr"
	"github.com/sentinel-red/sentinel-backend/internal/logging"
)

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError aborts the request with {"ok": false, "error": msg}. Errors
// without a kind are logged and reported generically.
func WriteError(c *gin.Context, operation string, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logging.NewLogger(c.Request.Context()).Error(operation, err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": msg})
}
