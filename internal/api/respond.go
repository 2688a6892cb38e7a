package api

import (
	"net/http"

	"hypoavg/internal"
	"hypoavg/internal/errors"

	"github.com/gin-gonic/gin"
)

// statusFor maps an error code onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.CodeInvalidInput), errors.Is(err, errors.CodeValidationError):
		return http.StatusBadRequest
	case errors.Is(err, errors.CodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.CodeStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *internal.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal error"
	}
	c.JSON(status, gin.H{"status": "error", "message": message})
}
