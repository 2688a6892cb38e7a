package api

import (
	"io"
	"net/http"

	"hypoavg/internal"
	"hypoavg/internal/errors"
	"hypoavg/internal/observation"

	"github.com/gin-gonic/gin"
)

const maxResultBytes = 1 << 20

// ResultsHandler accepts and serves raw survey results
type ResultsHandler struct {
	store   *observation.Store
	trigger Recomputer
	logger  *internal.Logger
}

// NewResultsHandler creates a results handler
func NewResultsHandler(store *observation.Store, trigger Recomputer, logger *internal.Logger) *ResultsHandler {
	return &ResultsHandler{store: store, trigger: trigger, logger: logger}
}

// HandleSubmit stores one observation and requests a recompute
func (h *ResultsHandler) HandleSubmit() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxResultBytes+1))
		if err != nil {
			respondError(c, h.logger, errors.InvalidInput("failed to read request body"))
			return
		}
		if len(body) > maxResultBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"status": "error", "message": "request body too large"})
			return
		}

		stored, err := h.store.Save(body)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		h.trigger.Trigger()

		c.JSON(http.StatusCreated, gin.H{
			"status": "ok",
			"id":     stored.ID,
			"href":   "/api/results/" + stored.ID,
		})
	}
}

// HandleGet returns a stored observation exactly as it was submitted
func (h *ResultsHandler) HandleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := h.store.FindByID(c.Param("id"))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
	}
}
