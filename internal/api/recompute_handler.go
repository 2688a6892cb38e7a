package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RecomputeHandler exposes the coordinator
type RecomputeHandler struct {
	recomputer Recomputer
}

// NewRecomputeHandler creates a recompute handler
func NewRecomputeHandler(recomputer Recomputer) *RecomputeHandler {
	return &RecomputeHandler{recomputer: recomputer}
}

// HandleTrigger requests a recompute without waiting for it
func (h *RecomputeHandler) HandleTrigger() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.recomputer.Trigger()
		c.JSON(http.StatusAccepted, gin.H{
			"status": "accepted",
			"state":  h.recomputer.Status().State,
		})
	}
}

// HandleStatus reports the coordinator state and the last pass
func (h *RecomputeHandler) HandleStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.recomputer.Status())
	}
}
