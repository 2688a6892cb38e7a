package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"hypoavg/internal"
	"hypoavg/internal/aggregate"

	"github.com/gin-gonic/gin"
)

// PassEvent is streamed to subscribers whenever an aggregation pass finishes
type PassEvent struct {
	EventType string           `json:"event_type"`
	Status    aggregate.Status `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
}

// EventHub fans pass events out to Server-Sent Events clients
type EventHub struct {
	mu        sync.RWMutex
	clients   map[chan PassEvent]struct{}
	keepAlive time.Duration
	logger    *internal.Logger
}

// NewEventHub creates an empty hub
func NewEventHub(logger *internal.Logger) *EventHub {
	return &EventHub{
		clients:   make(map[chan PassEvent]struct{}),
		keepAlive: 30 * time.Second,
		logger:    logger.WithComponent("SSE"),
	}
}

// PassFinished implements aggregate.PassObserver
func (h *EventHub) PassFinished(status aggregate.Status) {
	eventType := "pass_completed"
	if status.LastError != "" {
		eventType = "pass_failed"
	}
	h.Broadcast(PassEvent{EventType: eventType, Status: status, Timestamp: time.Now().UTC()})
}

// Broadcast sends event to every client. Slow clients miss events instead of blocking the pass.
func (h *EventHub) Broadcast(event PassEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- event:
		default:
			h.logger.Warn("client channel full, dropping %s", event.EventType)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *EventHub) subscribe() chan PassEvent {
	ch := make(chan PassEvent, 10)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("client registered (total clients: %d)", h.ClientCount())
	return ch
}

func (h *EventHub) unsubscribe(ch chan PassEvent) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// HandleSSE streams pass events until the client disconnects
func (h *EventHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	ch := h.subscribe()
	defer h.unsubscribe(ch)
	c.Writer.Flush()

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-ch:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to marshal event: %v", err)
				return true
			}
			c.SSEvent("pass", string(data))
			return true

		case <-ticker.C:
			c.SSEvent("ping", `{"status":"alive"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}
