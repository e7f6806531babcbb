package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/typemnm/Mornoningo/internal/service"
)

type eventSource interface {
	Subscribe() (<-chan service.Event, func())
}

// EventsHandler streams state-change events as server-sent events.
type EventsHandler struct {
	source    eventSource
	keepAlive time.Duration
}

// NewEventsHandler builds the SSE handler. keepAlive <= 0 defaults to 15s.
func NewEventsHandler(source eventSource, keepAlive time.Duration) *EventsHandler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return &EventsHandler{source: source, keepAlive: keepAlive}
}

// Stream godoc
// @Summary Subscribe to study events
// @Tags Events
// @Produce text/event-stream
// @Success 200
// @Router /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	events, cancel := h.source.Subscribe()
	defer cancel()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-store")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case evt, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(evt.Type), evt)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
