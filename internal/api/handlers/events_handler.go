package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-matrix-tasks/internal/notify"
	"github.com/roksva123/go-matrix-tasks/internal/store"
)

const keepAliveInterval = 25 * time.Second

type EventsHandler struct {
	Store  *store.Store
	Toasts *notify.Hub
}

func NewEventsHandler(st *store.Store, toasts *notify.Hub) *EventsHandler {
	return &EventsHandler{Store: st, Toasts: toasts}
}

// GET /api/v1/notifications
func (h *EventsHandler) Notifications(c *gin.Context) {
	respond(c, http.StatusOK, "OK", h.Toasts.Active())
}

// DELETE /api/v1/notifications/:id
func (h *EventsHandler) Dismiss(c *gin.Context) {
	if !h.Toasts.Dismiss(c.Param("id")) {
		respond(c, http.StatusNotFound, "Notification not found", nil)
		return
	}
	respond(c, http.StatusOK, "Notification dismissed", nil)
}

// Stream forwards store events as Server-Sent Events until the client goes
// away. ?topics=tasks,toast narrows the stream; events are re-read hints, the
// client fetches the collection named by the event.
// GET /api/v1/events
func (h *EventsHandler) Stream(c *gin.Context) {
	var topics []store.Topic
	for _, t := range strings.Split(c.Query("topics"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, store.Topic(t))
		}
	}
	events, cancel := h.Store.Subscribe(topics...)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	done := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Topic), ev)
			return true
		}
	})
}
