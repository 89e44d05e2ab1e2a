// Package notify keeps the transient toast notifications shown to users.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roksva123/go-matrix-tasks/internal/store"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Toast struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Publisher receives every pushed toast. *store.Store satisfies it.
type Publisher interface {
	Publish(topic store.Topic, payload any)
}

type Hub struct {
	TTL time.Duration
	Now func() time.Time

	mu     sync.Mutex
	toasts []Toast
	pub    Publisher
}

func NewHub(ttl time.Duration, pub Publisher) *Hub {
	if ttl <= 0 {
		ttl = 4 * time.Second
	}
	return &Hub{TTL: ttl, Now: time.Now, pub: pub}
}

func (h *Hub) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *Hub) Push(level Level, message string) Toast {
	now := h.now()
	t := Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(h.TTL),
	}
	h.mu.Lock()
	h.toasts = append(pruned(h.toasts, now), t)
	h.mu.Unlock()

	if h.pub != nil {
		h.pub.Publish(store.TopicToast, t)
	}
	return t
}

func (h *Hub) Success(message string) Toast { return h.Push(LevelSuccess, message) }
func (h *Hub) Error(message string) Toast   { return h.Push(LevelError, message) }

// Active returns the toasts that have not expired, oldest first.
func (h *Hub) Active() []Toast {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.toasts = pruned(h.toasts, h.now())
	return append([]Toast(nil), h.toasts...)
}

// Dismiss removes a toast early. It reports whether the toast was active.
func (h *Hub) Dismiss(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, t := range h.toasts {
		if t.ID == id {
			h.toasts = append(h.toasts[:i:i], h.toasts[i+1:]...)
			return true
		}
	}
	return false
}

func pruned(toasts []Toast, now time.Time) []Toast {
	out := toasts[:0:0]
	for _, t := range toasts {
		if now.Before(t.ExpiresAt) {
			out = append(out, t)
		}
	}
	return out
}
