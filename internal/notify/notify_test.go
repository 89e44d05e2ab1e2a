package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roksva123/go-matrix-tasks/internal/store"
)

type recordingPublisher struct {
	topics   []store.Topic
	payloads []any
}

func (r *recordingPublisher) Publish(topic store.Topic, payload any) {
	r.topics = append(r.topics, topic)
	r.payloads = append(r.payloads, payload)
}

func TestToastsExpire(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	pub := &recordingPublisher{}
	h := NewHub(3*time.Second, pub)
	h.Now = func() time.Time { return now }

	first := h.Error("Sync failed")
	now = now.Add(2 * time.Second)
	second := h.Success("Synced 3 tasks")

	active := h.Active()
	require.Len(t, active, 2)
	assert.Equal(t, first.ID, active[0].ID)

	now = now.Add(2 * time.Second)
	active = h.Active()
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	assert.Equal(t, []store.Topic{store.TopicToast, store.TopicToast}, pub.topics)
	assert.Equal(t, first, pub.payloads[0])
}

func TestDismiss(t *testing.T) {
	h := NewHub(time.Minute, nil)
	a := h.Push(LevelInfo, "a")
	b := h.Push(LevelInfo, "b")

	assert.True(t, h.Dismiss(a.ID))
	assert.False(t, h.Dismiss(a.ID))

	active := h.Active()
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)
}
