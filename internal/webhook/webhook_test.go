package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidURL(t *testing.T) {
	u, ok := ValidURL("  https://hooks.example.com/x ")
	assert.True(t, ok)
	assert.Equal(t, "https://hooks.example.com/x", u)

	_, ok = ValidURL("")
	assert.False(t, ok)
	_, ok = ValidURL("ftp://example.com")
	assert.False(t, ok)
}

func TestPostSendsJSON(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"status":"success","data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(0, zap.NewNop())
	text, err := c.Post(context.Background(), srv.URL, NewRequest("SYNC_TASKS", "jdoe", nil))
	require.NoError(t, err)
	assert.Equal(t, `{"status":"success","data":[]}`, text)
	assert.Equal(t, "SYNC_TASKS", got.Action)
	assert.Equal(t, "jdoe", got.User)
	assert.NotEmpty(t, got.Timestamp)
}

func TestPostNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer srv.Close()

	_, err := NewClient(0, nil).Post(context.Background(), srv.URL, NewRequest("SYNC_STAFF", "", nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Len(t, se.Body, bodyExcerpt)
}

func TestPostInvalidURLMakesNoRequest(t *testing.T) {
	_, err := NewClient(0, nil).Post(context.Background(), "not-a-url", Request{})
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestPostHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewClient(0, nil).Post(ctx, srv.URL, Request{Action: "SYNC_TASKS"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNotifyIsFireAndForget(t *testing.T) {
	hit := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		hit <- req.Action
	}))
	defer srv.Close()

	NewClient(0, nil).Notify(srv.URL, NewRequest("delete_task", "jdoe", map[string]string{"id": "1"}))

	select {
	case action := <-hit:
		assert.Equal(t, "delete_task", action)
	case <-time.After(2 * time.Second):
		t.Fatal("notification never arrived")
	}
}
