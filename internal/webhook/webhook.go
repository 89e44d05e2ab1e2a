// Package webhook talks to the external automation endpoint: one JSON POST
// per request, full response body returned as text.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/roksva123/go-matrix-tasks/internal/timefmt"
)

var (
	ErrInvalidURL = errors.New("webhook url is missing or not http(s)")
	ErrStatus     = errors.New("webhook returned non-2xx status")
)

const bodyExcerpt = 200

// Request is the body of every webhook call.
type Request struct {
	Action    string `json:"action"`
	User      string `json:"user,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

func NewRequest(action, user string, data any) Request {
	return Request{Action: action, User: user, Data: data, Timestamp: timefmt.ISO(time.Now())}
}

// StatusError carries the HTTP status and the start of the body of a
// non-2xx response. errors.Is(err, ErrStatus) holds for it.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return "webhook status " + http.StatusText(e.Code) + ": " + e.Body
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

type Client struct {
	HTTP   *http.Client
	Logger *zap.Logger
}

// NewClient builds a client. A zero timeout waits for the response
// indefinitely; callers bound the wait through the context.
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:   &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

// ValidURL trims s and checks it names an http or https endpoint.
func ValidURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(strings.ToLower(s), "http") {
		return "", false
	}
	return s, true
}

// Post sends req and returns the raw response text.
func (c *Client) Post(ctx context.Context, url string, req Request) (string, error) {
	target, ok := ValidURL(url)
	if !ok {
		return "", ErrInvalidURL
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "encode webhook request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "build webhook request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", errors.Wrapf(err, "post %s", req.Action)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errors.Wrapf(err, "read %s response", req.Action)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		excerpt := string(body)
		if len(excerpt) > bodyExcerpt {
			excerpt = excerpt[:bodyExcerpt]
		}
		return "", errors.WithStack(&StatusError{Code: res.StatusCode, Body: excerpt})
	}
	return string(body), nil
}

// Notify posts req in the background. Failures are only logged; nothing
// waits for an acknowledgement.
func (c *Client) Notify(url string, req Request) {
	if _, ok := ValidURL(url); !ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := c.Post(ctx, url, req); err != nil {
			c.Logger.Warn("webhook notification failed",
				zap.String("action", req.Action),
				zap.Error(errors.Cause(err)))
		}
	}()
}
