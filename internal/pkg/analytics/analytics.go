package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/launchstack/SubRelay/internal/pkg/env"
)

const defaultCaptureTimeout = 10 * time.Second

// Event is a fire-and-forget analytics event attributed to a user.
type Event struct {
	Name       string         `json:"event"`
	UserID     string         `json:"distinct_id"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Sink delivers analytics events to an external collector. Implementations
// must be safe for concurrent use.
type Sink interface {
	Capture(ctx context.Context, ev Event) error
}

// HTTPSink posts events to a capture endpoint (PostHog-compatible shape).
type HTTPSink struct {
	Endpoint string
	APIKey   string

	HTTPClient *http.Client
}

// NewHTTPSinkFromEnv builds a sink from ANALYTICS_* environment variables.
// Returns a NopSink when no endpoint or key is configured so callers never
// have to nil-check.
func NewHTTPSinkFromEnv() Sink {
	endpoint := strings.TrimRight(strings.TrimSpace(env.GetEnv("ANALYTICS_ENDPOINT", "")), "/")
	apiKey := strings.TrimSpace(env.GetEnv("ANALYTICS_API_KEY", ""))
	if endpoint == "" || apiKey == "" {
		return NopSink{}
	}

	return &HTTPSink{
		Endpoint: endpoint,
		APIKey:   apiKey,
		HTTPClient: &http.Client{
			Timeout: defaultCaptureTimeout,
		},
	}
}

func (s *HTTPSink) Capture(ctx context.Context, ev Event) error {
	if strings.TrimSpace(ev.Name) == "" {
		return errors.New("analytics event name is required")
	}
	if strings.TrimSpace(ev.UserID) == "" {
		return errors.New("analytics event requires a user id")
	}

	body := map[string]any{
		"api_key":     s.APIKey,
		"event":       ev.Name,
		"distinct_id": ev.UserID,
		"properties":  ev.Properties,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint+"/capture/", bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("analytics capture failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}

// NopSink drops every event. Used when analytics is not configured and in
// tests.
type NopSink struct{}

func (NopSink) Capture(ctx context.Context, ev Event) error { return nil }
