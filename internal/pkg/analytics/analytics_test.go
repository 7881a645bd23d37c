package analytics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSinkCapture(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := &HTTPSink{Endpoint: server.URL, APIKey: "phc_test", HTTPClient: server.Client()}
	err := sink.Capture(context.Background(), Event{
		Name:       "subscription.started",
		UserID:     "user-1",
		Properties: map[string]any{"provider": "polar"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/capture/" {
		t.Fatalf("unexpected capture path %q", gotPath)
	}
	if gotBody["api_key"] != "phc_test" {
		t.Fatalf("expected api key in body, got %v", gotBody["api_key"])
	}
	if gotBody["event"] != "subscription.started" || gotBody["distinct_id"] != "user-1" {
		t.Fatalf("unexpected event body %v", gotBody)
	}
}

func TestHTTPSinkCapture_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sink := &HTTPSink{Endpoint: server.URL, APIKey: "phc_test", HTTPClient: server.Client()}
	err := sink.Capture(context.Background(), Event{Name: "subscription.renewed", UserID: "user-1"})
	if err == nil {
		t.Fatalf("expected non-2xx response to error")
	}
}

func TestHTTPSinkCapture_RequiresNameAndUser(t *testing.T) {
	sink := &HTTPSink{Endpoint: "http://unused", APIKey: "k", HTTPClient: http.DefaultClient}
	if err := sink.Capture(context.Background(), Event{UserID: "u"}); err == nil {
		t.Fatalf("expected missing name to error")
	}
	if err := sink.Capture(context.Background(), Event{Name: "n"}); err == nil {
		t.Fatalf("expected missing user id to error")
	}
}

func TestNopSink(t *testing.T) {
	if err := (NopSink{}).Capture(context.Background(), Event{}); err != nil {
		t.Fatalf("nop sink must never error, got %v", err)
	}
}
