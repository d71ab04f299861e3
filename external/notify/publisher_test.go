package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSend_PostsMessageToChannel(t *testing.T) {
	t.Parallel()

	var gotPath atomic.Value
	var gotBody atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		gotBody.Store(string(raw))
	}))
	t.Cleanup(server.Close)

	publisher := NewPublisher(PublisherConfig{BaseURL: server.URL, Channel: "abc123"}, nil)
	if err := publisher.Send(context.Background(), "stats inserted for Jun 15 2024"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if path := gotPath.Load(); path != "/abc123" {
		t.Fatalf("expected POST to /abc123, got=%v", path)
	}
	if body := gotBody.Load(); body != "stats inserted for Jun 15 2024" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestSend_NoChannelIsNoop(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(server.Close)

	publisher := NewPublisher(PublisherConfig{BaseURL: server.URL}, nil)
	if publisher.Enabled() {
		t.Fatalf("publisher without channel must be disabled")
	}
	if err := publisher.Send(context.Background(), "anything"); err != nil {
		t.Fatalf("disabled publisher must silently succeed: %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("disabled publisher must not call out")
	}
}

func TestSend_ServerErrorPropagates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	publisher := NewPublisher(PublisherConfig{BaseURL: server.URL, Channel: "abc123"}, nil)
	if err := publisher.Send(context.Background(), "boom"); err == nil {
		t.Fatalf("expected error on 500")
	}
}
