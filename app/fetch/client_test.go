package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient() *Client {
	return NewClient(Options{Timeout: 2 * time.Second, UserAgent: "PoliticsWatcher/test"})
}

func TestFetch_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<rss></rss>"))
	}))
	defer server.Close()

	data := newTestClient().Fetch(context.Background(), server.URL)

	if string(data) != "<rss></rss>" {
		t.Errorf("Expected body, got %q", data)
	}
	if gotUA != "PoliticsWatcher/test" {
		t.Errorf("Expected User-Agent header, got %q", gotUA)
	}
}

func TestFetch_Non2xxIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not here"))
	}))
	defer server.Close()

	if data := newTestClient().Fetch(context.Background(), server.URL); data != nil {
		t.Errorf("Expected nil body for 404, got %q", data)
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	client := newTestClient()

	for _, raw := range []string{"", "ftp://example.com/feed", "://broken"} {
		if data := client.Fetch(context.Background(), raw); data != nil {
			t.Errorf("Expected nil body for %q, got %q", raw, data)
		}
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewClient(Options{Timeout: 100 * time.Millisecond, UserAgent: "test"})

	start := time.Now()
	data := client.Fetch(context.Background(), server.URL)

	if data != nil {
		t.Errorf("Expected nil body on timeout, got %q", data)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected timeout to cut request short, took %v", elapsed)
	}
}

func TestFetch_BodyIsCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", MaxBodySize+1024)))
	}))
	defer server.Close()

	data := newTestClient().Fetch(context.Background(), server.URL)

	if len(data) != MaxBodySize {
		t.Errorf("Expected %d bytes, got %d", MaxBodySize, len(data))
	}
}

func TestFetch_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient()
	for i := 0; i < breakerFailures+2; i++ {
		client.Fetch(context.Background(), server.URL+"/article")
	}

	if got := atomic.LoadInt32(&hits); got != breakerFailures {
		t.Errorf("Expected %d requests before circuit opened, got %d", breakerFailures, got)
	}
}

func TestFetch_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(Options{Timeout: time.Second, UserAgent: "test", RequestsPerSecond: 5})
	if data := client.Fetch(ctx, server.URL); data != nil {
		t.Errorf("Expected nil body for cancelled context, got %q", data)
	}
}
