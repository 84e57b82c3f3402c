package vatsim

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	client := NewClient(ClientConfig{})

	if client.url != DefaultURL {
		t.Errorf("Expected url %s, got %s", DefaultURL, client.url)
	}
	if client.httpClient.Timeout != DefaultTimeout {
		t.Errorf("Expected timeout %v, got %v", DefaultTimeout, client.httpClient.Timeout)
	}
}

func TestFetch(t *testing.T) {
	t.Run("Successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("Expected GET, got %s", r.Method)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, sampleFeed)
		}))
		defer server.Close()

		client := NewClient(ClientConfig{URL: server.URL})
		defer client.Close()

		snap, err := client.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(snap.Pilots) != 4 {
			t.Errorf("Expected 4 pilots, got %d", len(snap.Pilots))
		}
		want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		if !snap.UpdatedAt.Equal(want) {
			t.Errorf("Expected UpdatedAt %v, got %v", want, snap.UpdatedAt)
		}
		if snap.FetchedAt.IsZero() {
			t.Error("Expected FetchedAt to be set")
		}
	})

	t.Run("Server error includes body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "upstream down")
		}))
		defer server.Close()

		client := NewClient(ClientConfig{URL: server.URL})
		_, err := client.Fetch(context.Background())
		if err == nil {
			t.Fatal("Expected error, got nil")
		}
		if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "upstream down") {
			t.Errorf("Expected status and body in error, got: %v", err)
		}
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"pilots": [`)
		}))
		defer server.Close()

		client := NewClient(ClientConfig{URL: server.URL})
		if _, err := client.Fetch(context.Background()); err == nil {
			t.Fatal("Expected error, got nil")
		}
	})

	t.Run("Rate limited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient(ClientConfig{URL: server.URL})
		_, err := client.Fetch(context.Background())

		rle, ok := IsRateLimitError(err)
		if !ok {
			t.Fatalf("Expected RateLimitError, got %v", err)
		}
		if rle.RetryAfter != 30*time.Second {
			t.Errorf("Expected RetryAfter 30s, got %v", rle.RetryAfter)
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, sampleFeed)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClient(ClientConfig{URL: server.URL})
		if _, err := client.Fetch(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

func TestFetchRateLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleFeed)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{URL: server.URL, MinInterval: time.Hour})

	if _, err := client.Fetch(context.Background()); err != nil {
		t.Fatalf("Expected first fetch to pass, got: %v", err)
	}

	// The second request would have to wait an hour.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.Fetch(ctx); err == nil {
		t.Error("Expected limiter to block second fetch")
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"absent", "", 0},
		{"seconds", "120", 2 * time.Minute},
		{"http date", now.Add(45 * time.Second).Format(http.TimeFormat), 45 * time.Second},
		{"date in the past", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Retry-After", tt.header)
			}
			if got := parseRetryAfter(h, now); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsRateLimitErrorWrapped(t *testing.T) {
	base := &RateLimitError{StatusCode: 429, Message: "Rate limit exceeded"}
	wrapped := fmt.Errorf("poll: %w", base)

	rle, ok := IsRateLimitError(wrapped)
	if !ok || rle != base {
		t.Errorf("Expected wrapped RateLimitError to be found")
	}
	if _, ok := IsRateLimitError(errors.New("other")); ok {
		t.Error("Expected plain error not to match")
	}
}
