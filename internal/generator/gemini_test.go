package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestClient(baseURL string, maxRetries int) *Client {
	c := New(Config{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
	}, nil)
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	c.backoffUnit = time.Millisecond
	return c
}

func candidateBody(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing key query parameter")
		}
		fmt.Fprint(w, candidateBody("  Translated text.  "))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)

	got, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Translated text." {
		t.Errorf("expected trimmed text, got %q", got)
	}
	if c.RequestCount() != 1 {
		t.Errorf("expected request count 1, got %d", c.RequestCount())
	}
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	c := New(Config{}, nil)

	_, err := c.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGenerate_RetriesOnRateLimit(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, candidateBody("third time lucky"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)

	got, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "third time lucky" {
		t.Errorf("unexpected text %q", got)
	}
	if n := attempts.Load(); n != 3 {
		t.Errorf("expected exactly 3 underlying attempts, got %d", n)
	}
	if c.RequestCount() != 1 {
		t.Errorf("expected 1 successful request, got %d", c.RequestCount())
	}
}

func TestGenerate_RetriesOnOverload(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, candidateBody("recovered"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)

	got, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "recovered" {
		t.Errorf("unexpected text %q", got)
	}
	if n := attempts.Load(); n != 2 {
		t.Errorf("expected 2 attempts, got %d", n)
	}
}

func TestGenerate_ExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)

	_, err := c.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrMaxRetries) {
		t.Fatalf("expected ErrMaxRetries, got %v", err)
	}
	if n := attempts.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
	if c.RequestCount() != 0 {
		t.Errorf("failed call should not count, got %d", c.RequestCount())
	}
}

func TestGenerate_ServerErrorSurfacedOnFinalAttempt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 2)

	_, err := c.Generate(context.Background(), "prompt")
	if err == nil || err.Error() != "API returned status 500" {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestGenerate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, candidateBody("too late"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 1)
	c.cfg.Timeout = 20 * time.Millisecond

	_, err := c.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestGenerate_NoCandidates(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)

	_, err := c.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrNoResponse) {
		t.Fatalf("expected ErrNoResponse, got %v", err)
	}
	if n := attempts.Load(); n != 1 {
		t.Errorf("empty candidates should not be retried, got %d attempts", n)
	}
}
