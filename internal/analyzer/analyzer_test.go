package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type countingAnalyzer struct {
	mu    sync.Mutex
	calls int
	out   Analysis
	err   error
}

func (c *countingAnalyzer) Analyze(_ context.Context, _ string) (Analysis, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.out, c.err
}

func (c *countingAnalyzer) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestHTTPAnalyzer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["text"] != "ดีใจจัง" {
			t.Errorf("text = %q", req["text"])
		}
		_ = json.NewEncoder(w).Encode(Analysis{Emotion: "joy", Confidence: 0.93, Gesture: "excited_jump"})
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(srv.URL)
	got, err := a.Analyze(context.Background(), "ดีใจจัง")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Emotion != "joy" || got.Gesture != "excited_jump" {
		t.Errorf("analysis = %+v", got)
	}
}

func TestHTTPAnalyzerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewHTTPAnalyzer(srv.URL).Analyze(context.Background(), "x"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestCachedAnalyzerHitsCacheOnSecondCall(t *testing.T) {
	inner := &countingAnalyzer{out: Analysis{Emotion: "calm", Confidence: 0.7, Gesture: "idle"}}
	c := NewCachedAnalyzer(inner, testRedis(t), time.Minute)
	ctx := context.Background()

	first, err := c.Analyze(ctx, "สบายๆ")
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	second, err := c.Analyze(ctx, "สบายๆ")
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	if first != second {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
	if inner.callCount() != 1 {
		t.Errorf("inner calls = %d, want 1 (second call served from cache)", inner.callCount())
	}
}

func TestCachedAnalyzerDistinctTexts(t *testing.T) {
	inner := &countingAnalyzer{out: Analysis{Emotion: "joy"}}
	c := NewCachedAnalyzer(inner, testRedis(t), time.Minute)
	ctx := context.Background()

	_, _ = c.Analyze(ctx, "หนึ่ง")
	_, _ = c.Analyze(ctx, "สอง")
	if inner.callCount() != 2 {
		t.Errorf("inner calls = %d, want 2 for distinct utterances", inner.callCount())
	}
}

func TestCachedAnalyzerErrorNotCached(t *testing.T) {
	inner := &countingAnalyzer{err: fmt.Errorf("service down")}
	c := NewCachedAnalyzer(inner, testRedis(t), time.Minute)
	ctx := context.Background()

	if _, err := c.Analyze(ctx, "x"); err == nil {
		t.Fatal("expected inner error to propagate")
	}
	if _, err := c.Analyze(ctx, "x"); err == nil {
		t.Fatal("expected error again; failures must not be cached")
	}
	if inner.callCount() != 2 {
		t.Errorf("inner calls = %d, want 2", inner.callCount())
	}
}
