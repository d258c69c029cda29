package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiterAllow(t *testing.T) {
	l := newLimiter(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 60})
	now := time.Now()

	for i := range 2 {
		if ok, _, _ := l.allow("1.2.3.4", now); !ok {
			t.Fatalf("request %d refused within burst", i+1)
		}
	}

	ok, _, retry := l.allow("1.2.3.4", now)
	if ok {
		t.Fatal("request beyond burst allowed")
	}
	if retry != 1 {
		t.Errorf("retry after = %d, want 1 at one token per second", retry)
	}

	if ok, _, _ := l.allow("5.6.7.8", now); !ok {
		t.Error("another client should have its own bucket")
	}

	if ok, _, _ := l.allow("1.2.3.4", now.Add(time.Second)); !ok {
		t.Error("bucket should refill after a second")
	}
}

func TestLimiterSweepsIdleClients(t *testing.T) {
	l := newLimiter(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1, IdleTTL: time.Minute, SweepInterval: time.Second})
	now := time.Now()

	l.allow("1.2.3.4", now)
	l.allow("5.6.7.8", now.Add(2*time.Minute))

	if _, ok := l.visitors["1.2.3.4"]; ok {
		t.Error("idle client should have been swept")
	}
	if _, ok := l.visitors["5.6.7.8"]; !ok {
		t.Error("active client should be kept")
	}
}

func TestRateLimitHeaders(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		wantStatus int
		wantRetry  bool
	}{
		{"first request", http.StatusNoContent, false},
		{"second request", http.StatusTooManyRequests, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/flock", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Retry-After") != ""; got != tt.wantRetry {
				t.Errorf("Retry-After present = %v, want %v", got, tt.wantRetry)
			}
			if rec.Header().Get("X-RateLimit-Limit") != "1" {
				t.Errorf("X-RateLimit-Limit = %q", rec.Header().Get("X-RateLimit-Limit"))
			}
		})
	}
}
