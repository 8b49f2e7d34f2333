package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowWindow(t *testing.T) {
	l := NewLimiter(Config{Limit: 2, Window: time.Minute})
	defer l.Stop()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false} {
		if got, _ := l.Allow("1.2.3.4"); got != want {
			t.Fatalf("request %d: Allow = %v, want %v", i, got, want)
		}
	}
	if ok, _ := l.Allow("5.6.7.8"); !ok {
		t.Fatal("limit leaked across clients")
	}

	now = now.Add(40 * time.Second)
	if ok, wait := l.Allow("1.2.3.4"); ok || wait != 20*time.Second {
		t.Fatalf("Allow = %v, %v; want false, 20s", ok, wait)
	}

	now = now.Add(20 * time.Second)
	if ok, _ := l.Allow("1.2.3.4"); !ok {
		t.Fatal("window did not reset")
	}

	now = now.Add(time.Minute)
	l.expire()
	if l.Tracked() != 0 {
		t.Fatalf("Tracked = %d after expiry", l.Tracked())
	}
}

func TestMiddleware(t *testing.T) {
	l := NewLimiter(Config{Limit: 1, Window: time.Minute})
	defer l.Stop()
	h := l.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	var last *httptest.ResponseRecorder
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		h.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
	if got := last.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("Retry-After = %q", got)
	}
}
