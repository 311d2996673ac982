package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/roundtable-games/avalon-server/internal/auth"
	"github.com/roundtable-games/avalon-server/internal/httpapi/handler"
	"github.com/roundtable-games/avalon-server/internal/ratelimit"
)

// denyAllLimiter denies every request (for testing 429).
type denyAllLimiter struct{}

func (denyAllLimiter) Allow(key string) (bool, int) { return false, 60 }

func TestRateLimitMiddleware_Returns429WhenDenied(t *testing.T) {
	var lim ratelimit.Limiter = denyAllLimiter{}
	h := RateLimitMiddleware(lim, RateLimitKeyByIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}
}

func TestRateLimitMiddleware_ProxiesWhenAllowed(t *testing.T) {
	h := RateLimitMiddleware(&ratelimit.Noop{}, RateLimitKeyByIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("expected body ok, got %q", w.Body.String())
	}
}

func TestRequirePlayer_RejectsMissingAndBadTokens(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	h := RequirePlayer(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := map[string]string{
		"missing":      "",
		"not a bearer": "Basic abc",
		"garbage":      "Bearer not-a-token",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, w.Code)
		}
	}
}

func TestRequirePlayer_SetsClaims(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.Issue("game-1", "player-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var got *auth.Claims
	h := RequirePlayer(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = handler.ClaimsFromRequest(r)
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got == nil || got.GameID != "game-1" || got.PlayerID != "player-1" {
		t.Errorf("claims not propagated, got %+v", got)
	}
}
