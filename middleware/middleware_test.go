package middleware

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrEthical07/authstate"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newContainer(t *testing.T, withTokens bool) *authstate.Container {
	t.Helper()

	cfg := authstate.DefaultConfig()
	if withTokens {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		cfg.Token = authstate.TokenConfig{
			Enabled:       true,
			SigningMethod: "ed25519",
			PrivateKey:    priv,
			PublicKey:     pub,
			TTL:           time.Minute,
		}
	}

	c, err := authstate.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

var guest = authstate.Identity{ID: "1", DisplayName: "Guest", ContactAddress: "guest@example.com"}

func TestGuardRejectsAnonymous(t *testing.T) {
	c := newContainer(t, false)
	called := false
	h := Guard(c)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("expected 401 without calling next, got %d called=%v", rec.Code, called)
	}
}

func TestGuardAdmitsIdentified(t *testing.T) {
	c := newContainer(t, false)
	if err := c.Establish(context.Background(), guest); err != nil {
		t.Fatalf("establish: %v", err)
	}

	var seen authstate.Session
	h := Guard(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		if !ok {
			t.Error("session missing from context")
		}
		seen = s
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen.UserID() != "1" {
		t.Fatalf("expected user 1 in context, got %+v", seen)
	}
}

func TestLoginAndLogoutHandlers(t *testing.T) {
	c := newContainer(t, true)
	token, err := c.IssueToken(guest)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name   string
		method string
		auth   string
		want   int
	}{
		{name: "wrong method", method: http.MethodGet, auth: "Bearer " + token, want: http.StatusMethodNotAllowed},
		{name: "missing header", method: http.MethodPost, want: http.StatusUnauthorized},
		{name: "garbage token", method: http.MethodPost, auth: "Bearer abc.def.ghi", want: http.StatusUnauthorized},
		{name: "valid token", method: http.MethodPost, auth: "Bearer " + token, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/login", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			LoginHandler(c).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	if got := c.GetState(); !got.Authenticated || *got.Identity != guest {
		t.Fatalf("expected guest session, got %+v", got)
	}

	rec := httptest.NewRecorder()
	LogoutHandler(c).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if c.GetState().Authenticated {
		t.Fatal("expected anonymous after logout")
	}
}

func TestLoginWithoutTokenConfigUnavailable(t *testing.T) {
	c := newContainer(t, false)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("Authorization", "Bearer a.b.c")
	rec := httptest.NewRecorder()
	LoginHandler(c).ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestStateHandlerServesJSON(t *testing.T) {
	c := newContainer(t, false)
	if err := c.Establish(context.Background(), guest); err != nil {
		t.Fatalf("establish: %v", err)
	}

	rec := httptest.NewRecorder()
	StateHandler(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))

	var body struct {
		Authenticated bool                `json:"authenticated"`
		Identity      *authstate.Identity `json:"identity"`
		Phase         string              `json:"phase"`
		Revision      uint64              `json:"revision"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Authenticated || body.Identity == nil || *body.Identity != guest {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Phase != "identified" || body.Revision != 1 {
		t.Fatalf("unexpected phase/revision %+v", body)
	}
}

func TestLoginFailureThrottle(t *testing.T) {
	c := newContainer(t, true)
	token, err := c.IssueToken(guest)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := LoginHandler(c, WithFailureThrottle(client, 2, time.Minute))
	login := func(auth, addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		req.Header.Set("Authorization", auth)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if got := login("Bearer a.b.c", "192.0.2.1:4000"); got != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, got)
		}
	}
	if got := login("Bearer "+token, "192.0.2.1:4001"); got != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for throttled client, got %d", got)
	}
	if c.GetState().Authenticated {
		t.Fatal("throttled login must not establish")
	}

	if got := login("Bearer "+token, "192.0.2.2:4000"); got != http.StatusNoContent {
		t.Fatalf("expected 204 for other client, got %d", got)
	}

	mr.FastForward(time.Minute + time.Second)
	if got := login("Bearer "+token, "192.0.2.1:4002"); got != http.StatusNoContent {
		t.Fatalf("expected 204 after window, got %d", got)
	}
}

func TestWithFailureThrottleRejectsBadBudget(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tests := []struct {
		name        string
		maxFailures int
		window      time.Duration
	}{
		{name: "zero failures", maxFailures: 0, window: time.Minute},
		{name: "negative failures", maxFailures: -3, window: time.Minute},
		{name: "zero window", maxFailures: 3, window: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Fatal("expected panic for an unusable throttle budget")
				}
			}()
			WithFailureThrottle(client, tt.maxFailures, tt.window)
		})
	}
}
