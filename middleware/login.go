package middleware

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/MrEthical07/authstate"
	"github.com/MrEthical07/authstate/internal/rate"
	"github.com/redis/go-redis/v9"
)

// LoginOption configures [LoginHandler].
type LoginOption func(*loginHandler)

// WithFailureThrottle rejects a client address with 429 once it has produced
// maxFailures rejected tokens within window. Counters live in Redis.
//
// It panics if client is nil or maxFailures or window is not positive.
func WithFailureThrottle(client redis.UniversalClient, maxFailures int, window time.Duration) LoginOption {
	limiter, err := rate.New(client, rate.Config{MaxFailures: maxFailures, Window: window})
	if err != nil {
		panic("middleware: WithFailureThrottle: " + err.Error())
	}
	return func(h *loginHandler) {
		h.limiter = limiter
	}
}

type loginHandler struct {
	c       *authstate.Container
	limiter *rate.Limiter
}

// LoginHandler establishes the session from the bearer identity token of the
// request. It answers 204 on success, 401 for a missing or rejected token and
// 503 when token establishment is not configured. With [WithFailureThrottle]
// throttled clients get 429.
func LoginHandler(c *authstate.Container, opts ...LoginOption) http.Handler {
	h := &loginHandler{c: c}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *loginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	client := clientKey(r)
	if h.limiter != nil {
		if err := h.limiter.Check(r.Context(), client); err != nil {
			throttleError(w, err)
			return
		}
	}

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	err := h.c.EstablishFromToken(authstate.WithSource(r.Context(), "http"), token)
	switch {
	case err == nil:
		if h.limiter != nil {
			_ = h.limiter.Reset(r.Context(), client)
		}
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, authstate.ErrTokenEstablishDisabled),
		errors.Is(err, authstate.ErrContainerClosed),
		errors.Is(err, authstate.ErrContainerNotReady):
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, authstate.ErrReentrantDispatch):
		w.Header().Set("Retry-After", "1")
		http.Error(w, "busy", http.StatusServiceUnavailable)
	default:
		if h.limiter != nil {
			if ferr := h.limiter.Fail(r.Context(), client); errors.Is(ferr, rate.ErrRedisUnavailable) {
				throttleError(w, ferr)
				return
			}
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
}

func throttleError(w http.ResponseWriter, err error) {
	if errors.Is(err, rate.ErrRateLimited) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	http.Error(w, "unavailable", http.StatusServiceUnavailable)
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LogoutHandler clears the session and answers 204.
func LogoutHandler(c *authstate.Container) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := c.Clear(authstate.WithSource(r.Context(), "http")); err != nil {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
