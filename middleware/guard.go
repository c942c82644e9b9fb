package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/authstate"
)

type sessionContextKey struct{}

// SessionFromContext returns the session stored by [Guard].
func SessionFromContext(ctx context.Context) (authstate.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(authstate.Session)
	return s, ok
}

// Guard rejects requests with 401 while the container is Anonymous. Admitted
// requests carry the session read at admission time.
func Guard(c *authstate.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			s := c.GetState()
			if !s.Authenticated {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
