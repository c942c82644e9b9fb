package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/MrEthical07/authstate"
)

type stateResponse struct {
	authstate.Session
	Phase    string `json:"phase"`
	Revision uint64 `json:"revision"`
}

// StateHandler serves the current session as JSON.
func StateHandler(c *authstate.Container) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := c.GetState()
		resp := stateResponse{
			Session:  s,
			Phase:    s.Phase().String(),
			Revision: c.Revision(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(resp)
	})
}
