package agent

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StatusRouter serves the agent's localhost health and status endpoints.
func StatusRouter(a *Agent) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(a.Status()); err != nil {
			log.Printf("[Agent] Status encode failed: %v", err)
		}
	})

	return r
}

// ServeStatus runs the status server until the listener fails.
func ServeStatus(addr string, a *Agent) error {
	log.Printf("[Agent] Status endpoint on http://%s/status", addr)
	return http.ListenAndServe(addr, StatusRouter(a))
}
