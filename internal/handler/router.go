package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pitchbot/feedback-relay/internal/handler/exchange"
	middlewarePkg "github.com/pitchbot/feedback-relay/internal/middleware"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(exchangeHandler *exchange.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// Liveness greeting for humans poking the backend directly.
	r.Get("/", handleGreeting)

	r.Route("/api", func(api chi.Router) {
		exchangeHandler.RegisterRoutes(api)
	})

	return r
}

func handleGreeting(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello! This is the feedback bot relay. POST /api/next-question to talk to the bot.\n"))
}
