package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"viva-backend/internal/handlers"
	"viva-backend/internal/middleware"
	"viva-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	studentSessionHandler *handlers.StudentSessionHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Join rate limiter (30 req/min per IP)
	joinLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Student Session Routes ────
		r.Route("/student-sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(middleware.RequireStudent)

			r.Group(func(r chi.Router) {
				r.Use(joinLimiter.Middleware)
				r.Post("/join", studentSessionHandler.Join)
			})

			r.Get("/history", studentSessionHandler.History)
			r.Post("/{id}/start", studentSessionHandler.Start)
			r.Get("/{id}/question", studentSessionHandler.NextQuestion)
			r.Post("/{id}/answer", studentSessionHandler.SubmitAnswer)
			r.Post("/{id}/end", studentSessionHandler.End)
			r.Get("/{id}", studentSessionHandler.GetResult)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
