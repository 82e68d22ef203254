// Package httpapi binds the client-facing HTTP surface to the backend
// services.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ichor-news/backend/internal/activity"
	"github.com/ichor-news/backend/internal/models"
	"github.com/ichor-news/backend/internal/prefs"
)

// Feed is the aggregation service surface. Both calls degrade to an empty
// feed on upstream failure, so they carry no error.
type Feed interface {
	Curated(ctx context.Context, filters []string, page int, user string) []models.Summary
	Search(ctx context.Context, topic string, page int, user string) []models.Summary
}

// Assistant is the Petrichor surface the handlers call. All operations are
// best-effort with deterministic fallbacks.
type Assistant interface {
	Expand(ctx context.Context, content string) string
	Chat(ctx context.Context, user, prompt string) string
	ExplainBias(ctx context.Context, content string) string
	RewriteForBias(ctx context.Context, summary string, bias models.Bias) string
}

// Server holds the handler dependencies.
type Server struct {
	log    *slog.Logger
	feed   Feed
	agent  Assistant
	store  prefs.Store
	events *activity.Publisher
}

// New wires a server. events may be nil when analytics is not configured.
func New(log *slog.Logger, feed Feed, agent Assistant, store prefs.Store, events *activity.Publisher) *Server {
	return &Server{log: log, feed: feed, agent: agent, store: store, events: events}
}

// Routes assembles the router. allowedOrigins feeds the CORS middleware;
// empty entries are ignored.
func (s *Server) Routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(allowedOrigins))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/news/curated", s.handleCurated)
		r.Post("/news/personalized", s.handlePersonalized)
		r.Post("/news/search", s.handleSearch)
		r.Post("/news/expand", s.handleExpand)
		r.Post("/petrichor/chat", s.handleChat)
		r.Post("/petrichor/bias-explainer", s.handleBiasExplainer)
		r.Post("/quiz/submit", s.handleQuizSubmit)
		r.Get("/quiz/status", s.handleQuizStatus)
		r.Post("/quiz/status", s.handleQuizStatus)
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
