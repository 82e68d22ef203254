package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ichor-news/backend/internal/activity"
	"github.com/ichor-news/backend/internal/models"
	"github.com/ichor-news/backend/internal/quiz"
)

// Feed requests fan out one model call per article, so they get a wider
// window than the single-call endpoints.
const (
	feedTimeout  = 45 * time.Second
	agentTimeout = 20 * time.Second
	storeTimeout = 5 * time.Second
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type feedRequest struct {
	Filters  []string `json:"filters"`
	Topic    string   `json:"topic"`
	Page     int      `json:"page"`
	Username string   `json:"username"`
}

func (s *Server) handleCurated(w http.ResponseWriter, r *http.Request) {
	var req feedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	page, ok := normalizePage(w, req.Page)
	if !ok {
		return
	}
	user := usernameOrGuest(req.Username)

	ctx, cancel := context.WithTimeout(r.Context(), feedTimeout)
	defer cancel()

	summaries := s.feed.Curated(ctx, req.Filters, page, user)
	s.events.Publish(ctx, activity.TypeNewsCurated, user, strings.Join(req.Filters, ", "))

	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handlePersonalized(w http.ResponseWriter, r *http.Request) {
	var req feedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	page, ok := normalizePage(w, req.Page)
	if !ok {
		return
	}
	user := usernameOrGuest(req.Username)

	ctx, cancel := context.WithTimeout(r.Context(), feedTimeout)
	defer cancel()

	// Re-tone each curated summary toward the user's quiz result. Users
	// without a stored bias get the feed unchanged.
	bias := models.BiasUnknown
	if pref, err := s.store.Get(ctx, user); err == nil {
		if pref.Bias != "" {
			bias = pref.Bias
		}
	} else {
		s.log.Warn("preference lookup failed, skipping personalization",
			slog.String("user", user),
			slog.Any("err", err),
		)
	}

	summaries := s.feed.Curated(ctx, req.Filters, page, user)
	for i := range summaries {
		summaries[i].Summary = s.agent.RewriteForBias(ctx, summaries[i].Summary, bias)
	}

	s.events.Publish(ctx, activity.TypeNewsPersonal, user, strings.Join(req.Filters, ", "))

	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req feedRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		badRequest(w, "topic is required")
		return
	}
	page, ok := normalizePage(w, req.Page)
	if !ok {
		return
	}
	user := usernameOrGuest(req.Username)

	ctx, cancel := context.WithTimeout(r.Context(), feedTimeout)
	defer cancel()

	summaries := s.feed.Search(ctx, topic, page, user)
	s.events.Publish(ctx, activity.TypeNewsSearched, user, topic)

	writeJSON(w, http.StatusOK, summaries)
}

type expandRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		badRequest(w, "content is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), agentTimeout)
	defer cancel()

	full := s.agent.Expand(ctx, req.Content)
	s.events.Publish(ctx, activity.TypeArticleExpanded, models.GuestUser, "")

	writeJSON(w, http.StatusOK, map[string]string{"full": full})
}

type chatRequest struct {
	Prompt   string `json:"prompt"`
	Username string `json:"username"`
	Remember bool   `json:"remember"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		badRequest(w, "prompt is required")
		return
	}
	user := usernameOrGuest(req.Username)

	ctx, cancel := context.WithTimeout(r.Context(), agentTimeout)
	defer cancel()

	// A remembered prompt becomes the user's standing style guidance for
	// every future summary. Losing it silently would be a correctness bug,
	// so a store failure fails the request.
	if req.Remember {
		if err := s.store.SetStyle(ctx, user, prompt); err != nil {
			s.log.Error("save style guidance", slog.String("user", user), slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not save style preference"})
			return
		}
	}

	response := s.agent.Chat(ctx, user, prompt)
	s.events.Publish(ctx, activity.TypeChatMessage, user, prompt)

	writeJSON(w, http.StatusOK, map[string]string{"response": response})
}

func (s *Server) handleBiasExplainer(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		badRequest(w, "content is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), agentTimeout)
	defer cancel()

	explanation := s.agent.ExplainBias(ctx, req.Content)
	s.events.Publish(ctx, activity.TypeBiasExplained, models.GuestUser, "")

	writeJSON(w, http.StatusOK, map[string]string{"explanation": explanation})
}

type quizSubmitRequest struct {
	Answers  []any  `json:"answers"`
	Username string `json:"username"`
}

func (s *Server) handleQuizSubmit(w http.ResponseWriter, r *http.Request) {
	var req quizSubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Answers) != quiz.Length {
		badRequest(w, fmt.Sprintf("quiz expects exactly %d answers", quiz.Length))
		return
	}

	scores, err := quiz.Normalize(req.Answers)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	bias, err := quiz.Classify(scores)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	user := usernameOrGuest(req.Username)

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := s.store.SetBias(ctx, user, bias); err != nil {
		s.log.Error("save quiz result", slog.String("user", user), slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not save quiz result"})
		return
	}

	s.events.Publish(ctx, activity.TypeQuizSubmitted, user, string(bias))

	writeJSON(w, http.StatusOK, map[string]string{"bias": string(bias)})
}

type quizStatusRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleQuizStatus(w http.ResponseWriter, r *http.Request) {
	var username string
	if r.Method == http.MethodGet {
		username = r.URL.Query().Get("username")
	} else {
		var req quizStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		username = req.Username
	}

	username = strings.TrimSpace(username)
	if username == "" {
		badRequest(w, "username is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	taken, err := s.store.HasTakenQuiz(ctx, username)
	if err != nil {
		s.log.Error("quiz status lookup", slog.String("user", username), slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not read quiz status"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"taken": taken})
}

func normalizePage(w http.ResponseWriter, page int) (int, bool) {
	if page < 0 {
		badRequest(w, "page must be positive")
		return 0, false
	}
	if page == 0 {
		page = 1
	}
	return page, true
}

func usernameOrGuest(raw string) string {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return trimmed
	}
	return models.GuestUser
}
