package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ichor-news/backend/internal/httpapi"
	"github.com/ichor-news/backend/internal/models"
	"github.com/ichor-news/backend/internal/prefs"
)

type stubFeed struct {
	summaries []models.Summary
	filters   []string
	topic     string
	page      int
	user      string
}

func (f *stubFeed) Curated(_ context.Context, filters []string, page int, user string) []models.Summary {
	f.filters, f.page, f.user = filters, page, user
	return f.summaries
}

func (f *stubFeed) Search(_ context.Context, topic string, page int, user string) []models.Summary {
	f.topic, f.page, f.user = topic, page, user
	return f.summaries
}

type stubAgent struct{}

func (stubAgent) Expand(_ context.Context, content string) string {
	return "expanded: " + content
}

func (stubAgent) Chat(_ context.Context, user, prompt string) string {
	return "reply to " + user
}

func (stubAgent) ExplainBias(_ context.Context, content string) string {
	return "explanation"
}

func (stubAgent) RewriteForBias(_ context.Context, summary string, bias models.Bias) string {
	if bias == models.BiasUnknown {
		return summary
	}
	return string(bias) + ": " + summary
}

type failingStore struct{ prefs.Store }

func (failingStore) SetBias(context.Context, string, models.Bias) error {
	return errors.New("disk full")
}

func (failingStore) SetStyle(context.Context, string, string) error {
	return errors.New("disk full")
}

func newServer(feed httpapi.Feed, store prefs.Store) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if store == nil {
		store = prefs.NewMemory()
	}
	return httpapi.New(log, feed, stubAgent{}, store, nil).Routes(nil)
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func TestCuratedReturnsSummaries(t *testing.T) {
	feed := &stubFeed{summaries: []models.Summary{
		{ID: "1", Title: "first", Summary: "s1"},
		{ID: "2", Title: "second", Summary: "s2", Thumbnail: "https://img/2.jpg"},
	}}
	h := newServer(feed, nil)

	w := post(t, h, "/api/news/curated", `{"filters":["economy","housing"],"page":2,"username":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "first", got[0].Title)
	require.Equal(t, "second", got[1].Title)

	require.Equal(t, []string{"economy", "housing"}, feed.filters)
	require.Equal(t, 2, feed.page)
	require.Equal(t, "alice", feed.user)
}

func TestCuratedEmptyFiltersStillOK(t *testing.T) {
	h := newServer(&stubFeed{summaries: []models.Summary{}}, nil)

	w := post(t, h, "/api/news/curated", `{"filters":[],"page":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestCuratedDefaultsPageAndUser(t *testing.T) {
	feed := &stubFeed{summaries: []models.Summary{}}
	h := newServer(feed, nil)

	w := post(t, h, "/api/news/curated", `{"filters":["economy"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, feed.page)
	require.Equal(t, models.GuestUser, feed.user)
}

func TestCuratedRejectsNegativePage(t *testing.T) {
	h := newServer(&stubFeed{}, nil)
	w := post(t, h, "/api/news/curated", `{"filters":["economy"],"page":-1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPersonalizedRewritesTowardStoredBias(t *testing.T) {
	store := prefs.NewMemory()
	require.NoError(t, store.SetBias(context.Background(), "alice", models.BiasLeft))

	feed := &stubFeed{summaries: []models.Summary{{Title: "t", Summary: "original"}}}
	h := newServer(feed, store)

	w := post(t, h, "/api/news/personalized", `{"filters":["economy"],"username":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "left: original", got[0].Summary)
}

func TestPersonalizedWithoutQuizIsPassthrough(t *testing.T) {
	feed := &stubFeed{summaries: []models.Summary{{Title: "t", Summary: "original"}}}
	h := newServer(feed, nil)

	w := post(t, h, "/api/news/personalized", `{"filters":["economy"],"username":"nobody"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "original", got[0].Summary)
}

func TestSearchOrderPreserved(t *testing.T) {
	feed := &stubFeed{summaries: []models.Summary{
		{Title: "one", Summary: "a"},
		{Title: "two", Summary: "b"},
	}}
	h := newServer(feed, nil)

	w := post(t, h, "/api/news/search", `{"topic":"economy","page":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "one", got[0].Title)
	require.Equal(t, "two", got[1].Title)
	require.Equal(t, "economy", feed.topic)
}

func TestSearchRequiresTopic(t *testing.T) {
	h := newServer(&stubFeed{}, nil)

	w := post(t, h, "/api/news/search", `{"topic":"  ","page":1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = post(t, h, "/api/news/search", `{"page":1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	h := newServer(&stubFeed{}, nil)
	w := post(t, h, "/api/news/search", `{"topic":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpand(t *testing.T) {
	h := newServer(&stubFeed{}, nil)

	w := post(t, h, "/api/news/expand", `{"content":"a summary"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"full":"expanded: a summary"}`, w.Body.String())

	w = post(t, h, "/api/news/expand", `{"content":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBiasExplainer(t *testing.T) {
	h := newServer(&stubFeed{}, nil)

	w := post(t, h, "/api/petrichor/bias-explainer", `{"content":"an article"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"explanation":"explanation"}`, w.Body.String())

	w = post(t, h, "/api/petrichor/bias-explainer", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat(t *testing.T) {
	h := newServer(&stubFeed{}, nil)

	w := post(t, h, "/api/petrichor/chat", `{"prompt":"hello","username":"bob"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"response":"reply to bob"}`, w.Body.String())

	w = post(t, h, "/api/petrichor/chat", `{"prompt":"  "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatRememberStoresStyle(t *testing.T) {
	store := prefs.NewMemory()
	h := newServer(&stubFeed{}, store)

	w := post(t, h, "/api/petrichor/chat", `{"prompt":"keep it brief","username":"bob","remember":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	p, err := store.Get(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, "keep it brief", p.Style)
}

func TestChatRememberFailureIsServerError(t *testing.T) {
	h := newServer(&stubFeed{}, failingStore{prefs.NewMemory()})

	w := post(t, h, "/api/petrichor/chat", `{"prompt":"keep it brief","remember":true}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestQuizSubmitAndStatus(t *testing.T) {
	store := prefs.NewMemory()
	h := newServer(&stubFeed{}, store)

	w := post(t, h, "/api/quiz/submit", `{"answers":["yes","yes","no","yes","no"],"username":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"bias":"center"}`, w.Body.String())

	status := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/quiz/status?username=alice", nil)
	h.ServeHTTP(status, req)
	require.Equal(t, http.StatusOK, status.Code)
	require.JSONEq(t, `{"taken":true}`, status.Body.String())
}

func TestQuizStatusPostBody(t *testing.T) {
	h := newServer(&stubFeed{}, nil)

	w := post(t, h, "/api/quiz/status", `{"username":"nobody"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"taken":false}`, w.Body.String())
}

func TestQuizStatusRequiresUsername(t *testing.T) {
	h := newServer(&stubFeed{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/quiz/status", nil)
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuizSubmitValidation(t *testing.T) {
	h := newServer(&stubFeed{}, nil)

	// Wrong length.
	w := post(t, h, "/api/quiz/submit", `{"answers":["yes","no"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Unrecognized token.
	w = post(t, h, "/api/quiz/submit", `{"answers":["yes","yes","maybe","no","no"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Empty set is invalid, not center.
	w = post(t, h, "/api/quiz/submit", `{"answers":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuizSubmitNumericAnswers(t *testing.T) {
	h := newServer(&stubFeed{}, nil)

	w := post(t, h, "/api/quiz/submit", `{"answers":[1,1,1,1,1],"username":"rita"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"bias":"right"}`, w.Body.String())
}

func TestQuizSubmitStoreFailure(t *testing.T) {
	h := newServer(&stubFeed{}, failingStore{prefs.NewMemory()})

	w := post(t, h, "/api/quiz/submit", `{"answers":["yes","yes","no","yes","no"]}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealth(t *testing.T) {
	h := newServer(&stubFeed{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := httpapi.New(log, &stubFeed{}, stubAgent{}, prefs.NewMemory(), nil).
		Routes([]string{"http://localhost:3000"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/news/search", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	// Unlisted origins get no CORS headers.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/api/news/search", nil)
	req.Header.Set("Origin", "http://evil.example")
	h.ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
