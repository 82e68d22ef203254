package newsapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ichor-news/backend/internal/newsapi"
)

func TestEverythingParsesArticles(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"q":        q.Get("q"),
			"page":     q.Get("page"),
			"pageSize": q.Get("pageSize"),
			"sortBy":   q.Get("sortBy"),
			"language": q.Get("language"),
			"apiKey":   q.Get("apiKey"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"source":{"name":"Reuters"},"title":"Budget passes","description":"Close vote.","urlToImage":"https://img/1.jpg"},
				{"source":{"name":"AP"},"title":"","description":"","content":"Fallback content"}
			]
		}`))
	}))
	defer srv.Close()

	client := newsapi.New("test-key", srv.URL, time.Second)
	articles, err := client.Everything(context.Background(), newsapi.Query{
		Text:   "economy",
		Page:   2,
		SortBy: newsapi.SortRecency,
	})
	require.NoError(t, err)

	require.Equal(t, "economy", gotQuery["q"])
	require.Equal(t, "2", gotQuery["page"])
	require.Equal(t, "5", gotQuery["pageSize"])
	require.Equal(t, "publishedAt", gotQuery["sortBy"])
	require.Equal(t, "en", gotQuery["language"])
	require.Equal(t, "test-key", gotQuery["apiKey"])

	require.Len(t, articles, 2)
	require.Equal(t, "Budget passes", articles[0].Title)
	require.Equal(t, "Close vote.", articles[0].Description)
	require.Equal(t, "https://img/1.jpg", articles[0].Thumbnail)

	// Missing title falls back to the source name, missing description to content.
	require.Equal(t, "AP", articles[1].Title)
	require.Equal(t, "Fallback content", articles[1].Description)
}

func TestEverythingTitleSearch(t *testing.T) {
	var searchIn string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searchIn = r.URL.Query().Get("searchIn")
		w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer srv.Close()

	client := newsapi.New("k", srv.URL, time.Second)
	_, err := client.Everything(context.Background(), newsapi.Query{Text: "economy", InTitle: true})
	require.NoError(t, err)
	require.Equal(t, "title", searchIn)
}

func TestEverythingNonOKStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"status":"error","message":"rate limited"}`))
	}))
	defer srv.Close()

	client := newsapi.New("k", srv.URL, time.Second)
	_, err := client.Everything(context.Background(), newsapi.Query{Text: "economy"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestEverythingErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"apiKeyInvalid"}`))
	}))
	defer srv.Close()

	client := newsapi.New("k", srv.URL, time.Second)
	_, err := client.Everything(context.Background(), newsapi.Query{Text: "economy"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "apiKeyInvalid")
}

func TestEverythingMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":`))
	}))
	defer srv.Close()

	client := newsapi.New("k", srv.URL, time.Second)
	_, err := client.Everything(context.Background(), newsapi.Query{Text: "economy"})
	require.Error(t, err)
}

func TestEverythingUnreachable(t *testing.T) {
	client := newsapi.New("k", "http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.Everything(context.Background(), newsapi.Query{Text: "economy"})
	require.Error(t, err)
}
