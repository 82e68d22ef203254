// Package newsapi is a thin client for the NewsAPI.org "everything"
// endpoint, the backend's only source of raw articles.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ichor-news/backend/internal/models"
)

const defaultBaseURL = "https://newsapi.org/v2"

// PageSize is how many articles each upstream page carries. Every article
// costs one model call downstream, so this stays small.
const PageSize = 5

// Sort orders understood by the provider.
const (
	SortRecency   = "publishedAt"
	SortRelevancy = "relevancy"
)

// Query describes one everything-search.
type Query struct {
	Text     string
	Page     int
	SortBy   string
	InTitle  bool
	Language string
}

// Client talks to NewsAPI.org over plain HTTP.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New builds a client. baseURL may be empty for the public API; timeout
// bounds each request.
func New(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type rawResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URLToImage  string `json:"urlToImage"`
	} `json:"articles"`
}

// Everything runs one search and flattens the results. Missing titles fall
// back to the source name, then "Untitled"; missing descriptions fall back
// to the content snippet.
func (c *Client) Everything(ctx context.Context, q Query) ([]models.Article, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("pageSize", strconv.Itoa(PageSize))
	params.Set("page", strconv.Itoa(max(q.Page, 1)))
	params.Set("apiKey", c.apiKey)

	lang := q.Language
	if lang == "" {
		lang = "en"
	}
	params.Set("language", lang)

	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.InTitle {
		params.Set("searchIn", "title")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("news api status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw rawResponse
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}
	if raw.Status != "ok" {
		return nil, fmt.Errorf("news api error: %s", raw.Message)
	}

	articles := make([]models.Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = strings.TrimSpace(item.Source.Name)
		}
		if title == "" {
			title = "Untitled"
		}

		desc := strings.TrimSpace(item.Description)
		if desc == "" {
			desc = strings.TrimSpace(item.Content)
		}

		articles = append(articles, models.Article{
			Title:       title,
			Description: desc,
			Thumbnail:   strings.TrimSpace(item.URLToImage),
		})
	}

	return articles, nil
}
