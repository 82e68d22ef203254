// Package news aggregates articles from the external news source and runs
// each one through Petrichor.
package news

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ichor-news/backend/internal/models"
	"github.com/ichor-news/backend/internal/newsapi"
)

// ArticleSource fetches raw articles for a query.
type ArticleSource interface {
	Everything(ctx context.Context, q newsapi.Query) ([]models.Article, error)
}

// Summarizer turns one article into personalized post text. It is
// best-effort and never fails.
type Summarizer interface {
	Summarize(ctx context.Context, article models.Article, user string) string
}

// Service implements the curated and search feeds. Upstream failures
// degrade to an empty result; the only error surface left for handlers is
// request validation.
type Service struct {
	source      ArticleSource
	summarizer  Summarizer
	log         *slog.Logger
	concurrency int
}

// NewService wires the aggregation service. concurrency bounds the
// per-article summarize fan-out.
func NewService(source ArticleSource, summarizer Summarizer, log *slog.Logger, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{
		source:      source,
		summarizer:  summarizer,
		log:         log,
		concurrency: concurrency,
	}
}

// Curated builds a feed from the user's keyword filters. It requires at
// least one non-empty keyword and returns an empty feed without contacting
// the news source otherwise. Results are sorted by recency upstream.
func (s *Service) Curated(ctx context.Context, filters []string, page int, user string) []models.Summary {
	keywords := make([]string, 0, len(filters))
	for _, f := range filters {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	if len(keywords) == 0 {
		return []models.Summary{}
	}

	return s.fetchAndSummarize(ctx, newsapi.Query{
		Text:   strings.Join(keywords, " OR "),
		Page:   page,
		SortBy: newsapi.SortRecency,
	}, user)
}

// Search builds a feed for a free-text topic, ranked by relevance against
// article titles.
func (s *Service) Search(ctx context.Context, topic string, page int, user string) []models.Summary {
	return s.fetchAndSummarize(ctx, newsapi.Query{
		Text:    strings.TrimSpace(topic),
		Page:    page,
		SortBy:  newsapi.SortRelevancy,
		InTitle: true,
	}, user)
}

func (s *Service) fetchAndSummarize(ctx context.Context, q newsapi.Query, user string) []models.Summary {
	articles, err := s.source.Everything(ctx, q)
	if err != nil {
		s.log.Error("news source unavailable",
			slog.String("query", q.Text),
			slog.Any("err", err),
		)
		return []models.Summary{}
	}

	kept := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" && a.Description == "" {
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		return []models.Summary{}
	}

	// One model call per article; fan out with a bound so latency does not
	// scale linearly with the page size. Output order matches input order.
	summaries := make([]models.Summary, len(kept))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, article := range kept {
		i, article := i, article
		g.Go(func() error {
			summaries[i] = models.Summary{
				ID:        uuid.NewString(),
				Title:     article.Title,
				Summary:   s.summarizer.Summarize(gctx, article, user),
				Thumbnail: article.Thumbnail,
			}
			return nil
		})
	}
	_ = g.Wait()

	return summaries
}
