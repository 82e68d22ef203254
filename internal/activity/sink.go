package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Indexer is the slice of the Elasticsearch client the sink needs.
type Indexer interface {
	IndexEvent(ctx context.Context, doc Document) error
}

// Sink turns raw Kafka payloads into indexed activity documents.
type Sink struct {
	indexer   Indexer
	seen      *SeenSet
	log       *slog.Logger
	termLimit int
	termMin   int
}

// NewSink wires a sink. termLimit and termMin control subject term
// extraction.
func NewSink(indexer Indexer, seen *SeenSet, log *slog.Logger, termLimit, termMin int) *Sink {
	return &Sink{
		indexer:   indexer,
		seen:      seen,
		log:       log,
		termLimit: termLimit,
		termMin:   termMin,
	}
}

// Process validates one payload, drops duplicates, and indexes the rest.
// Malformed payloads return an error so the caller can decide whether to
// skip or retry; duplicates are not an error.
func (s *Sink) Process(ctx context.Context, payload []byte) error {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	event.ID = strings.TrimSpace(event.ID)
	event.Type = strings.TrimSpace(event.Type)
	if event.ID == "" || event.Type == "" {
		return fmt.Errorf("event missing id or type")
	}

	if event.User == "" {
		event.User = "guest"
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	if s.seen.Contains(event.ID) {
		s.log.Debug("duplicate event", slog.String("id", event.ID))
		return nil
	}

	doc := Document{
		ID:        event.ID,
		Type:      event.Type,
		User:      event.User,
		Subject:   event.Subject,
		Terms:     ExtractTerms(event.Subject, s.termLimit, s.termMin),
		Timestamp: event.CreatedAt,
	}

	if err := s.indexer.IndexEvent(ctx, doc); err != nil {
		return err
	}

	s.seen.Add(event.ID)
	s.log.Info("indexed event",
		slog.String("id", doc.ID),
		slog.String("type", doc.Type),
	)
	return nil
}
