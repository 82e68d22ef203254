// Package activity carries the product-activity event pipeline: the api
// service publishes one event per user action to Kafka, the eventsink
// indexes them into Elasticsearch for analytics.
package activity

import "time"

// Event types emitted by the api service.
const (
	TypeQuizSubmitted   = "quiz_submitted"
	TypeNewsCurated     = "news_curated"
	TypeNewsPersonal    = "news_personalized"
	TypeNewsSearched    = "news_searched"
	TypeArticleExpanded = "article_expanded"
	TypeChatMessage     = "chat_message"
	TypeBiasExplained   = "bias_explained"
)

// Event is the wire format on the Kafka topic.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	User      string    `json:"user"`
	Subject   string    `json:"subject,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is the shape stored in the activity index: the event plus
// normalized subject terms for aggregation queries.
type Document struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	User      string    `json:"user"`
	Subject   string    `json:"subject,omitempty"`
	Terms     []string  `json:"terms,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
