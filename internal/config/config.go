package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Elastic contains the Elasticsearch parameters shared by the analytics
// binaries.
type Elastic struct {
	Addr  string
	Index string
}

// API describes the HTTP service configuration.
type API struct {
	BindAddr    string
	FrontendURL string

	NewsAPIKey     string
	NewsAPIBaseURL string
	NewsTimeout    time.Duration

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LLMTimeout    time.Duration

	SummaryConcurrency int

	PrefsBackend string
	PrefsFile    string
	RedisAddr    string

	KafkaBrokers  []string
	ActivityTopic string
}

// EventSink holds configuration for the Kafka -> Elasticsearch sink.
type EventSink struct {
	Elastic
	KafkaBrokers  []string
	ActivityTopic string
	ConsumerGroup string
	SeenCapacity  int
	SeenTTL       time.Duration
	TermLimit     int
	TermMinLength int
}

// Retention configures the activity cleanup loop.
type Retention struct {
	Elastic
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

// LoadAPI builds the api config from environment variables. The two
// upstream API keys are required; everything else has a default.
func LoadAPI() (*API, error) {
	c := &API{
		BindAddr:    getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		FrontendURL: os.Getenv("FRONTEND_URL"),

		NewsAPIKey:     os.Getenv("NEWS_API_KEY"),
		NewsAPIBaseURL: os.Getenv("NEWS_API_BASE_URL"),
		NewsTimeout:    getDuration("NEWS_TIMEOUT", "10s"),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4"),
		LLMTimeout:    getDuration("LLM_TIMEOUT", "10s"),

		SummaryConcurrency: getInt("SUMMARY_CONCURRENCY", 4),

		PrefsBackend: strings.ToLower(getEnv("PREFS_BACKEND", "memory")),
		PrefsFile:    getEnv("PREFS_FILE", "user_preferences.json"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),

		KafkaBrokers:  splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		ActivityTopic: getEnv("ACTIVITY_TOPIC", "user_activity"),
	}

	if c.NewsAPIKey == "" {
		return nil, fmt.Errorf("NEWS_API_KEY is required")
	}
	if c.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.SummaryConcurrency <= 0 {
		return nil, fmt.Errorf("SUMMARY_CONCURRENCY must be positive")
	}

	switch c.PrefsBackend {
	case "memory", "file", "redis":
	default:
		return nil, fmt.Errorf("PREFS_BACKEND must be memory, file, or redis")
	}

	return c, nil
}

// LoadEventSink builds the sink config from environment variables.
func LoadEventSink() (*EventSink, error) {
	c := &EventSink{
		Elastic: Elastic{
			Addr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
			Index: getEnv("ELASTICSEARCH_INDEX", "activity"),
		},
		KafkaBrokers:  splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		ActivityTopic: getEnv("ACTIVITY_TOPIC", "user_activity"),
		ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "activity-sink"),
		SeenCapacity:  getInt("SINK_SEEN_CAPACITY", 20000),
		SeenTTL:       getDuration("SINK_SEEN_TTL", "24h"),
		TermLimit:     getInt("SINK_TERM_LIMIT", 8),
		TermMinLength: getInt("SINK_TERM_MIN_LEN", 3),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.SeenCapacity <= 0 {
		return nil, fmt.Errorf("SINK_SEEN_CAPACITY must be positive")
	}
	if c.TermLimit <= 0 {
		return nil, fmt.Errorf("SINK_TERM_LIMIT must be positive")
	}
	if c.TermMinLength < 0 {
		return nil, fmt.Errorf("SINK_TERM_MIN_LEN cannot be negative")
	}

	return c, nil
}

// LoadRetention builds the cleanup config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Elastic: Elastic{
			Addr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
			Index: getEnv("ELASTICSEARCH_INDEX", "activity"),
		},
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "720h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}
	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
