package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ichor-news/backend/internal/activity"
	"github.com/ichor-news/backend/internal/config"
	"github.com/ichor-news/backend/internal/httpapi"
	"github.com/ichor-news/backend/internal/llm"
	"github.com/ichor-news/backend/internal/logger"
	"github.com/ichor-news/backend/internal/news"
	"github.com/ichor-news/backend/internal/newsapi"
	"github.com/ichor-news/backend/internal/petrichor"
	"github.com/ichor-news/backend/internal/prefs"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error("init preference store", slog.Any("err", err))
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}
	log.Info("preference store ready", slog.String("backend", cfg.PrefsBackend))

	events := activity.NewPublisher(cfg.KafkaBrokers, cfg.ActivityTopic, log)
	if events != nil {
		defer events.Close()
		log.Info("activity events enabled", slog.String("topic", cfg.ActivityTopic))
	}

	model := llm.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	agent := petrichor.New(model, store, log, cfg.LLMTimeout)

	source := newsapi.New(cfg.NewsAPIKey, cfg.NewsAPIBaseURL, cfg.NewsTimeout)
	feed := news.NewService(source, agent, log, cfg.SummaryConcurrency)

	allowedOrigins := []string{"http://localhost:3000"}
	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	srv := httpapi.New(log, feed, agent, store, events)
	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.Routes(allowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

func buildStore(ctx context.Context, cfg *config.API) (prefs.Store, func(), error) {
	switch cfg.PrefsBackend {
	case "file":
		store, err := prefs.NewFile(cfg.PrefsFile)
		return store, nil, err
	case "redis":
		store, err := prefs.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return prefs.NewMemory(), nil, nil
	}
}
