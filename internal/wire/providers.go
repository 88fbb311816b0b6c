package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/goframe/embeddings"
	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/db"
	"github.com/sevigo/review-warden/internal/jobs"
	"github.com/sevigo/review-warden/internal/llm"
	"github.com/sevigo/review-warden/internal/logger"
	"github.com/sevigo/review-warden/internal/server"
	"github.com/sevigo/review-warden/internal/standards"
	"github.com/sevigo/review-warden/internal/storage"
	"github.com/sevigo/review-warden/internal/util"
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
}

func provideSlogLogger(loggerConfig logger.Config) *slog.Logger {
	return logger.NewLogger(loggerConfig, nil)
}

// provideDatabase returns a nil pool when persistence is disabled.
func provideDatabase(cfg *config.Config, logger *slog.Logger) (*db.DB, func(), error) {
	if !cfg.Database.Enabled {
		return nil, func() {}, nil
	}
	return db.NewDatabase(&cfg.Database, logger)
}

func provideStore(conn *db.DB) storage.Store {
	if conn == nil {
		return storage.NopStore{}
	}
	return storage.NewStore(conn.DB)
}

func provideGeneratorLLM(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llms.Model, error) {
	switch cfg.AI.LLMProvider {
	case "gemini":
		if cfg.AI.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		return gemini.New(ctx, gemini.WithModel(cfg.AI.GeneratorModel), gemini.WithAPIKey(cfg.AI.GeminiAPIKey))
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.AI.OllamaHost),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithModel(cfg.AI.GeneratorModel),
			ollama.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.AI.LLMProvider)
	}
}

// provideEmbedder follows the generator provider: Gemini deployments embed
// with Gemini, everything else with Ollama.
func provideEmbedder(ctx context.Context, cfg *config.Config, logger *slog.Logger) (embeddings.Embedder, error) {
	var (
		embedderLLM embeddings.Embedder
		err         error
	)
	switch cfg.AI.LLMProvider {
	case "gemini":
		embedderLLM, err = gemini.New(ctx,
			gemini.WithEmbeddingModel(cfg.AI.EmbedderModel),
			gemini.WithAPIKey(cfg.AI.GeminiAPIKey),
		)
	default:
		embedderLLM, err = ollama.New(
			ollama.WithServerURL(cfg.AI.OllamaHost),
			ollama.WithModel(cfg.AI.EmbedderModel),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithLogger(logger),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder LLM: %w", err)
	}
	return embeddings.NewEmbedder(embedderLLM)
}

// provideVectorStore returns nil when coding standards are disabled.
func provideVectorStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.VectorStore, error) {
	if !cfg.Standards.Enabled {
		return nil, nil
	}
	embedder, err := provideEmbedder(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return storage.NewQdrantVectorStore(cfg.Standards.QdrantHost, embedder, logger), nil
}

func provideRetriever(cfg *config.Config, store storage.VectorStore, logger *slog.Logger) standards.Retriever {
	if store == nil {
		return standards.NopRetriever{}
	}
	return standards.NewRetriever(store, standards.Options{
		Collection: util.CollectionName(cfg.Standards.Collection, cfg.AI.EmbedderModel),
		TopK:       cfg.Standards.TopK,
		MaxChars:   cfg.Standards.MaxChars,
	}, logger)
}

func provideAnalyzer(cfg *config.Config, model llms.Model, prompts *llm.PromptManager, logger *slog.Logger) llm.Analyzer {
	return llm.NewAnalyzer(model, prompts, llm.ModelProvider(cfg.AI.LLMProvider), logger)
}

// provideDispatcher returns nil when no GitHub App is configured; webhook
// reviews are then unavailable.
func provideDispatcher(cfg *config.Config, service *jobs.ReviewService, logger *slog.Logger) *jobs.Dispatcher {
	if !cfg.GitHub.AppEnabled() {
		return nil
	}
	return jobs.NewDispatcher(jobs.NewReviewJob(cfg, service, logger), cfg, logger)
}

func provideServerDeps(service *jobs.ReviewService, dispatcher *jobs.Dispatcher, store storage.Store) server.Deps {
	deps := server.Deps{Reviewer: service, Store: store}
	if dispatcher != nil {
		deps.Dispatcher = dispatcher
	}
	return deps
}

func newOllamaHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxConnsPerHost:     10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: 15 * time.Minute,
	}
}
