//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/sevigo/review-warden/internal/app"
	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/jobs"
	"github.com/sevigo/review-warden/internal/llm"
	"github.com/sevigo/review-warden/internal/server"
)

func InitializeApp(ctx context.Context, configPath string) (*app.App, func(), error) {
	wire.Build(
		config.LoadConfig,
		provideLoggerConfig,
		provideSlogLogger,
		provideDatabase,
		provideStore,
		provideGeneratorLLM,
		provideVectorStore,
		provideRetriever,
		llm.NewPromptManager,
		provideAnalyzer,
		jobs.NewReviewService,
		provideDispatcher,
		provideServerDeps,
		server.NewServer,
		app.NewApp,
	)
	return &app.App{}, nil, nil
}
