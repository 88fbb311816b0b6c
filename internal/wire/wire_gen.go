// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/sevigo/review-warden/internal/app"
	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/jobs"
	"github.com/sevigo/review-warden/internal/llm"
	"github.com/sevigo/review-warden/internal/server"
)

// InitializeApp creates and wires all application dependencies. An empty
// configPath looks for config.yaml in the working directory.
func InitializeApp(ctx context.Context, configPath string) (*app.App, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerConfig := provideLoggerConfig(cfg)
	slogLogger := provideSlogLogger(loggerConfig)

	dbConn, dbCleanup, err := provideDatabase(cfg, slogLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store := provideStore(dbConn)

	generatorLLM, err := provideGeneratorLLM(ctx, cfg, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create generator LLM: %w", err)
	}

	vectorStore, err := provideVectorStore(ctx, cfg, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	retriever := provideRetriever(cfg, vectorStore, slogLogger)

	promptMgr, err := llm.NewPromptManager()
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create prompt manager: %w", err)
	}
	analyzer := provideAnalyzer(cfg, generatorLLM, promptMgr, slogLogger)

	reviewService := jobs.NewReviewService(cfg, analyzer, retriever, store, slogLogger)
	dispatcher := provideDispatcher(cfg, reviewService, slogLogger)

	deps := provideServerDeps(reviewService, dispatcher, store)
	srv := server.NewServer(ctx, cfg, deps, slogLogger)

	application := app.NewApp(cfg, store, vectorStore, reviewService, dispatcher, srv, slogLogger)

	cleanup := func() {
		dbCleanup()
	}
	return application, cleanup, nil
}
