// Package app wires configuration, clients and services into a runnable application
package app

import (
	"context"
	"fmt"
	"net/http"

	"legaleagle-backend/config"
	"legaleagle-backend/documents"
	"legaleagle-backend/logging"
	"legaleagle-backend/metrics"
	"legaleagle-backend/secrets"
	"legaleagle-backend/service"
	"legaleagle-backend/storage"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// App holds the process-wide clients and services, built once at startup
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	Search    *service.CaseSearchService
	Summary   *service.SummaryService
	Ask       *service.AskService
	Functions service.FunctionHandler

	closers []func() error
}

// New builds the application from configuration
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewMetrics(),
	}

	token, err := a.resolveSearchToken(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	authorization := service.AuthorizationHeader(cfg.CourtListener.AuthScheme, token)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	fetcher, textSource, err := a.buildFetcher(httpClient, authorization)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Search = service.NewCaseSearchService(
		service.SearchWithHTTPClient(httpClient),
		service.SearchWithFetcher(fetcher),
		service.SearchWithBaseURL(cfg.CourtListener.BaseURL),
		service.SearchWithSearchPath(cfg.CourtListener.SearchPath),
		service.SearchWithAuthorization(authorization),
		service.SearchWithTextSource(textSource),
		service.SearchWithLogger(logging.Component(logger, "search")),
		service.SearchWithMetrics(a.Metrics),
	)
	a.Functions = service.NewFunctionHandler(a.Search)

	geminiClient, err := initGemini(ctx, cfg.Gemini.APIKey, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, geminiClient.Close)

	genCfg := GenerationConfig(cfg)
	generator := service.NewRetryGenerator(
		service.NewGeminiGenerator(geminiClient, genCfg),
		cfg.Gemini.MaxRetries,
		cfg.Gemini.InitialBackoff,
		logging.Component(logger, "retry"),
	)

	a.Summary = service.NewSummaryService(
		service.SummaryWithGenerator(generator),
		service.SummaryWithLogger(logging.Component(logger, "summary")),
		service.SummaryWithMetrics(a.Metrics),
	)

	plannerCfg := genCfg
	plannerCfg.SystemInstruction = service.PlannerInstruction
	a.Ask = service.NewAskService(
		service.AskWithPlanner(service.NewGeminiPlanner(geminiClient, plannerCfg, a.Functions.Declarations()...)),
		service.AskWithFunctions(a.Functions),
		service.AskWithSummarizer(a.Summary),
		service.AskWithLogger(logging.Component(logger, "ask")),
		service.AskWithMetrics(a.Metrics),
	)

	return a, nil
}

// GenerationConfig derives the summary model configuration
func GenerationConfig(cfg *config.Config) service.GenerationConfig {
	genCfg := service.DefaultGenerationConfig()
	genCfg.Model = cfg.Gemini.Model
	genCfg.Temperature = cfg.Gemini.Temperature
	genCfg.TopP = cfg.Gemini.TopP
	genCfg.MaxOutputTokens = cfg.Gemini.MaxOutputTokens
	if cfg.Gemini.SystemInstruction != "" {
		genCfg.SystemInstruction = cfg.Gemini.SystemInstruction
	}
	return genCfg
}

// Close releases clients opened by New
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close client")
		}
	}
	a.closers = nil
}

// resolveSearchToken returns the search service key, preferring an explicit
// token and otherwise reading the named secret once
func (a *App) resolveSearchToken(ctx context.Context) (string, error) {
	cfg := a.Config

	var provider secrets.Provider
	switch {
	case cfg.CourtListener.Token != "":
		provider = secrets.StaticProvider{cfg.CourtListener.SecretName: cfg.CourtListener.Token}
	case cfg.SecretProvider == config.SecretProviderGCP:
		projectID, err := secrets.ResolveProjectID(ctx, cfg.ProjectID)
		if err != nil {
			return "", err
		}
		sm, err := secrets.NewSecretManagerProvider(ctx, projectID)
		if err != nil {
			return "", err
		}
		a.closers = append(a.closers, sm.Close)
		provider = sm
		a.Logger.Info().Str("project_id", projectID).Msg("Using Secret Manager")
	default:
		provider = secrets.NewEnvProvider("")
	}

	token, err := provider.AccessSecret(ctx, cfg.CourtListener.SecretName)
	if err != nil {
		return "", fmt.Errorf("failed to read search service key: %w", err)
	}
	return token, nil
}

// buildFetcher selects the document fetcher for the configured text source
func (a *App) buildFetcher(httpClient *http.Client, authorization string) (documents.Fetcher, service.TextSource, error) {
	if a.Config.DocumentSource == config.DocumentSourceStorage {
		store, err := storage.NewStorage(a.Config.Storage)
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize storage: %w", err)
		}
		a.Logger.Info().Str("type", string(a.Config.Storage.Type)).Msg("Storage initialized")
		return documents.NewStorageFetcher(store, a.Config.DocumentMaxSizeMB), service.TextSourceStorage, nil
	}

	fetcher := documents.NewHTTPFetcher(
		documents.WithHTTPClient(httpClient),
		documents.WithAuthorization(authorization),
		documents.WithMaxSizeMB(a.Config.DocumentMaxSizeMB),
		documents.WithLogger(logging.Component(a.Logger, "documents")),
	)
	return fetcher, service.TextSourcePage, nil
}

func initGemini(ctx context.Context, apiKey string, logger zerolog.Logger) (*genai.Client, error) {
	if apiKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini: %w", err)
	}

	logger.Info().Msg("Gemini client initialized")
	return client, nil
}
