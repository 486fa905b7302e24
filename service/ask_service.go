package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"legaleagle-backend/metrics"
	"legaleagle-backend/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Summarizer turns an assembled prompt into a summary result
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (models.SummaryResult, error)
}

// AskService answers a question by letting the model call tools from the
// dispatch table and summarizing what they return
type AskService struct {
	planner    ToolPlanner
	functions  FunctionHandler
	summarizer Summarizer
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// AskServiceOption is a functional option for AskService
type AskServiceOption func(*AskService)

// AskWithPlanner sets the tool-calling planner
func AskWithPlanner(planner ToolPlanner) AskServiceOption {
	return func(s *AskService) {
		s.planner = planner
	}
}

// AskWithFunctions sets the dispatch table
func AskWithFunctions(functions FunctionHandler) AskServiceOption {
	return func(s *AskService) {
		s.functions = functions
	}
}

// AskWithSummarizer sets the summarizer
func AskWithSummarizer(summarizer Summarizer) AskServiceOption {
	return func(s *AskService) {
		s.summarizer = summarizer
	}
}

// AskWithLogger sets the logger
func AskWithLogger(logger zerolog.Logger) AskServiceOption {
	return func(s *AskService) {
		s.logger = logger
	}
}

// AskWithMetrics sets the metrics collector
func AskWithMetrics(m *metrics.Metrics) AskServiceOption {
	return func(s *AskService) {
		s.metrics = m
	}
}

// NewAskService creates a new ask service
func NewAskService(opts ...AskServiceOption) *AskService {
	s := &AskService{
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask runs one question through planning, tool dispatch and summarization.
// A search that yields no result is reported on the result, not as an error.
func (s *AskService) Ask(ctx context.Context, question string) (*models.AskResult, error) {
	if s.planner == nil {
		return nil, errors.New("planner not set")
	}
	if s.summarizer == nil {
		return nil, errors.New("summarizer not set")
	}

	result := &models.AskResult{RequestID: uuid.NewString()}
	logger := s.logger.With().Str("request_id", result.RequestID).Logger()

	call, answer, err := s.planner.Plan(ctx, question)
	if err != nil {
		logger.Error().Err(err).Msg("Planning call failed")
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	if call == nil {
		logger.Info().Msg("Model answered without calling a tool")
		result.Answer = answer
		return result, nil
	}

	result.ToolCalled = call.Name
	logger.Info().
		Str("tool", call.Name).
		Interface("args", call.Args).
		Msg("Dispatching tool call")

	output, err := s.functions.Dispatch(ctx, call.Name, call.Args)
	if errors.Is(err, ErrSearchUnavailable) {
		s.metrics.RecordToolDispatch(call.Name, "unavailable")
		logger.Warn().Err(err).Msg("Search returned no result")
		result.SearchUnavailable = true
		return result, nil
	}
	if err != nil {
		s.metrics.RecordToolDispatch(call.Name, "error")
		logger.Error().Err(err).Str("tool", call.Name).Msg("Tool dispatch failed")
		return nil, err
	}
	s.metrics.RecordToolDispatch(call.Name, "ok")

	prompt, err := s.buildPrompt(question, call, output, result)
	if err != nil {
		return nil, err
	}
	if prompt == "" {
		logger.Info().Msg("Search found no cases, skipping summary")
		return result, nil
	}

	summary, err := s.summarizer.Summarize(ctx, prompt)
	if err != nil {
		return nil, err
	}
	result.Summary = summary

	return result, nil
}

// buildPrompt embeds the tool output into the summary prompt. An empty
// prompt means there is nothing to summarize.
func (s *AskService) buildPrompt(question string, call *ToolCall, output any, result *models.AskResult) (string, error) {
	if set, ok := output.(*models.ResultSet); ok {
		if set == nil || set.Len() == 0 {
			return "", nil
		}
		if query, err := SearchQueryFromArgs(call.Args); err == nil {
			result.Query = &query
		}
		result.Records = set.Records
		return BuildCasePrompt(question, set.Records), nil
	}

	data, err := json.Marshal(output)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s output: %w", call.Name, err)
	}
	return fmt.Sprintf("Question: %s\n\nTool %s returned:\n%s\n", question, call.Name, data), nil
}
