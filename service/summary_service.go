package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"legaleagle-backend/metrics"
	"legaleagle-backend/models"

	"github.com/rs/zerolog"
)

// SystemInstruction is the fixed instruction sent with every summary request
const SystemInstruction = `You are a legal specialist tasked with summarizing legal judgments. Your summaries must include:
Key Facts: A concise summary of the relevant facts of the case.
Legal Issue(s): A clear statement of the legal question(s) the court addressed.
Judgment: A statement of the court's decision (e.g., affirmed, reversed, remanded).
Prevailing Party: Explicitly state which party (plaintiff or defendant) the judgment favored.
Damages/Remedies (if applicable): If monetary damages or other remedies (e.g., injunctions) were awarded, specify the amount of damages and to whom they were awarded. If no damages were awarded, state "No damages awarded."
Output your summaries in a clear and structured format, using headings for each of the above elements. For example:
Example Output Format:
Case Name: Smith v. Jones Key Facts: [Concise summary of facts] Legal Issue(s): [Statement of legal question(s)] Judgment: [Court's decision] Prevailing Party: [Plaintiff/Defendant] Damages/Remedies: $[Amount] awarded to [Plaintiff/Defendant] / No damages awarded
Further Instructions:
Focus on the core elements of the judgment relevant to the outcome and any awarded damages or remedies.
Avoid legal jargon unless absolutely necessary for clarity, and if used, provide a brief explanation.
Be objective and impartial in your summaries.
If the judgment is complex with multiple issues, prioritize the issues related to damages and the overall outcome.
If damages are not explicitly stated in the provided text, state "Damages not specified in provided text."
Analyse all the data individual cases in the data separately and create responses for each.`

// Generator produces the text response for a single-turn prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SummaryService sends assembled case text to the generation service and
// parses the JSON it returns
type SummaryService struct {
	generator Generator
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// SummaryServiceOption is a functional option for SummaryService
type SummaryServiceOption func(*SummaryService)

// SummaryWithGenerator sets the generator
func SummaryWithGenerator(generator Generator) SummaryServiceOption {
	return func(s *SummaryService) {
		s.generator = generator
	}
}

// SummaryWithLogger sets the logger
func SummaryWithLogger(logger zerolog.Logger) SummaryServiceOption {
	return func(s *SummaryService) {
		s.logger = logger
	}
}

// SummaryWithMetrics sets the metrics collector
func SummaryWithMetrics(m *metrics.Metrics) SummaryServiceOption {
	return func(s *SummaryService) {
		s.metrics = m
	}
}

// NewSummaryService creates a new summary service
func NewSummaryService(opts ...SummaryServiceOption) *SummaryService {
	s := &SummaryService{
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize invokes the generation service once and returns its JSON
// response as an untyped value. Transport failures are logged and returned;
// a response that is not valid JSON is ErrMalformedSummary.
func (s *SummaryService) Summarize(ctx context.Context, prompt string) (models.SummaryResult, error) {
	if s.generator == nil {
		return nil, errors.New("generator not set")
	}

	s.logger.Info().
		Int("prompt_length", len(prompt)).
		Msg("Accessing Gemini to analyse cases")

	start := time.Now()
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.metrics.RecordGeneration("error", time.Since(start))
		s.logger.Error().Err(err).Msg("Generation call failed")
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	var result any
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		s.metrics.RecordGeneration("malformed", time.Since(start))
		s.logger.Error().
			Err(err).
			Int("response_length", len(text)).
			Msg("Generation response is not valid JSON")
		return nil, fmt.Errorf("%w: %w", ErrMalformedSummary, err)
	}

	s.metrics.RecordGeneration("ok", time.Since(start))
	s.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("Generation call succeeded")

	return result, nil
}

// BuildCasePrompt assembles the user prompt from a question and the
// enriched records, one block per case in result order
func BuildCasePrompt(question string, records []models.CaseRecord) string {
	var builder strings.Builder

	if question = strings.TrimSpace(question); question != "" {
		builder.WriteString("Question: ")
		builder.WriteString(question)
		builder.WriteString("\n\n")
	}

	builder.WriteString("Summarize each of the following ")
	builder.WriteString(strconv.Itoa(len(records)))
	builder.WriteString(" cases separately.\n")

	for i, record := range records {
		builder.WriteString(fmt.Sprintf("\n--- Case %d ---\n", i+1))
		builder.WriteString(fmt.Sprintf("Case Name: %s\n", record.CaseName))
		builder.WriteString(fmt.Sprintf("Docket ID: %d\n", record.DocketID))
		builder.WriteString(fmt.Sprintf("URL: %s\n", record.AbsoluteURL))
		builder.WriteString(fmt.Sprintf("Document: %s\n", record.CaseDataURL))
		builder.WriteString("Text:\n")
		builder.WriteString(record.CaseText)
		builder.WriteString("\n")
	}

	return builder.String()
}
