package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

const jsonContentType = "application/json"

// PlannerInstruction is the system instruction for the tool-calling model
const PlannerInstruction = `You are a legal research assistant. When the user asks about court cases, judgments or legal precedent, call the search_case tool with a concise search string and, when the user gives one, a start date (YYYY-MM-DD). Otherwise answer directly.`

// GenerationConfig holds the fixed decoding parameters of the summary model
type GenerationConfig struct {
	Model             string
	Temperature       float32
	TopP              float32
	MaxOutputTokens   int32
	SystemInstruction string
}

// DefaultGenerationConfig returns the deterministic summary configuration
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Model:             "gemini-2.0-flash-exp",
		Temperature:       1,
		TopP:              0.95,
		MaxOutputTokens:   8192,
		SystemInstruction: SystemInstruction,
	}
}

// unrestrictedSafetySettings turns off blocking for every harm category
func unrestrictedSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHateSpeech,
		genai.HarmCategoryDangerousContent,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryHarassment,
	}

	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockNone,
		})
	}
	return settings
}

// configureModel applies decoding parameters, safety overrides and the
// system instruction to a model
func configureModel(model *genai.GenerativeModel, cfg GenerationConfig) {
	model.SetTemperature(cfg.Temperature)
	model.SetTopP(cfg.TopP)
	model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	model.SafetySettings = unrestrictedSafetySettings()

	if cfg.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(cfg.SystemInstruction)},
		}
	}
}

// configureSummaryModel sets up a model for JSON summaries
func configureSummaryModel(model *genai.GenerativeModel, cfg GenerationConfig) {
	configureModel(model, cfg)
	model.ResponseMIMEType = jsonContentType
}

// GeminiGenerator implements Generator with a Gemini model in JSON mode
type GeminiGenerator struct {
	model *genai.GenerativeModel
}

// NewGeminiGenerator creates a generator for the summary model
func NewGeminiGenerator(client *genai.Client, cfg GenerationConfig) *GeminiGenerator {
	model := client.GenerativeModel(cfg.Model)
	configureSummaryModel(model, cfg)
	return &GeminiGenerator{model: model}
}

// Generate sends the prompt as a single user turn and returns the response text
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	text, _, err := readResponse(resp)
	if err != nil {
		return "", err
	}
	return text, nil
}

// ToolCall is a function call requested by the model
type ToolCall struct {
	Name string
	Args map[string]any
}

// ToolPlanner asks the model whether a question needs a tool call
type ToolPlanner interface {
	// Plan returns the requested tool call, or nil and the model's direct answer
	Plan(ctx context.Context, question string) (*ToolCall, string, error)
}

// GeminiPlanner implements ToolPlanner with a Gemini model carrying function declarations
type GeminiPlanner struct {
	model *genai.GenerativeModel
}

// NewGeminiPlanner creates a planner that may call the declared functions
func NewGeminiPlanner(client *genai.Client, cfg GenerationConfig, decls ...*genai.FunctionDeclaration) *GeminiPlanner {
	model := client.GenerativeModel(cfg.Model)
	configurePlannerModel(model, cfg, decls)
	return &GeminiPlanner{model: model}
}

// configurePlannerModel sets up a model for function calling. JSON mode is
// left off because it cannot be combined with tools.
func configurePlannerModel(model *genai.GenerativeModel, cfg GenerationConfig, decls []*genai.FunctionDeclaration) {
	configureModel(model, cfg)
	if len(decls) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
}

// Plan sends the question and returns the first function call, if any
func (p *GeminiPlanner) Plan(ctx context.Context, question string) (*ToolCall, string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(question))
	if err != nil {
		return nil, "", err
	}

	text, call, err := readResponse(resp)
	if err != nil {
		return nil, "", err
	}
	return call, text, nil
}

// readResponse concatenates the text parts of the first candidate and
// returns its first function call
func readResponse(resp *genai.GenerateContentResponse) (string, *ToolCall, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", nil, errors.New("API returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", nil, fmt.Errorf("API candidate has no parts (finish reason: %s)", candidate.FinishReason)
	}

	var text strings.Builder
	var call *ToolCall
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			if call == nil {
				call = &ToolCall{Name: p.Name, Args: p.Args}
			}
		}
	}

	return text.String(), call, nil
}
