package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"legaleagle-backend/models"

	"github.com/rs/zerolog"
)

type fakePlanner struct {
	call   *ToolCall
	answer string
	err    error
}

func (p *fakePlanner) Plan(ctx context.Context, question string) (*ToolCall, string, error) {
	return p.call, p.answer, p.err
}

type fakeSummarizer struct {
	summary models.SummaryResult
	err     error
	prompts []string
}

func (s *fakeSummarizer) Summarize(ctx context.Context, prompt string) (models.SummaryResult, error) {
	s.prompts = append(s.prompts, prompt)
	return s.summary, s.err
}

func searchCall(args map[string]any) *ToolCall {
	return &ToolCall{Name: SearchCaseTool, Args: args}
}

func TestAskSearchesAndSummarizes(t *testing.T) {
	records := []models.CaseRecord{{CaseName: "Smith v. Jones", CaseText: "text"}}
	searcher := &fakeSearcher{result: &models.ResultSet{Records: records, ReportedCount: 1}}
	summarizer := &fakeSummarizer{summary: map[string]any{"ok": true}}

	svc := NewAskService(
		AskWithPlanner(&fakePlanner{call: searchCall(map[string]any{"querystring": "contract", "date": "2020-01-01"})}),
		AskWithFunctions(NewFunctionHandler(searcher)),
		AskWithSummarizer(summarizer),
	)

	result, err := svc.Ask(context.Background(), "who won contract cases?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if result.RequestID == "" {
		t.Error("missing request id")
	}
	if result.ToolCalled != SearchCaseTool {
		t.Errorf("ToolCalled = %q", result.ToolCalled)
	}
	if result.Query == nil || result.Query.QueryString != "contract" || result.Query.StartDate != "2020-01-01" {
		t.Errorf("Query = %+v", result.Query)
	}
	if len(result.Records) != 1 {
		t.Errorf("Records = %+v", result.Records)
	}
	if result.Summary == nil {
		t.Error("missing summary")
	}
	if len(summarizer.prompts) != 1 || !strings.Contains(summarizer.prompts[0], "Smith v. Jones") {
		t.Errorf("summary prompts = %v", summarizer.prompts)
	}
}

func TestAskDirectAnswer(t *testing.T) {
	summarizer := &fakeSummarizer{}
	svc := NewAskService(
		AskWithPlanner(&fakePlanner{answer: "Hello."}),
		AskWithFunctions(NewFunctionHandler(&fakeSearcher{})),
		AskWithSummarizer(summarizer),
	)

	result, err := svc.Ask(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if result.Answer != "Hello." || result.ToolCalled != "" {
		t.Errorf("result = %+v", result)
	}
	if len(summarizer.prompts) != 0 {
		t.Error("summarizer called for a direct answer")
	}
}

func TestAskSearchUnavailable(t *testing.T) {
	summarizer := &fakeSummarizer{}
	svc := NewAskService(
		AskWithPlanner(&fakePlanner{call: searchCall(map[string]any{"querystring": "x"})}),
		AskWithFunctions(NewFunctionHandler(&fakeSearcher{err: ErrSearchUnavailable})),
		AskWithSummarizer(summarizer),
	)

	result, err := svc.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !result.SearchUnavailable {
		t.Error("SearchUnavailable not set")
	}
	if len(summarizer.prompts) != 0 {
		t.Error("summarizer called without search results")
	}
}

func TestAskNoCasesSkipsSummary(t *testing.T) {
	summarizer := &fakeSummarizer{}
	svc := NewAskService(
		AskWithPlanner(&fakePlanner{call: searchCall(map[string]any{"querystring": "x"})}),
		AskWithFunctions(NewFunctionHandler(&fakeSearcher{result: &models.ResultSet{}})),
		AskWithSummarizer(summarizer),
	)

	result, err := svc.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if result.Summary != nil || len(summarizer.prompts) != 0 {
		t.Errorf("summary produced for empty result: %+v", result)
	}
}

func TestAskErrors(t *testing.T) {
	planErr := errors.New("model offline")

	tests := []struct {
		name       string
		planner    *fakePlanner
		searcher   *fakeSearcher
		summarizer *fakeSummarizer
		want       error
	}{
		{
			name:       "planner failure",
			planner:    &fakePlanner{err: planErr},
			searcher:   &fakeSearcher{},
			summarizer: &fakeSummarizer{},
			want:       ErrGenerationFailed,
		},
		{
			name:       "unknown tool",
			planner:    &fakePlanner{call: &ToolCall{Name: "lookup_statute"}},
			searcher:   &fakeSearcher{},
			summarizer: &fakeSummarizer{},
			want:       ErrUnknownTool,
		},
		{
			name:       "bad arguments",
			planner:    &fakePlanner{call: searchCall(map[string]any{})},
			searcher:   &fakeSearcher{},
			summarizer: &fakeSummarizer{},
			want:       ErrInvalidToolArgs,
		},
		{
			name:       "malformed search result",
			planner:    &fakePlanner{call: searchCall(map[string]any{"querystring": "x"})},
			searcher:   &fakeSearcher{err: ErrMalformedResult},
			summarizer: &fakeSummarizer{},
			want:       ErrMalformedResult,
		},
		{
			name:       "malformed summary",
			planner:    &fakePlanner{call: searchCall(map[string]any{"querystring": "x"})},
			searcher:   &fakeSearcher{result: &models.ResultSet{Records: []models.CaseRecord{{CaseName: "A"}}}},
			summarizer: &fakeSummarizer{err: ErrMalformedSummary},
			want:       ErrMalformedSummary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAskService(
				AskWithPlanner(tt.planner),
				AskWithFunctions(NewFunctionHandler(tt.searcher)),
				AskWithSummarizer(tt.summarizer),
			)
			_, err := svc.Ask(context.Background(), "q")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAskEmbedsOtherToolOutput(t *testing.T) {
	functions := NewFunctionHandler(&fakeSearcher{})
	functions["court_calendar"] = Tool{
		Call: func(ctx context.Context, args map[string]any) (any, error) {
			return map[string]string{"next_hearing": "2025-03-01"}, nil
		},
	}
	summarizer := &fakeSummarizer{summary: []any{}}

	svc := NewAskService(
		AskWithPlanner(&fakePlanner{call: &ToolCall{Name: "court_calendar"}}),
		AskWithFunctions(functions),
		AskWithSummarizer(summarizer),
	)

	if _, err := svc.Ask(context.Background(), "when is the hearing?"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(summarizer.prompts) != 1 || !strings.Contains(summarizer.prompts[0], `"next_hearing":"2025-03-01"`) {
		t.Errorf("prompt = %v", summarizer.prompts)
	}
}

func TestAskLogsDispatchFailure(t *testing.T) {
	var buf bytes.Buffer
	svc := NewAskService(
		AskWithPlanner(&fakePlanner{call: searchCall(map[string]any{"querystring": "x"})}),
		AskWithFunctions(NewFunctionHandler(&fakeSearcher{err: ErrDocumentFetchFailed})),
		AskWithSummarizer(&fakeSummarizer{}),
		AskWithLogger(zerolog.New(&buf)),
	)

	if _, err := svc.Ask(context.Background(), "q"); !errors.Is(err, ErrDocumentFetchFailed) {
		t.Fatalf("err = %v, want ErrDocumentFetchFailed", err)
	}

	logged := buf.String()
	if !strings.Contains(logged, "Tool dispatch failed") || !strings.Contains(logged, `"level":"error"`) || !strings.Contains(logged, `"request_id"`) {
		t.Errorf("dispatch failure not logged:\n%s", logged)
	}
}
