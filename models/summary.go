package models

// SummaryResult is the JSON value returned by the generation service.
// Its shape follows the headings requested by the system instruction
// (Case Name, Key Facts, Legal Issue(s), Judgment, Prevailing Party,
// Damages/Remedies) but is not validated.
type SummaryResult any

// AskResult represents the outcome of answering a question end to end
type AskResult struct {
	RequestID         string        `json:"request_id"`
	ToolCalled        string        `json:"tool_called,omitempty"`
	Query             *SearchQuery  `json:"query,omitempty"`
	Records           []CaseRecord  `json:"records,omitempty"`
	SearchUnavailable bool          `json:"search_unavailable,omitempty"`
	Answer            string        `json:"answer,omitempty"`
	Summary           SummaryResult `json:"summary,omitempty"`
}
