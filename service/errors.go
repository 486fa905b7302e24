package service

import "errors"

var (
	ErrSearchUnavailable   = errors.New("case search returned no result")
	ErrPageFetchFailed     = errors.New("failed to fetch search result page")
	ErrMalformedResult     = errors.New("malformed search result")
	ErrDocumentFetchFailed = errors.New("failed to fetch case document")
	ErrGenerationFailed    = errors.New("failed to generate content")
	ErrMalformedSummary    = errors.New("generation response is not valid JSON")
	ErrUnknownTool         = errors.New("unknown tool")
	ErrInvalidToolArgs     = errors.New("invalid tool arguments")
)
