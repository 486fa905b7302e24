package handlers

import (
	"context"
	"errors"
	"net/http"

	"legaleagle-backend/models"
	"legaleagle-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CaseSearcher runs the search-and-enrich pipeline
type CaseSearcher interface {
	Search(ctx context.Context, query models.SearchQuery) (*models.ResultSet, error)
}

// CaseSummarizer summarizes assembled case text
type CaseSummarizer interface {
	Summarize(ctx context.Context, prompt string) (models.SummaryResult, error)
}

// QuestionAnswerer answers a question end to end
type QuestionAnswerer interface {
	Ask(ctx context.Context, question string) (*models.AskResult, error)
}

// CaseHandler handles HTTP requests for case search and summaries
type CaseHandler struct {
	searcher   CaseSearcher
	summarizer CaseSummarizer
	answerer   QuestionAnswerer
	logger     zerolog.Logger
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(searcher CaseSearcher, summarizer CaseSummarizer, answerer QuestionAnswerer, logger zerolog.Logger) *CaseHandler {
	return &CaseHandler{
		searcher:   searcher,
		summarizer: summarizer,
		answerer:   answerer,
		logger:     logger,
	}
}

// SearchCasesRequest represents the request body for a case search
type SearchCasesRequest struct {
	QueryString string `json:"querystring" binding:"required"`
	Date        string `json:"date"`
}

// SearchCases handles POST /api/cases/search
func (h *CaseHandler) SearchCases(c *gin.Context) {
	var req SearchCasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	requestID := uuid.NewString()
	h.logger.Info().
		Str("request_id", requestID).
		Str("querystring", req.QueryString).
		Str("date", req.Date).
		Msg("Case search requested")

	result, err := h.searcher.Search(c.Request.Context(), models.SearchQuery{
		QueryString: req.QueryString,
		StartDate:   req.Date,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("request_id", requestID).Msg("Case search failed")
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"request_id": requestID,
		"data":       result,
	})
}

// SummarizeRequest represents the request body for a summary
type SummarizeRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Summarize handles POST /api/cases/summarize
func (h *CaseHandler) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	summary, err := h.summarizer.Summarize(c.Request.Context(), req.Prompt)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}

// AskRequest represents the request body for a question
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask handles POST /api/ask
func (h *CaseHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.answerer.Ask(c.Request.Context(), req.Question)
	if err != nil {
		h.logger.Error().Err(err).Msg("Question failed")
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// respondServiceError maps service errors to the JSON error envelope
func (h *CaseHandler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSearchUnavailable):
		respondError(c, http.StatusBadGateway, "SEARCH_UNAVAILABLE", err.Error())
	case errors.Is(err, service.ErrMalformedResult):
		respondError(c, http.StatusBadGateway, "MALFORMED_SEARCH_RESULT", err.Error())
	case errors.Is(err, service.ErrPageFetchFailed):
		respondError(c, http.StatusBadGateway, "PAGE_FETCH_FAILED", err.Error())
	case errors.Is(err, service.ErrDocumentFetchFailed):
		respondError(c, http.StatusBadGateway, "DOCUMENT_FETCH_FAILED", err.Error())
	case errors.Is(err, service.ErrMalformedSummary):
		respondError(c, http.StatusBadGateway, "MALFORMED_SUMMARY", err.Error())
	case errors.Is(err, service.ErrGenerationFailed):
		respondError(c, http.StatusBadGateway, "GENERATION_FAILED", err.Error())
	case errors.Is(err, service.ErrUnknownTool), errors.Is(err, service.ErrInvalidToolArgs):
		respondError(c, http.StatusBadGateway, "INVALID_TOOL_CALL", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "TIMEOUT", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
