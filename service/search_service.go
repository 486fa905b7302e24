package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"legaleagle-backend/documents"
	"legaleagle-backend/metrics"
	"legaleagle-backend/models"

	"github.com/rs/zerolog"
)

// TextSource selects where a record's case text is read from
type TextSource string

const (
	// TextSourcePage fetches the opinion page at the record's absolute URL
	TextSourcePage TextSource = "page"
	// TextSourceStorage reads the first opinion's stored document path
	TextSourceStorage TextSource = "storage"
)

// CaseSearchService searches the case-law API and enriches every hit with its text
type CaseSearchService struct {
	httpClient    *http.Client
	fetcher       documents.Fetcher
	baseURL       string
	searchPath    string
	authorization string
	textSource    TextSource
	logger        zerolog.Logger
	metrics       *metrics.Metrics
}

// CaseSearchServiceOption is a functional option for CaseSearchService
type CaseSearchServiceOption func(*CaseSearchService)

// SearchWithHTTPClient sets the HTTP client used for search requests
func SearchWithHTTPClient(client *http.Client) CaseSearchServiceOption {
	return func(s *CaseSearchService) {
		s.httpClient = client
	}
}

// SearchWithFetcher sets the document fetcher used for enrichment
func SearchWithFetcher(fetcher documents.Fetcher) CaseSearchServiceOption {
	return func(s *CaseSearchService) {
		s.fetcher = fetcher
	}
}

// SearchWithBaseURL sets the search service base URL
func SearchWithBaseURL(baseURL string) CaseSearchServiceOption {
	return func(s *CaseSearchService) {
		s.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// SearchWithSearchPath sets the search endpoint path
func SearchWithSearchPath(path string) CaseSearchServiceOption {
	return func(s *CaseSearchService) {
		s.searchPath = path
	}
}

// SearchWithAuthorization sets the Authorization header value
func SearchWithAuthorization(value string) CaseSearchServiceOption {
	return func(s *CaseSearchService) {
		s.authorization = value
	}
}

// SearchWithTextSource sets where case text is read from
func SearchWithTextSource(source TextSource) CaseSearchServiceOption {
	return func(s *CaseSearchService) {
		s.textSource = source
	}
}

// SearchWithLogger sets the logger
func SearchWithLogger(logger zerolog.Logger) CaseSearchServiceOption {
	return func(s *CaseSearchService) {
		s.logger = logger
	}
}

// SearchWithMetrics sets the metrics collector
func SearchWithMetrics(m *metrics.Metrics) CaseSearchServiceOption {
	return func(s *CaseSearchService) {
		s.metrics = m
	}
}

// NewCaseSearchService creates a new case search service
func NewCaseSearchService(opts ...CaseSearchServiceOption) *CaseSearchService {
	s := &CaseSearchService{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    "https://www.courtlistener.com",
		searchPath: "/api/rest/v4/search/",
		textSource: TextSourcePage,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthorizationHeader formats a search service key for the Authorization header.
// Values already carrying a scheme are returned unchanged.
func AuthorizationHeader(scheme, token string) string {
	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, " ") || scheme == "" {
		return token
	}
	return scheme + " " + token
}

// searchResponse is one page of the search API response
type searchResponse struct {
	Count   json.RawMessage `json:"count"`
	Next    *string         `json:"next"`
	Results []searchResult  `json:"results"`
}

// searchResult is a single hit as returned by the search API
type searchResult struct {
	AbsoluteURL *string   `json:"absolute_url"`
	CaseName    *string   `json:"caseName"`
	DocketID    *int64    `json:"docket_id"`
	Opinions    []opinion `json:"opinions"`
}

type opinion struct {
	LocalPath *string `json:"local_path"`
}

// Search runs the query, follows every next-page link and returns the
// enriched records in service order. A non-success status on the first
// request yields ErrSearchUnavailable and no result.
func (s *CaseSearchService) Search(ctx context.Context, query models.SearchQuery) (*models.ResultSet, error) {
	if s.fetcher == nil {
		return nil, errors.New("document fetcher not set")
	}

	searchURL, err := s.BuildSearchURL(query)
	if err != nil {
		return nil, err
	}

	page, status, err := s.fetchPage(ctx, searchURL)
	if err != nil {
		s.metrics.RecordSearch("error")
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if status != http.StatusOK {
		s.logger.Warn().
			Int("status", status).
			Str("query", query.QueryString).
			Msg("Case search rejected")
		s.metrics.RecordSearch("unavailable")
		return nil, fmt.Errorf("%w: HTTP %d", ErrSearchUnavailable, status)
	}

	reported, counted := parseCount(page.Count)
	result := &models.ResultSet{
		Records:       make([]models.CaseRecord, 0, len(page.Results)),
		ReportedCount: reported,
	}

	pageNumber := 1
	for {
		s.metrics.RecordPage()

		for i, entry := range page.Results {
			record, storedPath, err := s.buildRecord(entry)
			if err != nil {
				s.metrics.RecordSearch("malformed")
				return nil, fmt.Errorf("%w: page %d result %d: %w", ErrMalformedResult, pageNumber, i, err)
			}

			record.CaseText, err = s.fetchCaseText(ctx, record, storedPath)
			if err != nil {
				s.metrics.RecordSearch("error")
				return nil, err
			}

			result.Records = append(result.Records, record)
			s.metrics.RecordEnriched()
		}

		if page.Next == nil || *page.Next == "" {
			break
		}

		nextURL := *page.Next
		page, status, err = s.fetchPage(ctx, nextURL)
		if err != nil {
			s.metrics.RecordSearch("error")
			return nil, fmt.Errorf("%w: %s: %w", ErrPageFetchFailed, nextURL, err)
		}
		if status != http.StatusOK {
			s.metrics.RecordSearch("error")
			return nil, fmt.Errorf("%w: %s: HTTP %d", ErrPageFetchFailed, nextURL, status)
		}
		pageNumber++
	}

	level := zerolog.InfoLevel
	if (counted && result.ReportedCount != result.Len()) || (!counted && result.Len() > 0) {
		level = zerolog.WarnLevel
	}
	s.logger.WithLevel(level).
		Bool("count_present", counted).
		Int("reported", result.ReportedCount).
		Int("accumulated", result.Len()).
		Int("pages", pageNumber).
		Msg("Records found in the data")

	// Case text stays out of the logs
	s.logger.Debug().
		Strs("cases", result.CaseNames()).
		Msg("Search results")

	s.metrics.RecordSearch("ok")
	return result, nil
}

// BuildSearchURL builds the first-page search URL for a query
func (s *CaseSearchService) BuildSearchURL(query models.SearchQuery) (string, error) {
	endpoint, err := url.Parse(s.baseURL + s.searchPath)
	if err != nil {
		return "", fmt.Errorf("invalid search endpoint: %w", err)
	}

	params := url.Values{}
	params.Set("q", query.QueryString)
	params.Set("type", "o")
	params.Set("order_by", "score desc")
	params.Set("stat_Published", "on")
	params.Set("filed_after", query.StartDate)
	endpoint.RawQuery = params.Encode()

	return endpoint.String(), nil
}

// fetchPage retrieves and decodes one result page. A non-200 status is
// returned without decoding the body.
func (s *CaseSearchService) fetchPage(ctx context.Context, pageURL string) (*searchResponse, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if s.authorization != "" && s.sameHost(req.URL) {
		req.Header.Set("Authorization", s.authorization)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}

	return &page, resp.StatusCode, nil
}

// sameHost reports whether a URL points at the configured search service
func (s *CaseSearchService) sameHost(u *url.URL) bool {
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(base.Host, u.Host)
}

// buildRecord derives a CaseRecord from a search hit. Every field the
// record needs must be present; nothing is defaulted.
func (s *CaseSearchService) buildRecord(entry searchResult) (models.CaseRecord, string, error) {
	if entry.AbsoluteURL == nil || *entry.AbsoluteURL == "" {
		return models.CaseRecord{}, "", errors.New("missing absolute_url")
	}
	if entry.CaseName == nil {
		return models.CaseRecord{}, "", errors.New("missing caseName")
	}
	if entry.DocketID == nil {
		return models.CaseRecord{}, "", errors.New("missing docket_id")
	}
	if len(entry.Opinions) == 0 {
		return models.CaseRecord{}, "", errors.New("missing opinions")
	}
	if entry.Opinions[0].LocalPath == nil || *entry.Opinions[0].LocalPath == "" {
		return models.CaseRecord{}, "", errors.New("missing opinions[0].local_path")
	}

	storedPath := *entry.Opinions[0].LocalPath

	return models.CaseRecord{
		AbsoluteURL: s.baseURL + *entry.AbsoluteURL,
		CaseName:    *entry.CaseName,
		DocketID:    *entry.DocketID,
		CaseDataURL: s.baseURL + "/" + strings.TrimPrefix(storedPath, "/"),
	}, storedPath, nil
}

func (s *CaseSearchService) fetchCaseText(ctx context.Context, record models.CaseRecord, storedPath string) (string, error) {
	target := record.AbsoluteURL
	if s.textSource == TextSourceStorage {
		target = storedPath
	}

	text, err := s.fetcher.FetchText(ctx, target)
	if err != nil {
		s.metrics.RecordDocumentFetch("error")
		s.logger.Error().
			Err(err).
			Str("case", record.CaseName).
			Str("target", target).
			Msg("Failed to fetch case text")
		return "", fmt.Errorf("%w: %s: %w", ErrDocumentFetchFailed, target, err)
	}

	s.metrics.RecordDocumentFetch("ok")
	return text, nil
}

// parseCount reads the reported total, which is absent or non-numeric on
// some endpoints. ok is false when no numeric count was present.
func parseCount(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
