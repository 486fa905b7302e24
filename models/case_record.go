package models

// SearchQuery represents the arguments of a case search
type SearchQuery struct {
	QueryString string `json:"querystring"`
	StartDate   string `json:"date"` // Passed through to filed_after unvalidated
}

// CaseRecord represents a single search hit enriched with its case text
type CaseRecord struct {
	AbsoluteURL string `json:"absolute_url"`
	CaseName    string `json:"caseName"`
	DocketID    int64  `json:"docket_id"`
	CaseDataURL string `json:"casedataurl"`
	CaseText    string `json:"caseData"`
}

// ResultSet holds the records accumulated across every page of a search
type ResultSet struct {
	Records []CaseRecord `json:"records"`

	// ReportedCount is the total the search service reported on its first page
	ReportedCount int `json:"reported_count"`
}

// Len returns the number of accumulated records
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// CaseNames returns the case names in result order
func (r *ResultSet) CaseNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.Records))
	for _, record := range r.Records {
		names = append(names, record.CaseName)
	}
	return names
}
