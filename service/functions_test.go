package service

import (
	"context"
	"errors"
	"testing"

	"legaleagle-backend/models"

	"github.com/google/generative-ai-go/genai"
)

type fakeSearcher struct {
	result  *models.ResultSet
	err     error
	queries []models.SearchQuery
}

func (s *fakeSearcher) Search(ctx context.Context, query models.SearchQuery) (*models.ResultSet, error) {
	s.queries = append(s.queries, query)
	return s.result, s.err
}

func TestSearchCaseDeclaration(t *testing.T) {
	decl := SearchCaseDeclaration
	if decl.Name != "search_case" {
		t.Errorf("Name = %q", decl.Name)
	}
	if decl.Parameters.Type != genai.TypeObject {
		t.Errorf("Parameters.Type = %v", decl.Parameters.Type)
	}
	for _, key := range []string{ParamQueryString, ParamDate} {
		prop, ok := decl.Parameters.Properties[key]
		if !ok || prop.Type != genai.TypeString {
			t.Errorf("property %s = %+v", key, prop)
		}
	}
	if len(decl.Parameters.Required) != 1 || decl.Parameters.Required[0] != ParamQueryString {
		t.Errorf("Required = %v", decl.Parameters.Required)
	}
}

func TestDispatchSearchCase(t *testing.T) {
	want := &models.ResultSet{Records: []models.CaseRecord{{CaseName: "A"}}}
	searcher := &fakeSearcher{result: want}
	handler := NewFunctionHandler(searcher)

	out, err := handler.Dispatch(context.Background(), SearchCaseTool, map[string]any{
		"querystring": "negligence",
		"date":        "2019-05-01",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if out.(*models.ResultSet) != want {
		t.Errorf("Dispatch returned %#v", out)
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("searcher called %d times", len(searcher.queries))
	}
	if q := searcher.queries[0]; q.QueryString != "negligence" || q.StartDate != "2019-05-01" {
		t.Errorf("query = %+v", q)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	handler := NewFunctionHandler(&fakeSearcher{})
	_, err := handler.Dispatch(context.Background(), "delete_everything", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("err = %v, want ErrUnknownTool", err)
	}
}

func TestDispatchPropagatesSearchError(t *testing.T) {
	handler := NewFunctionHandler(&fakeSearcher{err: ErrSearchUnavailable})
	_, err := handler.Dispatch(context.Background(), SearchCaseTool, map[string]any{"querystring": "x"})
	if !errors.Is(err, ErrSearchUnavailable) {
		t.Fatalf("err = %v, want ErrSearchUnavailable", err)
	}
}

func TestSearchQueryFromArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		want    models.SearchQuery
		wantErr bool
	}{
		{"query and date", map[string]any{"querystring": "fraud", "date": "2020-01-01"}, models.SearchQuery{QueryString: "fraud", StartDate: "2020-01-01"}, false},
		{"query only", map[string]any{"querystring": "fraud"}, models.SearchQuery{QueryString: "fraud"}, false},
		{"null date", map[string]any{"querystring": "fraud", "date": nil}, models.SearchQuery{QueryString: "fraud"}, false},
		{"date passed through", map[string]any{"querystring": "fraud", "date": "last year"}, models.SearchQuery{QueryString: "fraud", StartDate: "last year"}, false},
		{"missing query", map[string]any{"date": "2020-01-01"}, models.SearchQuery{}, true},
		{"empty query", map[string]any{"querystring": ""}, models.SearchQuery{}, true},
		{"non-string query", map[string]any{"querystring": 42.0}, models.SearchQuery{}, true},
		{"non-string date", map[string]any{"querystring": "fraud", "date": 2020.0}, models.SearchQuery{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SearchQueryFromArgs(tt.args)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToolArgs) {
					t.Fatalf("err = %v, want ErrInvalidToolArgs", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SearchQueryFromArgs: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDeclarationsSorted(t *testing.T) {
	handler := NewFunctionHandler(&fakeSearcher{})
	handler["another_tool"] = Tool{Declaration: &genai.FunctionDeclaration{Name: "another_tool"}}

	decls := handler.Declarations()
	if len(decls) != 2 || decls[0].Name != "another_tool" || decls[1].Name != SearchCaseTool {
		t.Errorf("Declarations = %v", decls)
	}
}
