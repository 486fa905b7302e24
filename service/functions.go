package service

import (
	"context"
	"fmt"
	"sort"

	"legaleagle-backend/models"

	"github.com/google/generative-ai-go/genai"
)

const (
	// SearchCaseTool is the name the model uses to call the search pipeline
	SearchCaseTool = "search_case"

	// ParamQueryString and ParamDate are the declared argument keys of
	// search_case; the handler reads the same keys
	ParamQueryString = "querystring"
	ParamDate        = "date"
)

// SearchCaseDeclaration declares the search_case tool to the model
var SearchCaseDeclaration = &genai.FunctionDeclaration{
	Name:        SearchCaseTool,
	Description: "Search for cases related to the question asked by the user",
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			ParamQueryString: {
				Type:        genai.TypeString,
				Description: "The search string to use to find cases",
			},
			ParamDate: {
				Type:        genai.TypeString,
				Description: "Start date to search for cases",
			},
		},
		Required: []string{ParamQueryString},
	},
}

// CaseSearcher runs the search-and-enrich pipeline
type CaseSearcher interface {
	Search(ctx context.Context, query models.SearchQuery) (*models.ResultSet, error)
}

// ToolFunc is a callable registered for a declared tool
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// Tool pairs a declaration with its callable
type Tool struct {
	Declaration *genai.FunctionDeclaration
	Call        ToolFunc
}

// FunctionHandler maps tool names to their declarations and callables
type FunctionHandler map[string]Tool

// NewFunctionHandler creates the dispatch table with search_case registered
func NewFunctionHandler(searcher CaseSearcher) FunctionHandler {
	return FunctionHandler{
		SearchCaseTool: {
			Declaration: SearchCaseDeclaration,
			Call:        SearchCaseFunc(searcher),
		},
	}
}

// Declarations returns the declarations of every registered tool, sorted by name
func (h FunctionHandler) Declarations() []*genai.FunctionDeclaration {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	decls := make([]*genai.FunctionDeclaration, 0, len(names))
	for _, name := range names {
		decls = append(decls, h[name].Declaration)
	}
	return decls
}

// Dispatch invokes the callable registered under name
func (h FunctionHandler) Dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	tool, ok := h[name]
	if !ok || tool.Call == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return tool.Call(ctx, args)
}

// SearchCaseFunc adapts the search pipeline to the tool calling convention
func SearchCaseFunc(searcher CaseSearcher) ToolFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		query, err := SearchQueryFromArgs(args)
		if err != nil {
			return nil, err
		}
		return searcher.Search(ctx, query)
	}
}

// SearchQueryFromArgs reads a SearchQuery from tool call arguments.
// querystring is required; date is optional and passed through as given.
func SearchQueryFromArgs(args map[string]any) (models.SearchQuery, error) {
	raw, ok := args[ParamQueryString]
	if !ok {
		return models.SearchQuery{}, fmt.Errorf("%w: missing %s", ErrInvalidToolArgs, ParamQueryString)
	}
	queryString, ok := raw.(string)
	if !ok || queryString == "" {
		return models.SearchQuery{}, fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidToolArgs, ParamQueryString)
	}

	query := models.SearchQuery{QueryString: queryString}
	if raw, ok := args[ParamDate]; ok && raw != nil {
		date, ok := raw.(string)
		if !ok {
			return models.SearchQuery{}, fmt.Errorf("%w: %s must be a string", ErrInvalidToolArgs, ParamDate)
		}
		query.StartDate = date
	}

	return query, nil
}
