package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100

	// Words shorter than this are not fuzzed; "9" would match every digit.
	minFuzzyLength  = 4
	minPrefixLength = 2
)

// SearchParams configures a search query.
type SearchParams struct {
	Query    string // User's search query; empty matches everything
	Category string // Optional exact category filter, case-insensitive

	Limit  int
	Offset int
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{Limit: defaultSearchLimit}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single matching catalog entry.
type SearchHit struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	Brand    string  `json:"brand"`
	Model    string  `json:"model"`
	Category string  `json:"category,omitempty"`
}

// Search executes a search query. Hits are ordered by score, then by id so
// that equal scores page deterministically.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = defaultSearchLimit
	}
	if params.Limit > maxSearchLimit {
		params.Limit = maxSearchLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	searchRequest := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	searchRequest.SortBy([]string{"-_score", "_id"})
	searchRequest.Fields = []string{"brand", "model", "category"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}
		if b, ok := hit.Fields["brand"].(string); ok {
			searchHit.Brand = b
		}
		if m, ok := hit.Fields["model"].(string); ok {
			searchHit.Model = m
		}
		if c, ok := hit.Fields["category"].(string); ok {
			searchHit.Category = c
		}
		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
//
// The text part is a disjunction: analyzed matches on model, brand and
// category, then fuzzy and prefix term queries per folded word. The category
// filter is ANDed on top.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		textQueries := []query.Query{}

		modelMatch := bleve.NewMatchQuery(q)
		modelMatch.SetField("model")
		modelMatch.SetBoost(3.0)
		textQueries = append(textQueries, modelMatch)

		brandMatch := bleve.NewMatchQuery(q)
		brandMatch.SetField("brand")
		brandMatch.SetBoost(2.0)
		textQueries = append(textQueries, brandMatch)

		categoryMatch := bleve.NewMatchQuery(q)
		categoryMatch.SetField("category")
		textQueries = append(textQueries, categoryMatch)

		for _, term := range queryTerms(q) {
			termMatch := bleve.NewTermQuery(term)
			termMatch.SetField("terms")
			termMatch.SetBoost(1.5)
			textQueries = append(textQueries, termMatch)

			if len(term) >= minFuzzyLength {
				fuzzyQuery := bleve.NewFuzzyQuery(term)
				fuzzyQuery.SetFuzziness(1)
				fuzzyQuery.SetField("terms")
				fuzzyQuery.SetBoost(0.8)
				textQueries = append(textQueries, fuzzyQuery)
			}

			if len(term) >= minPrefixLength {
				prefixQuery := bleve.NewPrefixQuery(term)
				prefixQuery.SetField("terms")
				prefixQuery.SetBoost(0.5)
				textQueries = append(textQueries, prefixQuery)
			}
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if c := strings.TrimSpace(params.Category); c != "" {
		categoryQuery := bleve.NewTermQuery(strings.ToLower(c))
		categoryQuery.SetField("category_key")
		queries = append(queries, categoryQuery)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
