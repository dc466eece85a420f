package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for catalog documents.
//
// Brand names and model names are not English prose, so text fields use the
// standard analyzer (no stemming). "Pegasus" must not be indexed as "pegasu".
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	// Model is the primary search target.
	modelFieldMapping := bleve.NewTextFieldMapping()
	modelFieldMapping.Analyzer = standard.Name
	modelFieldMapping.Store = true
	modelFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("model", modelFieldMapping)

	brandFieldMapping := bleve.NewTextFieldMapping()
	brandFieldMapping.Analyzer = standard.Name
	brandFieldMapping.Store = true
	brandFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("brand", brandFieldMapping)

	categoryFieldMapping := bleve.NewTextFieldMapping()
	categoryFieldMapping.Analyzer = standard.Name
	categoryFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("category", categoryFieldMapping)

	// Folded words for fuzzy and prefix queries. Not stored.
	termsFieldMapping := bleve.NewTextFieldMapping()
	termsFieldMapping.Analyzer = standard.Name
	termsFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("terms", termsFieldMapping)

	// Exact category filter.
	categoryKeyMapping := bleve.NewTextFieldMapping()
	categoryKeyMapping.Analyzer = keyword.Name
	categoryKeyMapping.Store = false
	docMapping.AddFieldMappingsAt("category_key", categoryKeyMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
