// Package search provides full-text search over the shoe catalog using Bleve.
// Queries combine analyzed matches with fuzzy and prefix term matching so
// that typos and partially typed model names still find the entry.
package search

import (
	"strings"

	"github.com/shoefit/shoefit-server/internal/domain"
	"github.com/shoefit/shoefit-server/internal/util"
)

// CatalogDocument is the indexed form of a catalog entry.
type CatalogDocument struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Category string `json:"category,omitempty"`

	// Terms holds brand, model and category folded to lowercase ASCII words,
	// so "Señorita" is found by "senorita". Fuzzy and prefix queries run here.
	Terms string `json:"terms"`

	CreatedAt int64 `json:"created_at"` // Unix millis
}

// NewCatalogDocument converts a catalog entry to its search document.
func NewCatalogDocument(e *domain.CatalogEntry) *CatalogDocument {
	return &CatalogDocument{
		ID:        e.ID,
		Brand:     e.Brand,
		Model:     e.Model,
		Category:  e.Category,
		Terms:     foldTerms(e.Brand, e.Model, e.Category),
		CreatedAt: e.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *CatalogDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"brand":      d.Brand,
		"model":      d.Model,
		"terms":      d.Terms,
		"created_at": d.CreatedAt,
	}
	if d.Category != "" {
		m["category"] = d.Category
		m["category_key"] = strings.ToLower(d.Category)
	}
	return m
}

// foldTerms joins the inputs into space-separated slug words.
func foldTerms(parts ...string) string {
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := util.Slugify(p); s != "" {
			words = append(words, strings.ReplaceAll(s, "-", " "))
		}
	}
	return strings.Join(words, " ")
}

// queryTerms splits a user query into the same folded words the index holds.
func queryTerms(q string) []string {
	s := util.Slugify(q)
	if s == "" {
		return nil
	}
	return strings.Split(s, "-")
}
