// Package util provides common utility functions.
package util

import (
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any run of non-alphanumeric characters.
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL-safe slug.
//
// Accented characters are decomposed and their marks dropped, anything
// outside ASCII is removed, and every run of non-alphanumerics becomes a
// single dash.
//
//	"Air Zoom"       → "air-zoom"
//	"Asics GEL-Kayano" → "asics-gel-kayano"
//	"Señorita 2.0"   → "senorita-2-0"
//	"🐉 Dragons!"    → "dragons"
func Slugify(input string) string {
	s := norm.NFKD.String(strings.TrimSpace(input))

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumericRe.ReplaceAllString(s, "-")
	s = multipleDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CatalogSlug is the readable "brand-model" part of a catalog image key.
// Distinct entries can share it: "Nike"/"Air-Zoom" and "Nike Air"/"Zoom"
// both give "nike-air-zoom".
func CatalogSlug(brand, model string) string {
	b, m := Slugify(brand), Slugify(model)
	switch {
	case b == "":
		return m
	case m == "":
		return b
	default:
		return b + "-" + m
	}
}

// CatalogImageKey is the image storage key for a catalog entry: the
// brand-model slug followed by the hex-encoded entry ID. The ID part keeps
// keys unique per entry and survives slugification unchanged.
func CatalogImageKey(brand, model, entryID string) string {
	suffix := hex.EncodeToString([]byte(entryID))
	if slug := CatalogSlug(brand, model); slug != "" {
		return slug + "-" + suffix
	}
	return suffix
}
