package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Fit is the user's self-reported fit outcome for a shoe they own.
type Fit string

const (
	// FitTooSmall means the shoe runs small at the recorded size.
	FitTooSmall Fit = "too_small"
	// FitPerfect means the recorded size is true to size.
	FitPerfect Fit = "perfect"
	// FitTooLarge means the shoe runs large at the recorded size.
	FitTooLarge Fit = "too_large"
)

// ParseFit converts user input to a Fit. The legacy spellings "too small"
// and "too large" are accepted. An empty string yields FitPerfect.
func ParseFit(s string) (Fit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "perfect", "true_to_size", "true-to-size":
		return FitPerfect, true
	case "too_small", "too small", "too-small", "undersized":
		return FitTooSmall, true
	case "too_large", "too large", "too-large", "oversized":
		return FitTooLarge, true
	default:
		return "", false
	}
}

// SizeSystem is the regional sizing scale a size was recorded in.
type SizeSystem string

// Known size systems.
const (
	SizeSystemUS SizeSystem = "US"
	SizeSystemUK SizeSystem = "UK"
	SizeSystemEU SizeSystem = "EU"
	SizeSystemCM SizeSystem = "CM"
)

// SizeSystems lists every supported size system.
var SizeSystems = []SizeSystem{SizeSystemUS, SizeSystemUK, SizeSystemEU, SizeSystemCM}

// ParseSizeSystem converts user input to a SizeSystem, case-insensitively.
// An empty string yields SizeSystemUS.
func ParseSizeSystem(s string) (SizeSystem, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return SizeSystemUS, true
	}
	if s == "JP" {
		return SizeSystemCM, true
	}
	for _, sys := range SizeSystems {
		if string(sys) == s {
			return sys, true
		}
	}
	return "", false
}

// MaxShoeSize bounds accepted sizes across all systems (EU tops out in the 50s).
const MaxShoeSize = 60

// ParseSize parses a string-encoded size. A comma is accepted as the decimal
// separator. NaN, infinities and non-positive values are rejected.
func ParseSize(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// OwnedShoe is a user's record of a shoe they own, with fit feedback.
// Records are never edited after creation.
type OwnedShoe struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	CatalogID  string     `json:"catalog_id,omitempty"`
	Brand      string     `json:"brand"`
	Model      string     `json:"model"`
	Size       string     `json:"size"`
	SizeSystem SizeSystem `json:"size_system"`
	Fit        Fit        `json:"fit"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsTrueToSize reports whether the shoe was marked as a perfect fit.
func (s *OwnedShoe) IsTrueToSize() bool {
	return s.Fit == FitPerfect
}
