package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFit(t *testing.T) {
	tests := []struct {
		in   string
		want Fit
		ok   bool
	}{
		{"", FitPerfect, true},
		{"perfect", FitPerfect, true},
		{"Perfect", FitPerfect, true},
		{"too small", FitTooSmall, true},
		{"too_small", FitTooSmall, true},
		{"too large", FitTooLarge, true},
		{"TOO_LARGE", FitTooLarge, true},
		{"snug", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseFit(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSizeSystem(t *testing.T) {
	sys, ok := ParseSizeSystem("")
	assert.True(t, ok)
	assert.Equal(t, SizeSystemUS, sys)

	sys, ok = ParseSizeSystem("eu")
	assert.True(t, ok)
	assert.Equal(t, SizeSystemEU, sys)

	sys, ok = ParseSizeSystem("jp")
	assert.True(t, ok)
	assert.Equal(t, SizeSystemCM, sys)

	_, ok = ParseSizeSystem("mondo")
	assert.False(t, ok)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{" 9.5 ", 9.5, true},
		{"42,5", 42.5, true},
		{"", 0, false},
		{"ten", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-3", 0, false},
		{"0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSize(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleMember}).IsAdmin())
}

func TestCatalogEntryDisplayName(t *testing.T) {
	assert.Equal(t, "Nike Air Zoom", (&CatalogEntry{Brand: "Nike", Model: "Air Zoom"}).DisplayName())
	assert.Equal(t, "Nike", (&CatalogEntry{Brand: "Nike"}).DisplayName())
}
