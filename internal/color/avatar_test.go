package color

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexColor = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestForUser_Stable(t *testing.T) {
	c := ForUser("usr-abc123")
	assert.Regexp(t, hexColor, c)
	assert.Equal(t, c, ForUser("usr-abc123"))
}

func TestForUser_Spread(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[ForUser(fmt.Sprintf("usr-%03d", i))] = true
	}
	assert.Greater(t, len(seen), 50)
}

func TestForBrand_IgnoresCase(t *testing.T) {
	assert.Equal(t, ForBrand("Nike"), ForBrand("  NIKE "))
	assert.Regexp(t, hexColor, ForBrand(""))
}

func TestHSLToRGB(t *testing.T) {
	tests := []struct {
		name    string
		h, s, l float64
		r, g, b uint8
	}{
		{"gray", 0, 0, 0.5, 128, 128, 128},
		{"red", 0, 1, 0.5, 255, 0, 0},
		{"green", 120, 1, 0.5, 0, 255, 0},
		{"blue", 240, 1, 0.5, 0, 0, 255},
		{"white", 0, 0, 1, 255, 255, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := hslToRGB(tt.h, tt.s, tt.l)
			assert.Equal(t, []uint8{tt.r, tt.g, tt.b}, []uint8{r, g, b})
		})
	}
}
