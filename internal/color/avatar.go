// Package color derives stable display colors for users and brands.
package color

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Fixed saturation and lightness keep every generated color readable on
// both light and dark backgrounds.
const (
	saturation = 0.45
	lightness  = 0.62
)

// ForUser returns the avatar color for a user ID as "#RRGGBB".
func ForUser(userID string) string {
	return fromKey("user:" + userID)
}

// ForBrand returns the swatch color for a brand. Brands that differ only in
// case or surrounding whitespace share a color.
func ForBrand(brand string) string {
	return fromKey("brand:" + strings.ToLower(strings.TrimSpace(brand)))
}

func fromKey(key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	hue := float64(h.Sum32() % 360)

	r, g, b := hslToRGB(hue, saturation, lightness)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts h in [0,360) and s, l in [0,1] to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l*255 + 0.5)
		return v, v, v
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	h /= 360

	return channel(p, q, h+1.0/3.0), channel(p, q, h), channel(p, q, h-1.0/3.0)
}

func channel(p, q, t float64) uint8 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}

	var v float64
	switch {
	case t < 1.0/6.0:
		v = p + (q-p)*6*t
	case t < 0.5:
		v = q
	case t < 2.0/3.0:
		v = p + (q-p)*(2.0/3.0-t)*6
	default:
		v = p
	}
	return uint8(v*255 + 0.5)
}
