package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// MaxDimension bounds each side of an accepted image so a small compressed
// upload cannot expand into a huge bitmap.
const MaxDimension = 8192

var (
	// ErrUnsupportedFormat is returned for data that is not JPEG, PNG, GIF or WebP.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrTooLarge is returned for uploads over the byte or dimension limit.
	ErrTooLarge = errors.New("image too large")
	// ErrNotFound is returned when no image is stored under a slug.
	ErrNotFound = errors.New("image not found")
)

// Format describes a supported image encoding.
type Format struct {
	Name        string // Decoder name reported by image.DecodeConfig
	ContentType string
	Ext         string
}

var formats = []Format{
	{Name: "jpeg", ContentType: "image/jpeg", Ext: ".jpg"},
	{Name: "png", ContentType: "image/png", Ext: ".png"},
	{Name: "gif", ContentType: "image/gif", Ext: ".gif"},
	{Name: "webp", ContentType: "image/webp", Ext: ".webp"},
}

// DetectFormat identifies the encoding of data by decoding its header.
// It also rejects images whose dimensions exceed MaxDimension.
func DetectFormat(data []byte) (Format, image.Config, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Format{}, image.Config{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	for _, f := range formats {
		if f.Name == name {
			if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
				return Format{}, cfg, fmt.Errorf("%w: %dx%d exceeds %d pixels per side",
					ErrTooLarge, cfg.Width, cfg.Height, MaxDimension)
			}
			return f, cfg, nil
		}
	}
	return Format{}, cfg, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

