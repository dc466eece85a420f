package images

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultMaxBytes is the upload limit when none is configured.
const DefaultMaxBytes = 10 << 20

// Result describes a processed and stored image.
type Result struct {
	Format   Format
	Width    int
	Height   int
	Size     int64
	BlurHash string
	ETag     string
}

// Processor validates uploaded images, stores them and derives placeholders.
type Processor struct {
	storage  *Storage
	maxBytes int64
	logger   *slog.Logger
}

// NewProcessor creates a new Processor. maxBytes <= 0 selects DefaultMaxBytes.
func NewProcessor(storage *Storage, maxBytes int64, logger *slog.Logger) *Processor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{
		storage:  storage,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// MaxBytes returns the upload size limit.
func (p *Processor) MaxBytes() int64 {
	return p.maxBytes
}

// Storage returns the underlying storage.
func (p *Processor) Storage() *Storage {
	return p.storage
}

// Process validates data and stores it under slug.
// A BlurHash failure is logged and leaves Result.BlurHash empty; the image is
// still stored.
func (p *Processor) Process(ctx context.Context, slug string, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), p.maxBytes)
	}

	f, cfg, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	hash, err := ComputeBlurHash(data)
	if err != nil {
		p.logger.Warn("failed to compute blurhash",
			"slug", slug,
			"format", f.Name,
			"error", err,
		)
		hash = ""
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := p.storage.Save(slug, data, f); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	result := &Result{
		Format:   f,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Size:     int64(len(data)),
		BlurHash: hash,
		ETag:     ETag(data),
	}

	p.logger.Debug("stored image",
		"slug", slug,
		"format", f.Name,
		"size", result.Size,
		"width", result.Width,
		"height", result.Height,
	)

	return result, nil
}
