// Package download fetches remote catalog images so seeded catalog entries
// can start from a product photo URL.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shoefit/shoefit-server/internal/media/images"
)

// downloadTimeout is the maximum time for one download.
const downloadTimeout = 30 * time.Second

// Downloader fetches images over HTTP.
type Downloader struct {
	httpClient *http.Client
	maxBytes   int64
	logger     *slog.Logger
}

// NewDownloader creates a new image downloader. A nil client uses one with
// downloadTimeout. Bodies larger than maxBytes are rejected.
func NewDownloader(client *http.Client, maxBytes int64, logger *slog.Logger) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	if maxBytes <= 0 {
		maxBytes = images.DefaultMaxBytes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Downloader{
		httpClient: client,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// Fetch downloads url and returns the body. The bytes are not decoded; the
// image processor decides whether they are a supported image.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("empty image URL")
	}

	downloadCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	// Read one byte past the limit so an oversized body is detected, not truncated.
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", images.ErrTooLarge, d.maxBytes)
	}

	d.logger.Debug("downloaded image", "url", url, "size", len(data))

	return data, nil
}
