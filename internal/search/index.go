package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/shoefit/shoefit-server/internal/domain"
)

// SearchIndex wraps a Bleve index of catalog entries.
//
// All public methods are safe for concurrent use. The mutex guards the
// index handle, which Rebuild replaces.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (discards if nil)
}

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch on startup drops the index so it is rebuilt from the store.
const mappingVersion = "1"

const indexBatchSize = 500

// NewSearchIndex creates or opens a search index under opts.DataPath.
// An existing index that cannot be opened, or was built with a different
// mapping version, is removed and recreated empty.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create search directory: %w", err)
	}

	indexPath := filepath.Join(opts.DataPath, "catalog.bleve")
	versionPath := filepath.Join(opts.DataPath, "catalog.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, will rebuild",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		case string(existingVersion) != mappingVersion:
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &SearchIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexEntry adds or replaces a catalog entry's document.
func (s *SearchIndex) IndexEntry(e *domain.CatalogEntry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(e.ID, NewCatalogDocument(e).ToMap())
}

// IndexEntries indexes entries in batches of indexBatchSize.
func (s *SearchIndex) IndexEntries(entries []*domain.CatalogEntry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := 0; i < len(entries); i += indexBatchSize {
		end := min(i+indexBatchSize, len(entries))

		batch := s.index.NewBatch()
		for _, e := range entries[i:end] {
			if err := batch.Index(e.ID, NewCatalogDocument(e).ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", e.ID, err)
			}
		}

		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// DeleteEntry removes a catalog entry's document. Deleting an id that was
// never indexed is not an error.
func (s *SearchIndex) DeleteEntry(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the index and creates an empty one with the current mapping.
// It holds the exclusive lock, so searches block until it returns.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)

	return nil
}

// Reindex rebuilds the index and fills it with entries.
func (s *SearchIndex) Reindex(entries []*domain.CatalogEntry) error {
	if err := s.Rebuild(); err != nil {
		return err
	}
	if err := s.IndexEntries(entries); err != nil {
		return err
	}
	s.logger.Info("reindexed catalog", "entries", len(entries))
	return nil
}
