// Package storage persists finished comparison reports and exports the
// comparison table as CSV.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/IshaanNene/CompareGoat/internal/compare"
	"github.com/IshaanNene/CompareGoat/internal/config"
)

// Storage is the interface for all report backends.
type Storage interface {
	// Store persists one finished report.
	Store(ctx context.Context, report *compare.Report) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// NewFromConfig opens the backend selected by cfg.Type. Type "none" returns
// a nil Storage and no error. A comma-separated list such as "jsonl,mongodb"
// opens every listed backend and fans each report out to all of them.
func NewFromConfig(cfg *config.StorageConfig, logger *slog.Logger) (Storage, error) {
	kinds := config.StorageTypes(cfg.Type)
	switch len(kinds) {
	case 0:
		return nil, nil
	case 1:
		return openBackend(cfg, kinds[0], logger)
	}

	backends := make([]Storage, 0, len(kinds))
	for _, typ := range kinds {
		s, err := openBackend(cfg, typ, logger)
		if err != nil {
			for _, b := range backends {
				_ = b.Close()
			}
			return nil, fmt.Errorf("open %s storage: %w", typ, err)
		}
		backends = append(backends, s)
	}
	return NewMultiStorage(backends, logger), nil
}

func openBackend(cfg *config.StorageConfig, storageType string, logger *slog.Logger) (Storage, error) {
	if storageType != "mongodb" {
		return NewFileStorage(storageType, cfg.OutputPath, logger)
	}
	s, err := NewMongoStorage(cfg.MongoURI, cfg.MongoDB, cfg.Collection, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewFileStorage creates the appropriate file-based storage by type.
func NewFileStorage(storageType, outputDir string, logger *slog.Logger) (Storage, error) {
	switch storageType {
	case "json":
		s, err := NewJSONStorage(filepath.Join(outputDir, "comparisons.json"), logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "jsonl":
		s, err := NewJSONLStorage(filepath.Join(outputDir, "comparisons.jsonl"), logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "csv":
		s, err := NewCSVStorage(outputDir, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
