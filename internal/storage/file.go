package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/CompareGoat/internal/compare"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// --- JSON Storage ---

// JSONStorage buffers reports and writes them as a JSON array on Close.
type JSONStorage struct {
	path    string
	reports []*compare.Report
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewJSONStorage creates a new JSON file storage.
func NewJSONStorage(outputPath string, logger *slog.Logger) (*JSONStorage, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &JSONStorage{
		path:    outputPath,
		reports: make([]*compare.Report, 0),
		logger:  logger.With("component", "json_storage"),
	}, nil
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Store(_ context.Context, report *compare.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	s.logger.Debug("report buffered", "run_id", report.RunID, "total", len(s.reports))
	return nil
}

func (s *JSONStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.path)
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("create output file: %w", err)}
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.reports); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("encode JSON: %w", err)}
	}

	s.logger.Info("JSON written", "path", s.path, "reports", len(s.reports))
	return nil
}

// --- JSONL Storage ---

// JSONLStorage appends one report per line, keeping earlier runs in the file.
type JSONLStorage struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage opens outputPath for appending.
func NewJSONLStorage(outputPath string, logger *slog.Logger) (*JSONLStorage, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}

	return &JSONLStorage{
		path:   outputPath,
		file:   f,
		enc:    json.NewEncoder(f),
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(_ context.Context, report *compare.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(report); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("encode JSONL: %w", err)}
	}
	s.count++
	return nil
}

func (s *JSONLStorage) Close() error {
	s.logger.Info("JSONL written", "path", s.path, "reports", s.count)
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// --- CSV Storage ---

// CSVStorage writes the filtered comparison table of each report to its
// own file, comparison-<run id>.csv, in the output directory.
type CSVStorage struct {
	dir    string
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewCSVStorage creates a new CSV storage rooted at outputDir.
func NewCSVStorage(outputDir string, logger *slog.Logger) (*CSVStorage, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &CSVStorage{
		dir:    outputDir,
		logger: logger.With("component", "csv_storage"),
	}, nil
}

func (s *CSVStorage) Name() string { return "csv" }

// Path returns the file a report with the given run id is written to.
func (s *CSVStorage) Path(runID string) string {
	return filepath.Join(s.dir, "comparison-"+runID+".csv")
}

func (s *CSVStorage) Store(_ context.Context, report *compare.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(report.RunID)
	f, err := os.Create(path)
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("create output file: %w", err)}
	}
	defer f.Close()

	if err := WriteCSV(f, report.Filtered, report.Currency); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	s.count++
	s.logger.Debug("CSV written", "path", path, "rows", len(report.Filtered))
	return nil
}

func (s *CSVStorage) Close() error {
	s.logger.Info("CSV storage closing", "dir", s.dir, "reports", s.count)
	return nil
}
