package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/CompareGoat/internal/compare"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// MongoStorage writes reports to a MongoDB collection, one document per run.
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

// NewMongoStorage creates a new MongoDB storage backend.
func NewMongoStorage(uri, database, collection string, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStorage{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(ctx context.Context, report *compare.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, report); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("mongodb insert: %w", err)}
	}

	s.count++
	s.logger.Debug("report stored in mongodb", "run_id", report.RunID, "total", s.count)
	return nil
}

// Find loads a stored report by run id.
func (s *MongoStorage) Find(ctx context.Context, runID string) (*compare.Report, error) {
	var report compare.Report
	err := s.collection.FindOne(ctx, bson.M{"run_id": runID}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &types.NotFoundError{Query: runID}
	}
	if err != nil {
		return nil, &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("mongodb find: %w", err)}
	}
	return &report, nil
}

func (s *MongoStorage) Close() error {
	s.logger.Info("mongodb storage closing", "total_reports", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// --- Multi-Storage Fan-Out ---

// MultiStorage writes reports to multiple backends.
type MultiStorage struct {
	backends []Storage
	logger   *slog.Logger
}

// NewMultiStorage creates a storage that fans out to multiple backends.
func NewMultiStorage(backends []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string { return "multi" }

func (s *MultiStorage) Store(ctx context.Context, report *compare.Report) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Store(ctx, report); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Find looks runID up in each backend that can load reports, in order.
func (s *MultiStorage) Find(ctx context.Context, runID string) (*compare.Report, error) {
	for _, backend := range s.backends {
		f, ok := backend.(interface {
			Find(ctx context.Context, runID string) (*compare.Report, error)
		})
		if !ok {
			continue
		}
		report, err := f.Find(ctx, runID)
		if types.IsNotFound(err) {
			continue
		}
		return report, err
	}
	return nil, &types.NotFoundError{Query: runID}
}

func (s *MultiStorage) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
