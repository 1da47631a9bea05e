// Package catalog implements the preview aggregation pipeline: fetch
// metadata objects from the bucket, group them into projects, and produce
// the sorted read model served by the API.
package catalog

import (
	"context"
	"log/slog"

	"github.com/starford/previewdeck/internal/apperr"
	"github.com/starford/previewdeck/internal/models"
	"github.com/starford/previewdeck/internal/storage"
)

// Service runs the aggregation pipeline against an injected bucket.
type Service struct {
	bucket storage.Bucket
	logger *slog.Logger
}

// NewService creates a catalog service. bucket may be nil when no storage
// backend is configured; Projects then reports ErrNoBackend.
func NewService(bucket storage.Bucket, logger *slog.Logger) *Service {
	return &Service{bucket: bucket, logger: logger}
}

// Configured reports whether a storage backend is available.
func (s *Service) Configured() bool {
	return s.bucket != nil
}

// Bucket returns the underlying bucket. Nil when unconfigured.
func (s *Service) Bucket() storage.Bucket {
	return s.bucket
}

// Projects rebuilds the full catalog: concurrent metadata fetch, per-project
// aggregation, then the final recency sort.
func (s *Service) Projects(ctx context.Context) ([]models.Project, error) {
	if s.bucket == nil {
		return nil, apperr.ErrNoBackend
	}
	previews, err := FetchPreviews(ctx, s.bucket, s.logger)
	if err != nil {
		return nil, err
	}
	return Assemble(Aggregate(previews)), nil
}
