package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/previewdeck/internal/models"
	"github.com/starford/previewdeck/internal/storage"
	"github.com/starford/previewdeck/internal/timestamp"
)

const (
	// metadataSuffix identifies sidecar metadata documents in the bucket.
	metadataSuffix = ".json"

	// maxConcurrentFetches bounds the per-object fan-out.
	maxConcurrentFetches = 8
)

// fetchResult is the tagged outcome of one metadata object fetch. Exactly one
// of preview/err is meaningful.
type fetchResult struct {
	object  string
	preview models.Preview
	err     error
}

// FetchPreviews lists the bucket, filters to metadata objects, and fetches
// them concurrently. Each worker sends its tagged result over a channel to a
// single-owner collector, so no shared accumulator is mutated concurrently.
//
// Per-object failures are logged and skipped; the rest of the catalog is
// unaffected and no partial-failure indication reaches the caller. All
// fetches run to completion before the function returns.
func FetchPreviews(ctx context.Context, bucket storage.Bucket, logger *slog.Logger) ([]models.Preview, error) {
	objects, err := bucket.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("catalog: list objects: %w", err)
	}

	var names []string
	for _, obj := range objects {
		if strings.HasSuffix(obj.Name, metadataSuffix) {
			names = append(names, obj.Name)
		}
	}

	results := make(chan fetchResult)

	// A plain group, not WithContext: one failed object must not cancel the
	// remaining fetches.
	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for _, name := range names {
		g.Go(func() error {
			results <- fetchOne(ctx, bucket, name)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	previews := make([]models.Preview, 0, len(names))
	for res := range results {
		if res.err != nil {
			logger.Warn("catalog: object skipped",
				slog.String("object", res.object),
				slog.String("error", res.err.Error()))
			continue
		}
		previews = append(previews, res.preview)
	}
	return previews, nil
}

// fetchOne downloads and decodes a single metadata object and builds the
// enriched Preview. A malformed timestamp is not a failure: the parser falls
// back to the current time and the preview stays in the catalog.
func fetchOne(ctx context.Context, bucket storage.Bucket, name string) fetchResult {
	data, err := bucket.Download(ctx, name)
	if err != nil {
		return fetchResult{object: name, err: fmt.Errorf("download: %w", err)}
	}

	var meta models.PreviewMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return fetchResult{object: name, err: fmt.Errorf("decode metadata: %w", err)}
	}
	if meta.Project == "" || meta.Filename == "" {
		return fetchResult{object: name, err: fmt.Errorf("incomplete metadata: project=%q filename=%q", meta.Project, meta.Filename)}
	}

	return fetchResult{object: name, preview: models.Preview{
		PreviewMetadata: meta,
		URL:             bucket.PublicURL(meta.Filename),
		ParsedDate:      timestamp.Parse(meta.Timestamp),
	}}
}
