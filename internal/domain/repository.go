package domain

import (
	"context"
	"time"
)

// BlobStore is the platform simple key-value store: opaque JSON blobs under
// fixed string keys. Every Set overwrites the whole blob; there are no
// partial writes.
type BlobStore interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
}

// MetricsProvider supplies aggregate health metrics for a calendar day.
// Implementations fail closed: on any internal failure they return a
// zero-filled snapshot and no error.
type MetricsProvider interface {
	Fetch(ctx context.Context, date time.Time) MetricsSnapshot
}

// AnalysisClient estimates calories from a food photo via an external
// vision/language model.
type AnalysisClient interface {
	// Analyze submits the image with the given API key. A nil error with an
	// unusable result means the model could not identify the food.
	Analyze(ctx context.Context, image []byte, apiKey string) (AnalysisResult, error)

	// ValidateKey checks a candidate API key against the provider's
	// models-listing endpoint. Network errors count as invalid.
	ValidateKey(ctx context.Context, apiKey string) bool
}

// SnapshotCache stores the last known metrics per day, used as a display
// fallback when a live fetch comes back all-zero.
type SnapshotCache interface {
	Get(ctx context.Context, date time.Time) (MetricsSnapshot, error)
	Set(ctx context.Context, snapshot MetricsSnapshot) error
}
