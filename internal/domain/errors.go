package domain

import "errors"

var (
	// ErrNoCredentialConfigured is returned when a scan is attempted with no
	// non-empty API key saved. Checked before any network call.
	ErrNoCredentialConfigured = errors.New("no API credential configured")

	// ErrAnalysisFailed is returned on transport or HTTP-level failure of the
	// food analysis endpoint.
	ErrAnalysisFailed = errors.New("food analysis request failed")

	// ErrScanInProgress is returned when a scan is started while another one
	// is still outstanding.
	ErrScanInProgress = errors.New("a scan is already in progress")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrEntryNotFound is returned by the HTTP layer when a food log entry
	// lookup misses. Store mutations themselves treat unknown IDs as no-ops.
	ErrEntryNotFound = errors.New("food log entry not found")

	// ErrCacheMiss is returned when a snapshot is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)
