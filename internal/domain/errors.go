package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure, with no infrastructure dependency.
// Rejected progression operations (ineligible activation, terminal instance,
// stale event) are not errors; they surface as false/nil results.

var (
	// Snapshot errors
	ErrSnapshotVersion   = errors.New("snapshot schema version is not supported")
	ErrSnapshotMalformed = errors.New("snapshot is malformed")

	// Catalog errors
	ErrUnknownTemplate = errors.New("template not found in catalog")
	ErrInvalidTemplate = errors.New("template failed validation")

	// Instance errors
	ErrUnknownInstance = errors.New("instance not found")

	// Event errors
	ErrInvalidEvent = errors.New("activity event failed validation")

	// Consistency errors
	ErrInvariantViolated = errors.New("progression state is inconsistent")

	// Store errors
	ErrStoreUnavailable = errors.New("progression store is unavailable")
	ErrInvalidUser      = errors.New("user id must be non-empty")
)
