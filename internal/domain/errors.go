package domain

import "errors"

// Error taxonomy. Callers match with errors.Is; everything below wraps
// lower-level causes without exposing query text.
var (
	// ErrAccessDenied means the caller identity resolved to no context at
	// all. A caller with zero visible merchants is NOT this case; that is
	// a successful empty result.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidWindow means the reference date was malformed.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrAggregationFailed means a storage fault occurred during ledger
	// fetch or adjustment resolution. The whole call fails; no partial
	// rollup is ever returned.
	ErrAggregationFailed = errors.New("aggregation failed")

	// ErrInconsistentJoin marks a routing number observed in both payout
	// streams. It is logged and resolved deterministically (the standard
	// entries win), never surfaced to callers.
	ErrInconsistentJoin = errors.New("routing number shared across payout origins")
)
