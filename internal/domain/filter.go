package domain

import "time"

// LedgerFilter carries the optional, conjunctive ledger filters. A zero
// field means "no constraint". Callers never pass query fragments; the
// row source turns these into parameterized predicates.
type LedgerFilter struct {
	// MerchantName is a case-insensitive substring match on the merchant
	// display name.
	MerchantName string

	Brand  string
	Status string

	// From/To narrow the effective-day range inside the window.
	From *time.Time
	To   *time.Time
}
