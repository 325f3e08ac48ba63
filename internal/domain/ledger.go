package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origin identifies which physical payout stream a ledger entry came from.
type Origin string

const (
	OriginStandard     Origin = "STANDARD"
	OriginAnticipation Origin = "ANTICIPATION"
)

// Upstream statuses with special meaning. The settlement provider sends
// free-form status strings, so these are patterns and well-known values,
// not a closed enum.
const (
	StatusProvisioned = "PROVISIONED"
	StatusSettled     = "SETTLED"
	StatusCancelled   = "CANCELLED"

	// StatusNoData is the reduced status of an empty group and the status
	// of zero rollups produced by scope or window short-circuits.
	StatusNoData = "NO_DATA"
)

const (
	// ProductTypeAnticipation is the synthetic product label carried by
	// every anticipation-payout entry.
	ProductTypeAnticipation = "ANTICIPATION_REQUEST"

	// ProductTypeAdjustments labels the negative pseudo-line added to
	// merchant breakdowns so the netted amount is shown, not implied.
	ProductTypeAdjustments = "ADJUSTMENTS"
)

// LedgerEntry is one payout-like fact from either stream, normalised for
// aggregation. EffectiveDay is COALESCE(settlement date, expected
// settlement date), computed once at the row source.
type LedgerEntry struct {
	MerchantID    string          `json:"merchant_id"`
	MerchantName  string          `json:"merchant_name"`
	CustomerID    string          `json:"customer_id"`
	RoutingNumber string          `json:"routing_number"`
	ProductType   string          `json:"product_type"`
	Brand         string          `json:"brand,omitempty"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	Status        string          `json:"status"`
	EffectiveDay  time.Time       `json:"effective_day"`
	Origin        Origin          `json:"origin"`
}

// AdjustmentEntry is one merchant-level debit figure recorded against a
// settlement. A settlement contributes at most one such entry per
// merchant; deduplication across the standard and PIX order paths
// happens on settlement id before these rows are loaded.
type AdjustmentEntry struct {
	SettlementID string          `json:"settlement_id"`
	MerchantID   string          `json:"merchant_id"`
	Amount       decimal.Decimal `json:"amount"`
	EffectiveDay time.Time       `json:"effective_day"`
}
