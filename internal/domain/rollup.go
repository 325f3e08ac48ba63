package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RollupNode is one level of a hierarchical settlement rollup. Children
// are keyed by the next grouping key (merchant id, product type, brand
// or day, depending on the requested grouping). A parent's TotalAmount
// equals the sum of its children's already-netted totals; adjustments
// are subtracted at exactly one level.
type RollupNode struct {
	Key         string                 `json:"key,omitempty"`
	Label       string                 `json:"label,omitempty"`
	TotalAmount decimal.Decimal        `json:"total_amount"`
	GrossAmount decimal.Decimal        `json:"gross_amount"`
	Status      string                 `json:"status"`
	Children    map[string]*RollupNode `json:"children,omitempty"`
}

// ZeroRollup is the successful empty result: a caller with no visible
// merchants or a future-month window gets this, never an error.
func ZeroRollup() *RollupNode {
	return &RollupNode{
		TotalAmount: decimal.Zero,
		GrossAmount: decimal.Zero,
		Status:      StatusNoData,
	}
}

// DayStat is one business day of the receipt calendar.
type DayStat struct {
	Day             time.Time       `json:"day"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
	HasAnticipation bool            `json:"has_anticipation"`
}
