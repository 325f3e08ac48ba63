package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meridianpay/backoffice/internal/domain"
	"github.com/meridianpay/backoffice/internal/window"
)

// AdjustmentRepo resolves routing numbers to settlements and loads the
// merchant-level debit adjustments recorded against them.
type AdjustmentRepo struct {
	db *sql.DB
}

func NewAdjustmentRepo(db *sql.DB) *AdjustmentRepo {
	return &AdjustmentRepo{db: db}
}

// SettlementIDs follows the given routing numbers through the standard
// and PIX order tables and returns the distinct settlement ids, sorted.
// The two lookups are deliberately separate queries whose results are
// unioned on settlement id: a settlement with both standard and PIX
// orders appears exactly once.
func (r *AdjustmentRepo) SettlementIDs(ctx context.Context, routingNumbers []string) ([]string, error) {
	if len(routingNumbers) == 0 {
		return nil, nil
	}

	set := make(map[string]struct{})
	for _, table := range []string{"settlement_orders", "pix_settlement_orders"} {
		query := "SELECT DISTINCT settlement_id FROM " + table +
			" WHERE routing_number IN (" + placeholders(len(routingNumbers)) + ")"
		args := appendStrings(nil, routingNumbers)

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", table, err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan %s: %w", table, err)
			}
			set[id] = struct{}{}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("lookup %s: %w", table, err)
		}
		rows.Close()
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// AdjustmentEntries loads the per-merchant debit adjustment of each
// settlement, restricted to the caller's scope and to adjustment rows
// whose own effective day falls in the window. Cancelled rows and zero
// figures are skipped. A settlement contributes at most one entry per
// merchant, so dedup on settlement id upstream is what bounds the sum.
func (r *AdjustmentRepo) AdjustmentEntries(ctx context.Context, settlementIDs []string, scope domain.AccessScope, win window.Range) ([]domain.AdjustmentEntry, error) {
	if len(settlementIDs) == 0 || scope.Empty() {
		return nil, nil
	}

	clauses := []string{
		"sm.settlement_id IN (" + placeholders(len(settlementIDs)) + ")",
		"m.customer_id = ?",
		"sm.status != ?",
		"COALESCE(sm.settlement_date, sm.expected_settlement_date) BETWEEN ? AND ?",
	}
	args := appendStrings(nil, settlementIDs)
	args = append(args, scope.CustomerID, domain.StatusCancelled, formatDay(win.Start), formatDay(win.End))

	if !scope.FullAccess {
		clauses = append(clauses, "sm.merchant_id IN ("+placeholders(len(scope.MerchantIDs))+")")
		args = appendStrings(args, scope.MerchantIDs)
	}

	query := `
		SELECT sm.settlement_id, sm.merchant_id, sm.debit_adjustment,
		       COALESCE(sm.settlement_date, sm.expected_settlement_date)
		FROM settlement_merchants sm
		JOIN merchants m ON m.id = sm.merchant_id
		WHERE ` + strings.Join(clauses, " AND ") + `
		ORDER BY sm.settlement_id, sm.merchant_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch adjustments: %w", err)
	}
	defer rows.Close()

	var entries []domain.AdjustmentEntry
	for rows.Next() {
		var a domain.AdjustmentEntry
		var amount, day string
		if err := rows.Scan(&a.SettlementID, &a.MerchantID, &amount, &day); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		if a.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse adjustment %q: %w", amount, err)
		}
		if a.EffectiveDay, err = parseDay(day); err != nil {
			return nil, fmt.Errorf("parse adjustment day %q: %w", day, err)
		}
		if a.Amount.IsZero() {
			continue
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
