package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/meridianpay/backoffice/internal/domain"
	"github.com/meridianpay/backoffice/internal/window"
)

// LedgerRepo is the ledger row source: it presents the standard payout
// stream and the anticipation payout stream as one stream of
// LedgerEntry values. The effective day is computed once here via
// COALESCE(settlement_date, expected_settlement_date); consumers never
// re-derive it. Cancelled rows never leave this layer.
type LedgerRepo struct {
	db  *sql.DB
	log *logrus.Entry
}

func NewLedgerRepo(db *sql.DB, log *logrus.Logger) *LedgerRepo {
	return &LedgerRepo{db: db, log: log.WithField("component", "ledger")}
}

// FetchEntries returns the scoped, windowed union of both payout
// streams. Filters are conjunctive and optional. An empty scope returns
// no rows without touching the database: an empty merchant list means
// "nothing", never "everything".
func (r *LedgerRepo) FetchEntries(ctx context.Context, scope domain.AccessScope, win window.Range, f domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	if scope.Empty() {
		return nil, nil
	}

	standard, err := r.fetchPayouts(ctx, scope, win, f)
	if err != nil {
		return nil, fmt.Errorf("fetch payouts: %w", err)
	}

	// Anticipation entries carry no card brand, so a brand filter can
	// never match them.
	var anticipation []domain.LedgerEntry
	if f.Brand == "" {
		anticipation, err = r.fetchAnticipations(ctx, scope, win, f)
		if err != nil {
			return nil, fmt.Errorf("fetch anticipations: %w", err)
		}
	}

	return r.merge(standard, anticipation), nil
}

func (r *LedgerRepo) fetchPayouts(ctx context.Context, scope domain.AccessScope, win window.Range, f domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	clauses, args := buildLedgerWhere("p", scope, win, f)
	if f.Brand != "" {
		clauses = append(clauses, "p.brand = ?")
		args = append(args, f.Brand)
	}

	query := `
		SELECT p.merchant_id, m.name, p.customer_id, p.routing_number,
		       p.product_type, p.brand, p.gross_amount, p.net_amount, p.status,
		       COALESCE(p.settlement_date, p.expected_settlement_date)
		FROM payouts p
		JOIN merchants m ON m.id = p.merchant_id
		WHERE ` + strings.Join(clauses, " AND ")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var gross, net, day string
		err := rows.Scan(&e.MerchantID, &e.MerchantName, &e.CustomerID,
			&e.RoutingNumber, &e.ProductType, &e.Brand, &gross, &net, &e.Status, &day)
		if err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		if err := fillAmounts(&e, gross, net, day); err != nil {
			return nil, err
		}
		e.Origin = domain.OriginStandard
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *LedgerRepo) fetchAnticipations(ctx context.Context, scope domain.AccessScope, win window.Range, f domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	clauses, args := buildLedgerWhere("a", scope, win, f)

	query := `
		SELECT a.merchant_id, m.name, a.customer_id, a.routing_number,
		       a.gross_amount, a.net_amount, a.status,
		       COALESCE(a.settlement_date, a.expected_settlement_date)
		FROM anticipations a
		JOIN merchants m ON m.id = a.merchant_id
		WHERE ` + strings.Join(clauses, " AND ")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var gross, net, day string
		err := rows.Scan(&e.MerchantID, &e.MerchantName, &e.CustomerID,
			&e.RoutingNumber, &gross, &net, &e.Status, &day)
		if err != nil {
			return nil, fmt.Errorf("scan anticipation: %w", err)
		}
		if err := fillAmounts(&e, gross, net, day); err != nil {
			return nil, err
		}
		e.ProductType = domain.ProductTypeAnticipation
		e.Origin = domain.OriginAnticipation
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// buildLedgerWhere produces the predicates shared by both streams:
// tenant isolation (customer AND merchant), the window over the
// effective day, cancelled-row exclusion, and the optional filters.
func buildLedgerWhere(alias string, scope domain.AccessScope, win window.Range, f domain.LedgerFilter) ([]string, []any) {
	day := fmt.Sprintf("COALESCE(%s.settlement_date, %s.expected_settlement_date)", alias, alias)

	clauses := []string{
		alias + ".customer_id = ?",
		alias + ".status != ?",
		day + " BETWEEN ? AND ?",
	}
	args := []any{scope.CustomerID, domain.StatusCancelled, formatDay(win.Start), formatDay(win.End)}

	if !scope.FullAccess {
		clauses = append(clauses, alias+".merchant_id IN ("+placeholders(len(scope.MerchantIDs))+")")
		args = appendStrings(args, scope.MerchantIDs)
	}
	if f.MerchantName != "" {
		clauses = append(clauses, "LOWER(m.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.MerchantName)+"%")
	}
	if f.Status != "" {
		clauses = append(clauses, alias+".status = ?")
		args = append(args, f.Status)
	}
	if f.From != nil {
		clauses = append(clauses, day+" >= ?")
		args = append(args, formatDay(*f.From))
	}
	if f.To != nil {
		clauses = append(clauses, day+" <= ?")
		args = append(args, formatDay(*f.To))
	}

	return clauses, args
}

// merge unions the two streams. The two physical sources are assumed
// disjoint on routing number; if that assumption is ever violated the
// anticipation entries for the clashing number are dropped in favour of
// the standard ones, deterministically, and the conflict is logged.
func (r *LedgerRepo) merge(standard, anticipation []domain.LedgerEntry) []domain.LedgerEntry {
	inStandard := make(map[string]struct{}, len(standard))
	for _, e := range standard {
		if e.RoutingNumber != "" {
			inStandard[e.RoutingNumber] = struct{}{}
		}
	}

	entries := standard
	for _, e := range anticipation {
		if _, clash := inStandard[e.RoutingNumber]; clash && e.RoutingNumber != "" {
			r.log.WithError(domain.ErrInconsistentJoin).
				WithField("routing_number", e.RoutingNumber).
				Warn("dropping anticipation entry, standard origin wins")
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

func fillAmounts(e *domain.LedgerEntry, gross, net, day string) error {
	var err error
	if e.GrossAmount, err = decimal.NewFromString(gross); err != nil {
		return fmt.Errorf("parse gross amount %q: %w", gross, err)
	}
	if e.NetAmount, err = decimal.NewFromString(net); err != nil {
		return fmt.Errorf("parse net amount %q: %w", net, err)
	}
	if e.EffectiveDay, err = parseDay(day); err != nil {
		return fmt.Errorf("parse effective day %q: %w", day, err)
	}
	return nil
}
