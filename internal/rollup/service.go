// Package rollup turns access-scoped ledger entries into hierarchical
// settlement rollups: it groups the merged payout streams, nets
// merchant-level adjustments exactly once, and derives one status per
// node.
package rollup

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/meridianpay/backoffice/internal/domain"
	"github.com/meridianpay/backoffice/internal/window"
)

const dayKey = "2006-01-02"

// LedgerSource is the merged payout/anticipation row stream.
type LedgerSource interface {
	FetchEntries(ctx context.Context, scope domain.AccessScope, win window.Range, f domain.LedgerFilter) ([]domain.LedgerEntry, error)
}

// AdjustmentSource resolves routing numbers to settlements and loads the
// per-merchant debit adjustments recorded against them.
type AdjustmentSource interface {
	SettlementIDs(ctx context.Context, routingNumbers []string) ([]string, error)
	AdjustmentEntries(ctx context.Context, settlementIDs []string, scope domain.AccessScope, win window.Range) ([]domain.AdjustmentEntry, error)
}

// ScopeResolver maps an opaque caller identity to its merchant scope.
type ScopeResolver interface {
	ResolveAccessScope(ctx context.Context, callerID string) (domain.AccessScope, error)
}

// GroupBy selects the rollup hierarchy.
type GroupBy string

const (
	GroupNone       GroupBy = "none"
	GroupByDay      GroupBy = "day"
	GroupByMerchant GroupBy = "merchant"
)

// Params describe one aggregation request.
type Params struct {
	ReferenceDate time.Time
	Granularity   window.Granularity
	GroupBy       GroupBy
	Filter        domain.LedgerFilter
}

// Service is the settlement aggregator. It is stateless between calls:
// every invocation resolves its own scope, window and storage reads.
type Service struct {
	scopes      ScopeResolver
	ledger      LedgerSource
	adjustments AdjustmentSource
	workers     int
	log         *logrus.Entry

	// clock is time.Now outside of tests.
	clock func() time.Time
}

// NewService wires the aggregator. workers bounds the receipt-calendar
// fan-out and should match the storage connection pool.
func NewService(scopes ScopeResolver, ledger LedgerSource, adjustments AdjustmentSource, workers int, log *logrus.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		scopes:      scopes,
		ledger:      ledger,
		adjustments: adjustments,
		workers:     workers,
		log:         log.WithField("component", "rollup"),
		clock:       time.Now,
	}
}

// Aggregate computes the rollup for one window at the requested
// grouping. A caller with no visible merchants, or a future-month
// window, gets a zero rollup without any storage access.
func (s *Service) Aggregate(ctx context.Context, callerID string, p Params) (*domain.RollupNode, error) {
	scope, err := s.scopes.ResolveAccessScope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if scope.Empty() {
		return domain.ZeroRollup(), nil
	}

	win, ok := window.Compute(p.ReferenceDate, p.Granularity, s.clock())
	if !ok {
		return domain.ZeroRollup(), nil
	}

	entries, err := s.ledger.FetchEntries(ctx, scope, win, p.Filter)
	if err != nil {
		return nil, aggregationErr("ledger fetch", win, err)
	}

	adjustments, err := s.resolveAdjustments(ctx, scope, win, entries)
	if err != nil {
		return nil, aggregationErr("adjustment resolution", win, err)
	}

	s.log.WithFields(logrus.Fields{
		"window":      win.Start.Format(dayKey) + ".." + win.End.Format(dayKey),
		"entries":     len(entries),
		"adjustments": len(adjustments),
		"group_by":    p.GroupBy,
	}).Debug("aggregating settlement rollup")

	switch p.GroupBy {
	case GroupByMerchant:
		return buildMerchantRollup(entries, adjustments), nil
	case GroupByDay:
		return buildDayRollup(entries, adjustments), nil
	default:
		return buildGlobalRollup(entries, adjustments), nil
	}
}

// ReceiptCalendar returns one DayStat per business day of ref's month.
// Day windows are independent reads, so they run concurrently under a
// bounded pool; the first failure fails the whole calendar.
func (s *Service) ReceiptCalendar(ctx context.Context, callerID string, ref time.Time) ([]domain.DayStat, error) {
	scope, err := s.scopes.ResolveAccessScope(ctx, callerID)
	if err != nil {
		return nil, err
	}

	win, ok := window.Compute(ref, window.Month, s.clock())
	if !ok {
		return []domain.DayStat{}, nil
	}
	days := window.BusinessDays(win)

	stats := make([]domain.DayStat, len(days))
	if scope.Empty() {
		for i, d := range days {
			stats[i] = domain.DayStat{Day: d, TotalAmount: decimal.Zero, Status: domain.StatusNoData}
		}
		return stats, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, day := range days {
		i, day := i, day
		g.Go(func() error {
			dayWin := window.Range{Start: day, End: day}
			entries, err := s.ledger.FetchEntries(ctx, scope, dayWin, domain.LedgerFilter{})
			if err != nil {
				return aggregationErr("calendar ledger fetch", dayWin, err)
			}
			adjustments, err := s.resolveAdjustments(ctx, scope, dayWin, entries)
			if err != nil {
				return aggregationErr("calendar adjustment resolution", dayWin, err)
			}
			stats[i] = domain.DayStat{
				Day:             day,
				TotalAmount:     sumNet(entries).Sub(sumAdjustments(adjustments)),
				Status:          ReduceStatus(entryStatuses(entries)),
				HasAnticipation: hasOrigin(entries, domain.OriginAnticipation),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// resolveAdjustments follows routing numbers found in the ledger result
// to settlement ids (deduplicated across the standard and PIX order
// paths) and loads each settlement's windowed per-merchant adjustments.
func (s *Service) resolveAdjustments(ctx context.Context, scope domain.AccessScope, win window.Range, entries []domain.LedgerEntry) ([]domain.AdjustmentEntry, error) {
	routing := routingNumbers(entries)
	if len(routing) == 0 {
		return nil, nil
	}
	ids, err := s.adjustments.SettlementIDs(ctx, routing)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.adjustments.AdjustmentEntries(ctx, ids, scope, win)
}

// --- grouping ---

func buildGlobalRollup(entries []domain.LedgerEntry, adjustments []domain.AdjustmentEntry) *domain.RollupNode {
	if len(entries) == 0 && len(adjustments) == 0 {
		return domain.ZeroRollup()
	}
	return &domain.RollupNode{
		TotalAmount: sumNet(entries).Sub(sumAdjustments(adjustments)),
		GrossAmount: sumGross(entries),
		Status:      ReduceStatus(entryStatuses(entries)),
	}
}

func buildDayRollup(entries []domain.LedgerEntry, adjustments []domain.AdjustmentEntry) *domain.RollupNode {
	if len(entries) == 0 && len(adjustments) == 0 {
		return domain.ZeroRollup()
	}

	byDay := make(map[string][]domain.LedgerEntry)
	for _, e := range entries {
		k := e.EffectiveDay.Format(dayKey)
		byDay[k] = append(byDay[k], e)
	}
	adjByDay := make(map[string]decimal.Decimal)
	for _, a := range adjustments {
		k := a.EffectiveDay.Format(dayKey)
		adjByDay[k] = adjByDay[k].Add(a.Amount)
	}

	root := &domain.RollupNode{
		GrossAmount: sumGross(entries),
		Status:      ReduceStatus(entryStatuses(entries)),
		Children:    make(map[string]*domain.RollupNode),
		TotalAmount: decimal.Zero,
	}
	for k := range adjByDay {
		if _, ok := byDay[k]; !ok {
			byDay[k] = nil
		}
	}
	for k, dayEntries := range byDay {
		child := &domain.RollupNode{
			Key:         k,
			TotalAmount: sumNet(dayEntries).Sub(adjByDay[k]),
			GrossAmount: sumGross(dayEntries),
			Status:      ReduceStatus(entryStatuses(dayEntries)),
		}
		root.Children[k] = child
		root.TotalAmount = root.TotalAmount.Add(child.TotalAmount)
	}
	return root
}

// buildMerchantRollup nets adjustments at the merchant level and rolls
// already-netted merchant totals upward; the root never subtracts them
// again. Each adjusted merchant gets an explicit negative ADJUSTMENTS
// line so the subtraction is visible in breakdowns.
func buildMerchantRollup(entries []domain.LedgerEntry, adjustments []domain.AdjustmentEntry) *domain.RollupNode {
	if len(entries) == 0 && len(adjustments) == 0 {
		return domain.ZeroRollup()
	}

	byMerchant := make(map[string][]domain.LedgerEntry)
	names := make(map[string]string)
	for _, e := range entries {
		byMerchant[e.MerchantID] = append(byMerchant[e.MerchantID], e)
		names[e.MerchantID] = e.MerchantName
	}
	adjByMerchant := make(map[string]decimal.Decimal)
	for _, a := range adjustments {
		adjByMerchant[a.MerchantID] = adjByMerchant[a.MerchantID].Add(a.Amount)
	}
	for id := range adjByMerchant {
		if _, ok := byMerchant[id]; !ok {
			byMerchant[id] = nil
		}
	}

	root := &domain.RollupNode{
		GrossAmount: sumGross(entries),
		Status:      ReduceStatus(entryStatuses(entries)),
		Children:    make(map[string]*domain.RollupNode),
		TotalAmount: decimal.Zero,
	}
	for id, merchantEntries := range byMerchant {
		node := buildMerchantNode(id, names[id], merchantEntries, adjByMerchant[id])
		root.Children[id] = node
		root.TotalAmount = root.TotalAmount.Add(node.TotalAmount)
	}
	return root
}

func buildMerchantNode(id, name string, entries []domain.LedgerEntry, adjustment decimal.Decimal) *domain.RollupNode {
	node := &domain.RollupNode{
		Key:         id,
		Label:       name,
		TotalAmount: sumNet(entries).Sub(adjustment),
		GrossAmount: sumGross(entries),
		Status:      ReduceStatus(entryStatuses(entries)),
		Children:    make(map[string]*domain.RollupNode),
	}

	byProduct := make(map[string][]domain.LedgerEntry)
	for _, e := range entries {
		byProduct[e.ProductType] = append(byProduct[e.ProductType], e)
	}
	for product, productEntries := range byProduct {
		child := &domain.RollupNode{
			Key:         product,
			TotalAmount: sumNet(productEntries),
			GrossAmount: sumGross(productEntries),
			Status:      ReduceStatus(entryStatuses(productEntries)),
		}
		byBrand := make(map[string][]domain.LedgerEntry)
		for _, e := range productEntries {
			if e.Brand != "" {
				byBrand[e.Brand] = append(byBrand[e.Brand], e)
			}
		}
		if len(byBrand) > 0 {
			child.Children = make(map[string]*domain.RollupNode)
			for brand, brandEntries := range byBrand {
				child.Children[brand] = &domain.RollupNode{
					Key:         brand,
					TotalAmount: sumNet(brandEntries),
					GrossAmount: sumGross(brandEntries),
					Status:      ReduceStatus(entryStatuses(brandEntries)),
				}
			}
		}
		node.Children[product] = child
	}

	if !adjustment.IsZero() {
		node.Children[domain.ProductTypeAdjustments] = &domain.RollupNode{
			Key:         domain.ProductTypeAdjustments,
			TotalAmount: adjustment.Neg(),
			GrossAmount: decimal.Zero,
			Status:      domain.StatusNoData,
		}
	}
	return node
}

// --- helpers ---

func aggregationErr(stage string, win window.Range, err error) error {
	return fmt.Errorf("%w: %s for %s..%s: %v",
		domain.ErrAggregationFailed, stage,
		win.Start.Format(dayKey), win.End.Format(dayKey), err)
}

func routingNumbers(entries []domain.LedgerEntry) []string {
	set := make(map[string]struct{})
	for _, e := range entries {
		if e.RoutingNumber != "" {
			set[e.RoutingNumber] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for rn := range set {
		out = append(out, rn)
	}
	sort.Strings(out)
	return out
}

func sumNet(entries []domain.LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.NetAmount)
	}
	return total
}

func sumGross(entries []domain.LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.GrossAmount)
	}
	return total
}

func sumAdjustments(adjustments []domain.AdjustmentEntry) decimal.Decimal {
	total := decimal.Zero
	for _, a := range adjustments {
		total = total.Add(a.Amount)
	}
	return total
}

func entryStatuses(entries []domain.LedgerEntry) []string {
	statuses := make([]string, 0, len(entries))
	for _, e := range entries {
		statuses = append(statuses, e.Status)
	}
	return statuses
}

func hasOrigin(entries []domain.LedgerEntry, origin domain.Origin) bool {
	for _, e := range entries {
		if e.Origin == origin {
			return true
		}
	}
	return false
}
