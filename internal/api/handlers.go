package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meridianpay/backoffice/internal/domain"
	"github.com/meridianpay/backoffice/internal/rollup"
	"github.com/meridianpay/backoffice/internal/window"
)

// Aggregator is the settlement engine surface the API exposes.
type Aggregator interface {
	Aggregate(ctx context.Context, callerID string, p rollup.Params) (*domain.RollupNode, error)
	ReceiptCalendar(ctx context.Context, callerID string, ref time.Time) ([]domain.DayStat, error)
}

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	svc Aggregator
	log *logrus.Entry
}

// --- helpers ---

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Error("encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses.
// Zero-scope and no-window results are successes and never reach here.
func (h *Handlers) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		h.writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, domain.ErrInvalidWindow):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAggregationFailed):
		h.log.WithError(err).Error("aggregation failed")
		h.writeError(w, http.StatusBadGateway, "aggregation failed, retry later")
	default:
		h.log.WithError(err).Error("unexpected error")
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func callerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// parseDate accepts YYYY-MM-DD; empty means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", domain.ErrInvalidWindow, s)
	}
	return t, nil
}

func parseGranularity(s string) (window.Granularity, error) {
	switch s {
	case "", string(window.Day):
		return window.Day, nil
	case string(window.Month):
		return window.Month, nil
	default:
		return "", fmt.Errorf("%w: bad granularity %q", domain.ErrInvalidWindow, s)
	}
}

func parseGroupBy(s string) (rollup.GroupBy, error) {
	switch s {
	case "", string(rollup.GroupNone):
		return rollup.GroupNone, nil
	case string(rollup.GroupByDay):
		return rollup.GroupByDay, nil
	case string(rollup.GroupByMerchant):
		return rollup.GroupByMerchant, nil
	default:
		return "", fmt.Errorf("bad group_by %q", s)
	}
}

// --- handlers ---

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) GetRollup(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		h.writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	q := r.URL.Query()

	ref, err := parseDate(q.Get("date"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	gran, err := parseGranularity(q.Get("granularity"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	groupBy, err := parseGroupBy(q.Get("group_by"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := rollup.Params{
		ReferenceDate: ref,
		Granularity:   gran,
		GroupBy:       groupBy,
		Filter: domain.LedgerFilter{
			MerchantName: q.Get("merchant_name"),
			Brand:        q.Get("brand"),
			Status:       q.Get("status"),
		},
	}

	node, err := h.svc.Aggregate(r.Context(), caller, params)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, node)
}

func (h *Handlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		h.writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	ref, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	stats, err := h.svc.ReceiptCalendar(r.Context(), caller, ref)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"days": stats})
}
