package rollup

import (
	"sort"
	"strings"

	"github.com/meridianpay/backoffice/internal/domain"
)

// ReduceStatus collapses the raw per-record statuses of a group into one
// rollup status. Pure and order-independent. Priority, first match wins:
//
//  1. any PROVISIONED record makes the group PROVISIONED;
//  2. otherwise, if every record is settled-like, the group is SETTLED;
//  3. otherwise the group takes the smallest non-settled status.
//
// An empty group reduces to NO_DATA. Upstream statuses are free-form
// strings, so anything unrecognised lands in branch 3 and fails safe as
// non-settled.
func ReduceStatus(statuses []string) string {
	if len(statuses) == 0 {
		return domain.StatusNoData
	}

	allSettled := true
	for _, s := range statuses {
		if s == domain.StatusProvisioned {
			return domain.StatusProvisioned
		}
		if !settledLike(s) {
			allSettled = false
		}
	}
	if allSettled {
		return domain.StatusSettled
	}
	return minNonSettled(statuses)
}

func settledLike(s string) bool {
	return strings.Contains(s, domain.StatusSettled)
}

// minNonSettled picks the lexicographically smallest non-settled status.
// The tie-break is deterministic but not a business rule; it is kept in
// this one function so it can be replaced without touching grouping.
func minNonSettled(statuses []string) string {
	var rest []string
	for _, s := range statuses {
		if !settledLike(s) {
			rest = append(rest, s)
		}
	}
	sort.Strings(rest)
	return rest[0]
}
