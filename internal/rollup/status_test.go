package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridianpay/backoffice/internal/domain"
)

func TestReduceStatusProvisionedWins(t *testing.T) {
	assert.Equal(t, "PROVISIONED", ReduceStatus([]string{"PROVISIONED", "SETTLED"}))
	assert.Equal(t, "PROVISIONED", ReduceStatus([]string{"SETTLED", "PENDING", "PROVISIONED"}))
}

func TestReduceStatusAllSettled(t *testing.T) {
	assert.Equal(t, "SETTLED", ReduceStatus([]string{"SETTLED", "SETTLED"}))
	// Settled-like variants from the provider still count as settled.
	assert.Equal(t, "SETTLED", ReduceStatus([]string{"SETTLED", "PARTIALLY_SETTLED"}))
}

func TestReduceStatusMinNonSettled(t *testing.T) {
	assert.Equal(t, "PENDING", ReduceStatus([]string{"PENDING", "SETTLED"}))
	assert.Equal(t, "BLOCKED", ReduceStatus([]string{"PENDING", "BLOCKED", "SETTLED"}))
}

func TestReduceStatusUnknownStatusFailsSafe(t *testing.T) {
	// A status never seen before is treated as non-settled, not an error.
	assert.Equal(t, "SOMETHING_NEW", ReduceStatus([]string{"SOMETHING_NEW", "SETTLED"}))
}

func TestReduceStatusEmpty(t *testing.T) {
	assert.Equal(t, domain.StatusNoData, ReduceStatus(nil))
}

func TestReduceStatusOrderIndependent(t *testing.T) {
	a := ReduceStatus([]string{"PENDING", "BLOCKED", "SETTLED"})
	b := ReduceStatus([]string{"SETTLED", "BLOCKED", "PENDING"})
	assert.Equal(t, a, b)
}
