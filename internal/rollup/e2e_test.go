package rollup

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/backoffice/internal/domain"
	"github.com/meridianpay/backoffice/internal/repository"
	"github.com/meridianpay/backoffice/internal/window"
)

// End-to-end over the real SQLite store: two settled card payouts plus a
// provisioned anticipation for one merchant, netted against a 10.00
// settlement adjustment, all on 2024-03-01.
func TestAggregateEndToEnd(t *testing.T) {
	db, err := repository.InitDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	settlementDay := "2024-03-01"
	fixture := &repository.Fixture{
		Merchants: []repository.FixtureMerchant{
			{ID: "m-a", CustomerID: "cust-1", Name: "Merchant A"},
		},
		Users: []repository.FixtureUser{
			{ID: "u-1", CustomerID: "cust-1", MerchantIDs: []string{"m-a"}},
		},
		Payouts: []repository.FixturePayout{
			{
				ID: "p-1", MerchantID: "m-a", CustomerID: "cust-1", RoutingNumber: "rn-1",
				ProductType: "CREDIT", Brand: "VISA",
				GrossAmount: "100.00", NetAmount: "100.00", Status: "SETTLED",
				ExpectedSettlementDate: settlementDay,
			},
			{
				ID: "p-2", MerchantID: "m-a", CustomerID: "cust-1", RoutingNumber: "rn-2",
				ProductType: "CREDIT", Brand: "VISA",
				GrossAmount: "50.00", NetAmount: "50.00", Status: "SETTLED",
				ExpectedSettlementDate: settlementDay,
			},
		},
		Anticipations: []repository.FixtureAnticipation{
			{
				ID: "a-1", MerchantID: "m-a", CustomerID: "cust-1", RoutingNumber: "rn-a1",
				GrossAmount: "30.00", NetAmount: "30.00", Status: "PROVISIONED",
				ExpectedSettlementDate: settlementDay,
			},
		},
		Settlements: []repository.FixtureSettlement{
			{
				ID:                  "set-1",
				OrderRoutingNumbers: []string{"rn-1"},
				Merchants: []repository.FixtureSettlementMerchant{
					{MerchantID: "m-a", DebitAdjustment: "10.00", Status: "SETTLED",
						ExpectedSettlementDate: settlementDay},
				},
			},
		},
	}
	require.NoError(t, repository.NewSeedRepo(db).Load(fixture))

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewService(
		repository.NewScopeRepo(db),
		repository.NewLedgerRepo(db, log),
		repository.NewAdjustmentRepo(db),
		2, log,
	)
	svc.clock = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }

	node, err := svc.Aggregate(context.Background(), "u-1", Params{
		ReferenceDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Granularity:   window.Day,
		GroupBy:       GroupByMerchant,
	})
	require.NoError(t, err)

	merchant := node.Children["m-a"]
	require.NotNil(t, merchant)
	assert.True(t, merchant.TotalAmount.Equal(dec("170.00")), "100+50+30-10, got %s", merchant.TotalAmount)
	assert.Equal(t, "PROVISIONED", merchant.Status)
	assert.Equal(t, "Merchant A", merchant.Label)

	adjLine := merchant.Children[domain.ProductTypeAdjustments]
	require.NotNil(t, adjLine)
	assert.True(t, adjLine.TotalAmount.Equal(dec("-10.00")), "got %s", adjLine.TotalAmount)

	assert.True(t, node.TotalAmount.Equal(merchant.TotalAmount), "root equals its only child")

	// The same caller, asked again, sees the identical rollup.
	again, err := svc.Aggregate(context.Background(), "u-1", Params{
		ReferenceDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Granularity:   window.Day,
		GroupBy:       GroupByMerchant,
	})
	require.NoError(t, err)
	assert.Equal(t, node, again)
}
