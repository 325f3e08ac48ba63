// Command generate writes a deterministic seed fixture to
// testdata/seed.json. Run from the repository root:
//
//	go run ./testdata/generate
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianpay/backoffice/internal/repository"
)

const customerID = "cust-demo"

func main() {
	rng := rand.New(rand.NewSource(42))

	// Date range: 2024-03-01 to 2024-03-28.
	startDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	dayRange := 28

	fixture := &repository.Fixture{}

	for i := 1; i <= 8; i++ {
		fixture.Merchants = append(fixture.Merchants, repository.FixtureMerchant{
			ID:         fmt.Sprintf("M%03d", i),
			CustomerID: customerID,
			Name:       fmt.Sprintf("Demo Merchant %03d", i),
		})
	}

	fixture.Users = []repository.FixtureUser{
		{ID: "admin", CustomerID: customerID, FullAccess: true},
		{ID: "analyst", CustomerID: customerID, MerchantIDs: []string{"M001", "M002", "M003"}},
		{ID: "restricted", CustomerID: customerID},
	}

	type productGroup struct {
		productType string
		brands      []string
		count       int
	}
	groups := []productGroup{
		{"CREDIT", []string{"VISA", "MASTERCARD", "ELO"}, 60},
		{"DEBIT", []string{"VISA", "MASTERCARD"}, 40},
		{"PIX", nil, 50},
	}

	statuses := []string{"SETTLED", "SETTLED", "SETTLED", "PROVISIONED", "PENDING", "CANCELLED"}

	var cardRouting, pixRouting []string
	seq := 0
	for _, g := range groups {
		for i := 0; i < g.count; i++ {
			seq++
			rn := fmt.Sprintf("RN-%05d", seq)

			day := startDate.AddDate(0, 0, rng.Intn(dayRange))
			expected := day.Format("2006-01-02")
			var settled *string
			if rng.Intn(3) > 0 {
				s := day.Format("2006-01-02")
				settled = &s
			}

			gross := decimal.NewFromInt(int64(rng.Intn(95000) + 5000)).Div(decimal.NewFromInt(100))
			net := gross.Mul(decimal.RequireFromString("0.97")).Round(2)

			brand := ""
			if len(g.brands) > 0 {
				brand = g.brands[rng.Intn(len(g.brands))]
			}

			fixture.Payouts = append(fixture.Payouts, repository.FixturePayout{
				ID:                     fmt.Sprintf("PAY-%05d", seq),
				MerchantID:             fixture.Merchants[rng.Intn(len(fixture.Merchants))].ID,
				CustomerID:             customerID,
				RoutingNumber:          rn,
				ProductType:            g.productType,
				Brand:                  brand,
				GrossAmount:            gross.StringFixed(2),
				NetAmount:              net.StringFixed(2),
				Status:                 statuses[rng.Intn(len(statuses))],
				SettlementDate:         settled,
				ExpectedSettlementDate: expected,
			})

			if g.productType == "PIX" {
				pixRouting = append(pixRouting, rn)
			} else {
				cardRouting = append(cardRouting, rn)
			}
		}
	}

	for i := 1; i <= 25; i++ {
		seq++
		day := startDate.AddDate(0, 0, rng.Intn(dayRange))
		amount := decimal.NewFromInt(int64(rng.Intn(40000) + 1000)).Div(decimal.NewFromInt(100))

		fixture.Anticipations = append(fixture.Anticipations, repository.FixtureAnticipation{
			ID:                     fmt.Sprintf("ANT-%05d", i),
			MerchantID:             fixture.Merchants[rng.Intn(len(fixture.Merchants))].ID,
			CustomerID:             customerID,
			RoutingNumber:          fmt.Sprintf("RN-%05d", seq),
			GrossAmount:            amount.StringFixed(2),
			NetAmount:              amount.StringFixed(2),
			Status:                 "PROVISIONED",
			ExpectedSettlementDate: day.Format("2006-01-02"),
		})
	}

	// Bundle routing numbers into settlements; card routing numbers go
	// through the standard order path, PIX through the PIX path. Every
	// third settlement carries a merchant-level debit adjustment.
	setSeq := 0
	for len(cardRouting) > 0 || len(pixRouting) > 0 {
		setSeq++
		s := repository.FixtureSettlement{ID: fmt.Sprintf("SET-%04d", setSeq)}

		for i := 0; i < 4 && len(cardRouting) > 0; i++ {
			s.OrderRoutingNumbers = append(s.OrderRoutingNumbers, cardRouting[0])
			cardRouting = cardRouting[1:]
		}
		for i := 0; i < 3 && len(pixRouting) > 0; i++ {
			s.PixOrderRoutingNumbers = append(s.PixOrderRoutingNumbers, pixRouting[0])
			pixRouting = pixRouting[1:]
		}

		if setSeq%3 == 0 {
			day := startDate.AddDate(0, 0, rng.Intn(dayRange)).Format("2006-01-02")
			adjustment := decimal.NewFromInt(int64(rng.Intn(2000) + 100)).Div(decimal.NewFromInt(100))
			s.Merchants = append(s.Merchants, repository.FixtureSettlementMerchant{
				MerchantID:             fixture.Merchants[rng.Intn(len(fixture.Merchants))].ID,
				DebitAdjustment:        adjustment.StringFixed(2),
				Status:                 "SETTLED",
				ExpectedSettlementDate: day,
			})
		}

		fixture.Settlements = append(fixture.Settlements, s)
	}

	out := filepath.Join("testdata", "seed.json")
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal fixture: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", out, err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s: %d payouts, %d anticipations, %d settlements\n",
		out, len(fixture.Payouts), len(fixture.Anticipations), len(fixture.Settlements))
}
