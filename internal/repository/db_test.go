package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// baseFixture is two merchants of one customer plus a merchant of a
// second customer, with users covering the scope variants.
func baseFixture() *Fixture {
	return &Fixture{
		Merchants: []FixtureMerchant{
			{ID: "m-1", CustomerID: "cust-1", Name: "Acme Coffee"},
			{ID: "m-2", CustomerID: "cust-1", Name: "Blue Bakery"},
			{ID: "m-9", CustomerID: "cust-2", Name: "Other Tenant"},
		},
		Users: []FixtureUser{
			{ID: "u-admin", CustomerID: "cust-1", FullAccess: true},
			{ID: "u-acme", CustomerID: "cust-1", MerchantIDs: []string{"m-1"}},
			{ID: "u-none", CustomerID: "cust-1"},
		},
	}
}

func loadFixture(t *testing.T, db *sql.DB, f *Fixture) {
	t.Helper()
	require.NoError(t, NewSeedRepo(db).Load(f))
}
