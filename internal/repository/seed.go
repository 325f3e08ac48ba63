package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Fixture is the JSON shape consumed by SeedRepo.Load. In production
// these tables are populated by the provider sync jobs; fixtures exist
// for local bootstrap and tests.
type Fixture struct {
	Merchants     []FixtureMerchant     `json:"merchants"`
	Users         []FixtureUser         `json:"users"`
	Payouts       []FixturePayout       `json:"payouts"`
	Anticipations []FixtureAnticipation `json:"anticipations"`
	Settlements   []FixtureSettlement   `json:"settlements"`
}

type FixtureMerchant struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
}

type FixtureUser struct {
	ID          string   `json:"id"`
	CustomerID  string   `json:"customer_id"`
	FullAccess  bool     `json:"full_access"`
	MerchantIDs []string `json:"merchant_ids,omitempty"`
}

type FixturePayout struct {
	ID                     string  `json:"id"`
	MerchantID             string  `json:"merchant_id"`
	CustomerID             string  `json:"customer_id"`
	RoutingNumber          string  `json:"routing_number"`
	ProductType            string  `json:"product_type"`
	Brand                  string  `json:"brand,omitempty"`
	GrossAmount            string  `json:"gross_amount"`
	NetAmount              string  `json:"net_amount"`
	Status                 string  `json:"status"`
	SettlementDate         *string `json:"settlement_date,omitempty"`
	ExpectedSettlementDate string  `json:"expected_settlement_date"`
}

type FixtureAnticipation struct {
	ID                     string  `json:"id"`
	MerchantID             string  `json:"merchant_id"`
	CustomerID             string  `json:"customer_id"`
	RoutingNumber          string  `json:"routing_number"`
	GrossAmount            string  `json:"gross_amount"`
	NetAmount              string  `json:"net_amount"`
	Status                 string  `json:"status"`
	SettlementDate         *string `json:"settlement_date,omitempty"`
	ExpectedSettlementDate string  `json:"expected_settlement_date"`
}

type FixtureSettlement struct {
	ID                     string                      `json:"id"`
	OrderRoutingNumbers    []string                    `json:"order_routing_numbers,omitempty"`
	PixOrderRoutingNumbers []string                    `json:"pix_order_routing_numbers,omitempty"`
	Merchants              []FixtureSettlementMerchant `json:"merchants,omitempty"`
}

type FixtureSettlementMerchant struct {
	MerchantID             string  `json:"merchant_id"`
	DebitAdjustment        string  `json:"debit_adjustment"`
	Status                 string  `json:"status"`
	SettlementDate         *string `json:"settlement_date,omitempty"`
	ExpectedSettlementDate string  `json:"expected_settlement_date"`
}

// SeedRepo writes fixture rows. Only cmd/server bootstrap and tests use
// it; the engine itself never writes.
type SeedRepo struct {
	db *sql.DB
}

func NewSeedRepo(db *sql.DB) *SeedRepo {
	return &SeedRepo{db: db}
}

func (r *SeedRepo) CountPayouts() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM payouts").Scan(&count)
	return count, err
}

// Load inserts the whole fixture in one transaction.
func (r *SeedRepo) Load(f *Fixture) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, m := range f.Merchants {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO merchants (id, customer_id, name) VALUES (?,?,?)",
			m.ID, m.CustomerID, m.Name,
		); err != nil {
			return fmt.Errorf("insert merchant %s: %w", m.ID, err)
		}
	}

	for _, u := range f.Users {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO users (id, customer_id, full_access) VALUES (?,?,?)",
			u.ID, u.CustomerID, u.FullAccess,
		); err != nil {
			return fmt.Errorf("insert user %s: %w", u.ID, err)
		}
		for _, mid := range u.MerchantIDs {
			if _, err := tx.Exec(
				"INSERT OR IGNORE INTO user_merchants (user_id, merchant_id) VALUES (?,?)",
				u.ID, mid,
			); err != nil {
				return fmt.Errorf("grant merchant %s to %s: %w", mid, u.ID, err)
			}
		}
	}

	for _, p := range f.Payouts {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO payouts
			(id, merchant_id, customer_id, routing_number, product_type, brand,
			 gross_amount, net_amount, status, settlement_date, expected_settlement_date)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			p.ID, p.MerchantID, p.CustomerID, p.RoutingNumber, p.ProductType, p.Brand,
			p.GrossAmount, p.NetAmount, p.Status, nullable(p.SettlementDate), p.ExpectedSettlementDate,
		); err != nil {
			return fmt.Errorf("insert payout %s: %w", p.ID, err)
		}
	}

	for _, a := range f.Anticipations {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO anticipations
			(id, merchant_id, customer_id, routing_number,
			 gross_amount, net_amount, status, settlement_date, expected_settlement_date)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			a.ID, a.MerchantID, a.CustomerID, a.RoutingNumber,
			a.GrossAmount, a.NetAmount, a.Status, nullable(a.SettlementDate), a.ExpectedSettlementDate,
		); err != nil {
			return fmt.Errorf("insert anticipation %s: %w", a.ID, err)
		}
	}

	for _, s := range f.Settlements {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO settlements (id) VALUES (?)", s.ID,
		); err != nil {
			return fmt.Errorf("insert settlement %s: %w", s.ID, err)
		}
		for _, rn := range s.OrderRoutingNumbers {
			if _, err := tx.Exec(
				"INSERT OR IGNORE INTO settlement_orders (id, settlement_id, routing_number) VALUES (?,?,?)",
				uuid.NewString(), s.ID, rn,
			); err != nil {
				return fmt.Errorf("insert order for %s: %w", s.ID, err)
			}
		}
		for _, rn := range s.PixOrderRoutingNumbers {
			if _, err := tx.Exec(
				"INSERT OR IGNORE INTO pix_settlement_orders (id, settlement_id, routing_number) VALUES (?,?,?)",
				uuid.NewString(), s.ID, rn,
			); err != nil {
				return fmt.Errorf("insert pix order for %s: %w", s.ID, err)
			}
		}
		for _, sm := range s.Merchants {
			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO settlement_merchants
				(settlement_id, merchant_id, debit_adjustment, status, settlement_date, expected_settlement_date)
				VALUES (?,?,?,?,?,?)`,
				s.ID, sm.MerchantID, sm.DebitAdjustment, sm.Status,
				nullable(sm.SettlementDate), sm.ExpectedSettlementDate,
			); err != nil {
				return fmt.Errorf("insert adjustment for %s/%s: %w", s.ID, sm.MerchantID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
