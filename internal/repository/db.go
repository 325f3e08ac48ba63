// Package repository is the SQLite-backed relation store behind the
// settlement engine. The engine only reads; payout, settlement and
// order rows are written by the upstream provider sync jobs (and by the
// seed fixtures in tests and local bootstrap).
//
// Money columns are TEXT holding decimal strings; all arithmetic
// happens in Go with decimal values. Date columns are TEXT in
// YYYY-MM-DD form.
package repository

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const dayLayout = "2006-01-02"

// InitDB opens (or creates) a SQLite database at the given path and
// ensures all required tables exist. Pass ":memory:" for an in-memory
// database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS merchants (
			id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_merchants_customer ON merchants(customer_id)`,

		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL,
			full_access INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS user_merchants (
			user_id TEXT NOT NULL,
			merchant_id TEXT NOT NULL,
			PRIMARY KEY (user_id, merchant_id)
		)`,

		`CREATE TABLE IF NOT EXISTS payouts (
			id TEXT PRIMARY KEY,
			merchant_id TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			routing_number TEXT NOT NULL,
			product_type TEXT NOT NULL,
			brand TEXT NOT NULL DEFAULT '',
			gross_amount TEXT NOT NULL,
			net_amount TEXT NOT NULL,
			status TEXT NOT NULL,
			settlement_date TEXT,
			expected_settlement_date TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payouts_merchant ON payouts(merchant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payouts_routing ON payouts(routing_number)`,
		`CREATE INDEX IF NOT EXISTS idx_payouts_expected_date ON payouts(expected_settlement_date)`,

		`CREATE TABLE IF NOT EXISTS anticipations (
			id TEXT PRIMARY KEY,
			merchant_id TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			routing_number TEXT NOT NULL,
			gross_amount TEXT NOT NULL,
			net_amount TEXT NOT NULL,
			status TEXT NOT NULL,
			settlement_date TEXT,
			expected_settlement_date TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_anticipations_merchant ON anticipations(merchant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_anticipations_routing ON anticipations(routing_number)`,
		`CREATE INDEX IF NOT EXISTS idx_anticipations_expected_date ON anticipations(expected_settlement_date)`,

		`CREATE TABLE IF NOT EXISTS settlements (
			id TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS settlement_orders (
			id TEXT PRIMARY KEY,
			settlement_id TEXT NOT NULL,
			routing_number TEXT NOT NULL,
			FOREIGN KEY (settlement_id) REFERENCES settlements(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_settlement_orders_routing ON settlement_orders(routing_number)`,

		`CREATE TABLE IF NOT EXISTS pix_settlement_orders (
			id TEXT PRIMARY KEY,
			settlement_id TEXT NOT NULL,
			routing_number TEXT NOT NULL,
			FOREIGN KEY (settlement_id) REFERENCES settlements(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pix_settlement_orders_routing ON pix_settlement_orders(routing_number)`,

		`CREATE TABLE IF NOT EXISTS settlement_merchants (
			settlement_id TEXT NOT NULL,
			merchant_id TEXT NOT NULL,
			debit_adjustment TEXT NOT NULL DEFAULT '0',
			status TEXT NOT NULL,
			settlement_date TEXT,
			expected_settlement_date TEXT NOT NULL,
			PRIMARY KEY (settlement_id, merchant_id),
			FOREIGN KEY (settlement_id) REFERENCES settlements(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_settlement_merchants_merchant ON settlement_merchants(merchant_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	return nil
}

// --- helpers ---

func formatDay(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

func parseDay(s string) (time.Time, error) {
	return time.Parse(dayLayout, s)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, 2*n)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}

func appendStrings(args []any, vals []string) []any {
	for _, v := range vals {
		args = append(args, v)
	}
	return args
}
