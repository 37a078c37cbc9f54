package database

import (
	"fmt"
	"log"
)

// migrate создает таблицы строгой целевой схемы.
// Каждая колонка типизирована: в отличие от staging-схемы здесь нет
// JSON-полей произвольной формы, кроме массивов требований комплаенса
// и прогнозных лет сценария экономии.
func (db *PromotionDB) migrate() error {
	db.tableCreateMutex.Lock()
	defer db.tableCreateMutex.Unlock()

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			client_id TEXT PRIMARY KEY,
			prospect_id TEXT NOT NULL UNIQUE,
			company_name TEXT NOT NULL,
			tax_id TEXT NOT NULL,
			industry TEXT,
			employee_count INTEGER NOT NULL,
			state TEXT NOT NULL,
			renewal_date TEXT,
			promoted_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS employees (
			employee_id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			tier TEXT NOT NULL CHECK (tier IN ('high', 'standard')),
			age INTEGER,
			gender TEXT,
			dependents INTEGER,
			coverage_tier TEXT,
			annual_claims REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_employees_client ON employees(client_id)`,

		`CREATE TABLE IF NOT EXISTS compliance_flags (
			client_id TEXT PRIMARY KEY,
			federal_json TEXT NOT NULL,
			state_json TEXT NOT NULL,
			aca_applicable INTEGER NOT NULL,
			erisa_plan INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS financial_models (
			client_id TEXT PRIMARY KEY,
			mean_claims REAL NOT NULL,
			volatility_pct REAL NOT NULL,
			iterations INTEGER NOT NULL,
			p10 REAL, p50 REAL, p90 REAL, p95 REAL, p99 REAL,
			std_dev REAL,
			high_utilizer_count INTEGER,
			high_utilizer_cost REAL,
			standard_utilizer_count INTEGER,
			standard_utilizer_cost REAL,
			cost_multiplier REAL
		)`,

		`CREATE TABLE IF NOT EXISTS savings_scenarios (
			client_id TEXT PRIMARY KEY,
			actual_claims REAL NOT NULL,
			with_savings_amount REAL NOT NULL,
			without_savings_amount REAL NOT NULL,
			savings_amount REAL NOT NULL,
			cost_increase REAL NOT NULL,
			savings_percentage REAL,
			increase_percentage REAL,
			forward_json TEXT
		)`,

		// Вторичное durable-хранилище для зеркалирования high/critical ошибок
		`CREATE TABLE IF NOT EXISTS error_log_mirror (
			error_id TEXT PRIMARY KEY,
			severity TEXT NOT NULL,
			process TEXT NOT NULL,
			message TEXT NOT NULL,
			retry_count INTEGER DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
	}

	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			return fmt.Errorf("promotion migration failed: %w", err)
		}
	}

	log.Println("Promotion database migrations completed")
	return nil
}
