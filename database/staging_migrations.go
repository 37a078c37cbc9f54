package database

import (
	"fmt"
	"log"
)

// migrate создает таблицы staging-базы, если их еще нет
func (db *StagingDB) migrate() error {
	db.tableCreateMutex.Lock()
	defer db.tableCreateMutex.Unlock()

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS prospects (
			prospect_id TEXT PRIMARY KEY,
			company_name TEXT NOT NULL,
			tax_id TEXT,
			industry TEXT,
			employee_count INTEGER,
			state TEXT,
			renewal_date TEXT,
			status TEXT NOT NULL DEFAULT 'prospect',
			total_claims REAL DEFAULT 0,
			census_json TEXT,
			claims_json TEXT,
			promotion_status TEXT,
			target_client_id TEXT,
			promotion_timestamp TEXT,
			records_inserted_json TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prospects_status ON prospects(status)`,

		`CREATE TABLE IF NOT EXISTS prospect_artifacts (
			prospect_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			generated_at TEXT NOT NULL,
			PRIMARY KEY (prospect_id, kind)
		)`,

		`CREATE TABLE IF NOT EXISTS promotion_log (
			promotion_id TEXT PRIMARY KEY,
			prospect_id TEXT NOT NULL,
			client_id TEXT,
			status TEXT NOT NULL CHECK (status IN ('pending', 'completed', 'failed', 'rolled_back')),
			records_inserted_json TEXT,
			error_message TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_promotion_log_prospect ON promotion_log(prospect_id)`,
		`CREATE INDEX IF NOT EXISTS idx_promotion_log_status ON promotion_log(status)`,

		`CREATE TABLE IF NOT EXISTS error_log (
			error_id TEXT PRIMARY KEY,
			severity TEXT NOT NULL CHECK (severity IN ('low', 'medium', 'high', 'critical')),
			process TEXT NOT NULL,
			message TEXT NOT NULL,
			resolution_status TEXT NOT NULL DEFAULT 'unresolved',
			retry_count INTEGER DEFAULT 0,
			stack_summary TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_error_log_severity ON error_log(severity)`,
		`CREATE INDEX IF NOT EXISTS idx_error_log_process ON error_log(process)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			prospect_id TEXT,
			metadata_json TEXT,
			read INTEGER DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
	}

	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			return fmt.Errorf("staging migration failed: %w", err)
		}
	}

	log.Println("Staging database migrations completed")
	return nil
}
