package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Имена таблиц строгой целевой схемы
const (
	TableClients          = "clients"
	TableEmployees        = "employees"
	TableComplianceFlags  = "compliance_flags"
	TableFinancialModels  = "financial_models"
	TableSavingsScenarios = "savings_scenarios"
)

// TargetTables все пять таблиц целевой схемы в порядке вставки
var TargetTables = []string{
	TableClients,
	TableEmployees,
	TableComplianceFlags,
	TableFinancialModels,
	TableSavingsScenarios,
}

// PromotionDB хранилище строгой целевой схемы клиентов.
// Записи иммутабельны после вставки: неудачная промоция откатывается
// целиком процедурой Rollback, частичные вставки не редактируются.
type PromotionDB struct {
	conn             *sql.DB
	tableCreateMutex sync.Mutex
}

// NewPromotionDB создает подключение к базе целевой схемы
func NewPromotionDB(dbPath string) (*PromotionDB, error) {
	config := DBConfig{}
	if isInMemoryDB(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open promotion database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping promotion database: %w", err)
	}

	db := &PromotionDB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate promotion database: %w", err)
	}

	return db, nil
}

// Close закрывает соединение с БД
func (db *PromotionDB) Close() error {
	return db.conn.Close()
}

// GetConnection возвращает нижележащий *sql.DB (для тестов)
func (db *PromotionDB) GetConnection() *sql.DB {
	return db.conn
}

// Insert выполняет durable-запись в таблицу целевой схемы.
// correlationID и attempt прописываются в лог для трассировки попыток.
// Payload должен соответствовать таблице: *Client, []Employee,
// *ComplianceFlagRecord, *FinancialModel или *SavingsScenarioRecord.
func (db *PromotionDB) Insert(ctx context.Context, table string, payload interface{}, correlationID string, attempt int) error {
	log.Printf("[PromotionDB] [%s] insert into %s (attempt %d)", correlationID, table, attempt)

	switch table {
	case TableClients:
		client, ok := payload.(*Client)
		if !ok {
			return fmt.Errorf("table %s expects *Client payload, got %T", table, payload)
		}
		return db.insertClient(ctx, client)
	case TableEmployees:
		employees, ok := payload.([]Employee)
		if !ok {
			return fmt.Errorf("table %s expects []Employee payload, got %T", table, payload)
		}
		return db.insertEmployees(ctx, employees)
	case TableComplianceFlags:
		flags, ok := payload.(*ComplianceFlagRecord)
		if !ok {
			return fmt.Errorf("table %s expects *ComplianceFlagRecord payload, got %T", table, payload)
		}
		return db.insertComplianceFlags(ctx, flags)
	case TableFinancialModels:
		model, ok := payload.(*FinancialModel)
		if !ok {
			return fmt.Errorf("table %s expects *FinancialModel payload, got %T", table, payload)
		}
		return db.insertFinancialModel(ctx, model)
	case TableSavingsScenarios:
		scenario, ok := payload.(*SavingsScenarioRecord)
		if !ok {
			return fmt.Errorf("table %s expects *SavingsScenarioRecord payload, got %T", table, payload)
		}
		return db.insertSavingsScenario(ctx, scenario)
	default:
		return fmt.Errorf("unknown target table: %s", table)
	}
}

func (db *PromotionDB) insertClient(ctx context.Context, c *Client) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO clients (
			client_id, prospect_id, company_name, tax_id, industry,
			employee_count, state, renewal_date, promoted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ClientID, c.ProspectID, c.CompanyName, c.TaxID, c.Industry,
		c.EmployeeCount, c.State, c.RenewalDate, c.PromotedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

func (db *PromotionDB) insertEmployees(ctx context.Context, employees []Employee) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin employees transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO employees (
			employee_id, client_id, tier, age, gender, dependents, coverage_tier, annual_claims
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare employees insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range employees {
		if _, err := stmt.ExecContext(ctx,
			e.EmployeeID, e.ClientID, e.Tier, e.Age, e.Gender,
			e.Dependents, e.CoverageTier, e.AnnualClaims,
		); err != nil {
			return fmt.Errorf("failed to insert employee %s: %w", e.EmployeeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit employees: %w", err)
	}
	return nil
}

func (db *PromotionDB) insertComplianceFlags(ctx context.Context, f *ComplianceFlagRecord) error {
	federalJSON, err := json.Marshal(f.FederalRequirements)
	if err != nil {
		return fmt.Errorf("failed to marshal federal requirements: %w", err)
	}
	stateJSON, err := json.Marshal(f.StateRequirements)
	if err != nil {
		return fmt.Errorf("failed to marshal state requirements: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO compliance_flags (
			client_id, federal_json, state_json, aca_applicable, erisa_plan
		) VALUES (?, ?, ?, ?, ?)`,
		f.ClientID, string(federalJSON), string(stateJSON), f.ACAApplicable, f.ERISAPlan,
	)
	if err != nil {
		return fmt.Errorf("failed to insert compliance flags: %w", err)
	}
	return nil
}

func (db *PromotionDB) insertFinancialModel(ctx context.Context, m *FinancialModel) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO financial_models (
			client_id, mean_claims, volatility_pct, iterations,
			p10, p50, p90, p95, p99, std_dev,
			high_utilizer_count, high_utilizer_cost,
			standard_utilizer_count, standard_utilizer_cost, cost_multiplier
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ClientID, m.MeanClaims, m.VolatilityPct, m.Iterations,
		m.P10, m.P50, m.P90, m.P95, m.P99, m.StdDev,
		m.HighUtilizerCount, m.HighUtilizerCost,
		m.StandardUtilizerCount, m.StandardUtilizerCost, m.CostMultiplier,
	)
	if err != nil {
		return fmt.Errorf("failed to insert financial model: %w", err)
	}
	return nil
}

func (db *PromotionDB) insertSavingsScenario(ctx context.Context, s *SavingsScenarioRecord) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO savings_scenarios (
			client_id, actual_claims, with_savings_amount, without_savings_amount,
			savings_amount, cost_increase, savings_percentage, increase_percentage, forward_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ClientID, s.ActualClaims, s.WithSavingsAmount, s.WithoutSavingsAmount,
		s.SavingsAmount, s.CostIncrease, s.SavingsPercentage, s.IncreasePercentage, s.ForwardJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert savings scenario: %w", err)
	}
	return nil
}

// DeletePromotedRecords удаляет записи клиента из таблиц, куда они были
// фактически вставлены (по карте recordsInserted). Используется процедурой
// отката частично завершенной промоции.
func (db *PromotionDB) DeletePromotedRecords(ctx context.Context, clientID string, recordsInserted map[string]int) error {
	var failed []string

	for _, table := range TargetTables {
		if recordsInserted[table] == 0 {
			continue
		}
		// Имена таблиц берутся только из TargetTables, не из пользовательского ввода
		query := fmt.Sprintf("DELETE FROM %s WHERE client_id = ?", table)
		if _, err := db.conn.ExecContext(ctx, query, clientID); err != nil {
			log.Printf("[PromotionDB] rollback delete from %s failed: %v", table, err)
			failed = append(failed, table)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("rollback failed for tables: %s", strings.Join(failed, ", "))
	}
	return nil
}

// GetClient возвращает клиента из целевой схемы
func (db *PromotionDB) GetClient(clientID string) (*Client, error) {
	var c Client
	err := db.conn.QueryRow(`
		SELECT client_id, prospect_id, company_name, tax_id, industry,
		       employee_count, state, renewal_date, promoted_at
		FROM clients WHERE client_id = ?`, clientID).Scan(
		&c.ClientID, &c.ProspectID, &c.CompanyName, &c.TaxID, &c.Industry,
		&c.EmployeeCount, &c.State, &c.RenewalDate, &c.PromotedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query client: %w", err)
	}
	return &c, nil
}

// CountRecords возвращает количество записей в таблице целевой схемы.
// Пустой clientID считает все записи таблицы.
func (db *PromotionDB) CountRecords(table, clientID string) (int, error) {
	valid := false
	for _, t := range TargetTables {
		if t == table {
			valid = true
			break
		}
	}
	if !valid {
		return 0, fmt.Errorf("unknown target table: %s", table)
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	args := []interface{}{}
	if clientID != "" {
		query += " WHERE client_id = ?"
		args = append(args, clientID)
	}

	var count int
	if err := db.conn.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records in %s: %w", table, err)
	}
	return count, nil
}

// MirrorErrorEntry зеркалирует запись об ошибке во вторичное durable-хранилище.
// Вызывается только для ошибок уровня high/critical.
func (db *PromotionDB) MirrorErrorEntry(entry *ErrorLogEntry) error {
	_, err := db.conn.Exec(`
		INSERT INTO error_log_mirror (error_id, severity, process, message, retry_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(error_id) DO NOTHING`,
		entry.ErrorID, entry.Severity, entry.Process, entry.Message,
		entry.RetryCount, entry.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to mirror error entry: %w", err)
	}
	return nil
}
