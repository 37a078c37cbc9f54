package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound запись не найдена
var ErrNotFound = errors.New("record not found")

// ErrStatusConflict недопустимый переход статуса staging-записи
var ErrStatusConflict = errors.New("status transition conflict")

// DBConfig конфигурация подключения к БД
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// StagingDB обертка для работы со staging-базой проспектов.
// Хранит гибкие записи проспектов, вычисленные артефакты движков
// и первичные журналы промоций и ошибок.
type StagingDB struct {
	conn             *sql.DB
	tableCreateMutex sync.Mutex // Мьютекс для создания таблиц (защита от race condition)
}

// isInMemoryDB определяет, что путь относится к in-memory SQLite
func isInMemoryDB(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}

	// Формат file:memdb?_mode=memory&cache=shared также хранит БД в памяти
	if strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory") {
		return true
	}

	return false
}

// NewStagingDB создает новое подключение к staging-базе данных
func NewStagingDB(dbPath string) (*StagingDB, error) {
	config := DBConfig{}

	// Для in-memory SQLite требуется использовать ровно одно соединение,
	// иначе каждое новое соединение будет получать пустую БД без таблиц
	if isInMemoryDB(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}

	return NewStagingDBWithConfig(dbPath, config)
}

// NewStagingDBWithConfig создает подключение к staging-базе с конфигурацией пула
func NewStagingDBWithConfig(dbPath string, config DBConfig) (*StagingDB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open staging database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping staging database: %w", err)
	}

	db := &StagingDB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate staging database: %w", err)
	}

	return db, nil
}

// Close закрывает соединение с БД
func (db *StagingDB) Close() error {
	return db.conn.Close()
}

// Ping проверяет соединение с БД
func (db *StagingDB) Ping() error {
	return db.conn.Ping()
}

// GetConnection возвращает нижележащий *sql.DB (для тестов и миграций)
func (db *StagingDB) GetConnection() *sql.DB {
	return db.conn
}

// CreateProspect создает новую staging-запись проспекта
func (db *StagingDB) CreateProspect(p *Prospect) error {
	if p.ProspectID == "" {
		return fmt.Errorf("prospect id is required")
	}
	if p.Status == "" {
		p.Status = ProspectStatusProspect
	}

	censusJSON, err := json.Marshal(p.Census)
	if err != nil {
		return fmt.Errorf("failed to marshal census: %w", err)
	}
	claimsJSON, err := json.Marshal(p.ClaimsHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal claims history: %w", err)
	}

	now := time.Now().UTC()
	_, err = db.conn.Exec(`
		INSERT INTO prospects (
			prospect_id, company_name, tax_id, industry, employee_count,
			state, renewal_date, status, total_claims, census_json, claims_json,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ProspectID, p.CompanyName, p.TaxID, p.Industry, p.EmployeeCount,
		p.State, p.RenewalDate, p.Status, p.TotalClaims, string(censusJSON), string(claimsJSON),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert prospect: %w", err)
	}

	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetProspect возвращает staging-запись по ID
func (db *StagingDB) GetProspect(prospectID string) (*Prospect, error) {
	row := db.conn.QueryRow(`
		SELECT prospect_id, company_name, tax_id, industry, employee_count,
		       state, renewal_date, status, total_claims, census_json, claims_json,
		       promotion_status, target_client_id, promotion_timestamp, records_inserted_json,
		       created_at, updated_at
		FROM prospects WHERE prospect_id = ?`, prospectID)

	return scanProspect(row)
}

// GetAllProspects возвращает все staging-записи, новые первыми
func (db *StagingDB) GetAllProspects() ([]*Prospect, error) {
	rows, err := db.conn.Query(`
		SELECT prospect_id, company_name, tax_id, industry, employee_count,
		       state, renewal_date, status, total_claims, census_json, claims_json,
		       promotion_status, target_client_id, promotion_timestamp, records_inserted_json,
		       created_at, updated_at
		FROM prospects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query prospects: %w", err)
	}
	defer rows.Close()

	var prospects []*Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		prospects = append(prospects, p)
	}

	return prospects, rows.Err()
}

// rowScanner общий интерфейс для *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProspect(row rowScanner) (*Prospect, error) {
	var p Prospect
	var censusJSON, claimsJSON string
	var promotionStatus, targetClientID, promotionTimestamp, recordsJSON sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&p.ProspectID, &p.CompanyName, &p.TaxID, &p.Industry, &p.EmployeeCount,
		&p.State, &p.RenewalDate, &p.Status, &p.TotalClaims, &censusJSON, &claimsJSON,
		&promotionStatus, &targetClientID, &promotionTimestamp, &recordsJSON,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan prospect: %w", err)
	}

	if censusJSON != "" {
		if err := json.Unmarshal([]byte(censusJSON), &p.Census); err != nil {
			return nil, fmt.Errorf("failed to unmarshal census: %w", err)
		}
	}
	if claimsJSON != "" {
		if err := json.Unmarshal([]byte(claimsJSON), &p.ClaimsHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal claims history: %w", err)
		}
	}
	if recordsJSON.Valid && recordsJSON.String != "" {
		if err := json.Unmarshal([]byte(recordsJSON.String), &p.RecordsInserted); err != nil {
			return nil, fmt.Errorf("failed to unmarshal records inserted: %w", err)
		}
	}

	p.PromotionStatus = promotionStatus.String
	p.TargetClientID = targetClientID.String
	p.PromotionTimestamp = promotionTimestamp.String

	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		p.UpdatedAt = ts
	}

	return &p, nil
}

// TransitionStatus атомарно переводит статус проспекта из fromStatus в toStatus.
// Возвращает ErrStatusConflict, если текущий статус не совпадает с ожидаемым -
// это защита от повторного триггера промоции (идемпотентность на уровне триггера).
func (db *StagingDB) TransitionStatus(prospectID, fromStatus, toStatus string) error {
	result, err := db.conn.Exec(`
		UPDATE prospects SET status = ?, updated_at = ?
		WHERE prospect_id = ? AND status = ?`,
		toStatus, time.Now().UTC().Format(time.RFC3339), prospectID, fromStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to transition status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		// Либо проспект не существует, либо статус уже изменился
		if _, err := db.GetProspect(prospectID); err != nil {
			return err
		}
		return ErrStatusConflict
	}

	return nil
}

// UpdatePromotionOutcome записывает результат промоции в staging-запись.
// Это единственная мутация staging-записи со стороны пайплайна промоции.
func (db *StagingDB) UpdatePromotionOutcome(prospectID, promotionStatus, targetClientID string, recordsInserted map[string]int) error {
	recordsJSON, err := json.Marshal(recordsInserted)
	if err != nil {
		return fmt.Errorf("failed to marshal records inserted: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	result, err := db.conn.Exec(`
		UPDATE prospects
		SET promotion_status = ?, target_client_id = ?, promotion_timestamp = ?,
		    records_inserted_json = ?, updated_at = ?
		WHERE prospect_id = ?`,
		promotionStatus, targetClientID, now, string(recordsJSON), now, prospectID,
	)
	if err != nil {
		return fmt.Errorf("failed to update promotion outcome: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
