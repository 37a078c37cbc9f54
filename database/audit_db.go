package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// CreatePromotionLogEntry создает строку журнала промоций в статусе pending.
// Журнал append-only: терминальный статус проставляется через
// UpdatePromotionLogEntry, откат - новой строкой.
func (db *StagingDB) CreatePromotionLogEntry(entry *PromotionLogEntry) error {
	recordsJSON, err := json.Marshal(entry.RecordsInserted)
	if err != nil {
		return fmt.Errorf("failed to marshal records inserted: %w", err)
	}

	now := time.Now().UTC()
	_, err = db.conn.Exec(`
		INSERT INTO promotion_log (
			promotion_id, prospect_id, client_id, status,
			records_inserted_json, error_message, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(promotion_id) DO NOTHING`,
		entry.PromotionID, entry.ProspectID, entry.ClientID, entry.Status,
		string(recordsJSON), entry.ErrorMessage,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert promotion log entry: %w", err)
	}

	entry.CreatedAt = now
	entry.UpdatedAt = now
	return nil
}

// UpdatePromotionLogEntry проставляет терминальный исход промоции
func (db *StagingDB) UpdatePromotionLogEntry(promotionID, clientID, status string, recordsInserted map[string]int, errorMessage string) error {
	recordsJSON, err := json.Marshal(recordsInserted)
	if err != nil {
		return fmt.Errorf("failed to marshal records inserted: %w", err)
	}

	result, err := db.conn.Exec(`
		UPDATE promotion_log
		SET client_id = ?, status = ?, records_inserted_json = ?, error_message = ?, updated_at = ?
		WHERE promotion_id = ?`,
		clientID, status, string(recordsJSON), errorMessage,
		time.Now().UTC().Format(time.RFC3339), promotionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update promotion log entry: %w", err)
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

// GetPromotionLogEntry возвращает строку журнала по ID промоции
func (db *StagingDB) GetPromotionLogEntry(promotionID string) (*PromotionLogEntry, error) {
	row := db.conn.QueryRow(`
		SELECT promotion_id, prospect_id, client_id, status,
		       records_inserted_json, error_message, created_at, updated_at
		FROM promotion_log WHERE promotion_id = ?`, promotionID)

	return scanPromotionLogEntry(row)
}

// GetPromotionLog возвращает журнал промоций, новые первыми
func (db *StagingDB) GetPromotionLog(limit int) ([]*PromotionLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.Query(`
		SELECT promotion_id, prospect_id, client_id, status,
		       records_inserted_json, error_message, created_at, updated_at
		FROM promotion_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query promotion log: %w", err)
	}
	defer rows.Close()

	var entries []*PromotionLogEntry
	for rows.Next() {
		entry, err := scanPromotionLogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// GetLatestPromotionForProspect возвращает последнюю промоцию проспекта.
// Используется идемпотентным триггером: повторный запуск после Confirmed
// или Failed игнорируется без явного re-arm.
func (db *StagingDB) GetLatestPromotionForProspect(prospectID string) (*PromotionLogEntry, error) {
	row := db.conn.QueryRow(`
		SELECT promotion_id, prospect_id, client_id, status,
		       records_inserted_json, error_message, created_at, updated_at
		FROM promotion_log WHERE prospect_id = ?
		ORDER BY created_at DESC LIMIT 1`, prospectID)

	return scanPromotionLogEntry(row)
}

func scanPromotionLogEntry(row rowScanner) (*PromotionLogEntry, error) {
	var entry PromotionLogEntry
	var clientID, recordsJSON, errorMessage sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&entry.PromotionID, &entry.ProspectID, &clientID, &entry.Status,
		&recordsJSON, &errorMessage, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan promotion log entry: %w", err)
	}

	entry.ClientID = clientID.String
	entry.ErrorMessage = errorMessage.String
	if recordsJSON.Valid && recordsJSON.String != "" {
		if err := json.Unmarshal([]byte(recordsJSON.String), &entry.RecordsInserted); err != nil {
			return nil, fmt.Errorf("failed to unmarshal records inserted: %w", err)
		}
	}

	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		entry.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		entry.UpdatedAt = ts
	}

	return &entry, nil
}

// SaveErrorEntry durable-запись в первичный журнал ошибок.
// Повторная отправка с тем же error_id не дублирует логическую запись.
func (db *StagingDB) SaveErrorEntry(entry *ErrorLogEntry) error {
	if entry.ResolutionStatus == "" {
		entry.ResolutionStatus = ResolutionUnresolved
	}

	now := time.Now().UTC()
	_, err := db.conn.Exec(`
		INSERT INTO error_log (
			error_id, severity, process, message, resolution_status,
			retry_count, stack_summary, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(error_id) DO NOTHING`,
		entry.ErrorID, entry.Severity, entry.Process, entry.Message, entry.ResolutionStatus,
		entry.RetryCount, entry.StackSummary,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert error log entry: %w", err)
	}

	entry.CreatedAt = now
	entry.UpdatedAt = now
	return nil
}

// resolutionOrder допустимый порядок переходов статусов резолюции.
// Переходы однонаправленные, кроме явного reopen (resolved -> unresolved).
var resolutionOrder = map[string]int{
	ResolutionUnresolved: 0,
	ResolutionInProgress: 1,
	ResolutionResolved:   2,
	ResolutionWontFix:    2,
	ResolutionArchived:   3,
}

// UpdateErrorResolution переводит статус резолюции записи об ошибке.
// reopen=true разрешает обратный переход в unresolved.
func (db *StagingDB) UpdateErrorResolution(errorID, newStatus string, reopen bool) error {
	newRank, ok := resolutionOrder[newStatus]
	if !ok {
		return fmt.Errorf("unknown resolution status: %s", newStatus)
	}

	var current string
	err := db.conn.QueryRow(`SELECT resolution_status FROM error_log WHERE error_id = ?`, errorID).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query error resolution: %w", err)
	}

	if !reopen && newRank < resolutionOrder[current] {
		return fmt.Errorf("%w: cannot move resolution from %s to %s", ErrStatusConflict, current, newStatus)
	}

	_, err = db.conn.Exec(`
		UPDATE error_log SET resolution_status = ?, updated_at = ? WHERE error_id = ?`,
		newStatus, time.Now().UTC().Format(time.RFC3339), errorID,
	)
	if err != nil {
		return fmt.Errorf("failed to update error resolution: %w", err)
	}
	return nil
}

// GetErrorEntries возвращает записи журнала ошибок, новые первыми
func (db *StagingDB) GetErrorEntries(severity string, limit int) ([]*ErrorLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT error_id, severity, process, message, resolution_status,
		       retry_count, stack_summary, created_at, updated_at
		FROM error_log`
	args := []interface{}{}
	if severity != "" {
		query += ` WHERE severity = ?`
		args = append(args, severity)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query error log: %w", err)
	}
	defer rows.Close()

	var entries []*ErrorLogEntry
	for rows.Next() {
		var entry ErrorLogEntry
		var stackSummary sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(
			&entry.ErrorID, &entry.Severity, &entry.Process, &entry.Message, &entry.ResolutionStatus,
			&entry.RetryCount, &stackSummary, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan error log entry: %w", err)
		}

		entry.StackSummary = stackSummary.String
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			entry.CreatedAt = ts
		}
		if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			entry.UpdatedAt = ts
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
