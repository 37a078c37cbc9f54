package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationRow строка таблицы уведомлений
type NotificationRow struct {
	ID         int                    `json:"id"`
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	ProspectID string                 `json:"prospect_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Read       bool                   `json:"read"`
	CreatedAt  time.Time              `json:"created_at"`
}

// SaveNotification сохраняет уведомление и возвращает присвоенный ID
func (db *StagingDB) SaveNotification(notificationType, title, message, prospectID string, metadata map[string]interface{}) (int, error) {
	metadataJSON := ""
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal notification metadata: %w", err)
		}
		metadataJSON = string(raw)
	}

	result, err := db.conn.Exec(`
		INSERT INTO notifications (type, title, message, prospect_id, metadata_json, read, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`,
		notificationType, title, message, prospectID, metadataJSON,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read notification id: %w", err)
	}
	return int(id), nil
}

// GetNotifications возвращает уведомления, новые первыми
func (db *StagingDB) GetNotifications(limit int, unreadOnly bool) ([]*NotificationRow, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, type, title, message, prospect_id, metadata_json, read, created_at
		FROM notifications`
	if unreadOnly {
		query += ` WHERE read = 0`
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*NotificationRow
	for rows.Next() {
		var n NotificationRow
		var prospectID, metadataJSON sql.NullString
		var read int
		var createdAt string

		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &prospectID, &metadataJSON, &read, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		n.ProspectID = prospectID.String
		n.Read = read != 0
		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &n.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal notification metadata: %w", err)
			}
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			n.CreatedAt = ts
		}

		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead помечает уведомление прочитанным
func (db *StagingDB) MarkNotificationRead(id int) error {
	result, err := db.conn.Exec(`UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
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
