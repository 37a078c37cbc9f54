package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quoteserver/database"
)

// NotificationType тип уведомления
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

// Notification представляет уведомление
type Notification struct {
	ID         int                    `json:"id"`
	Type       NotificationType       `json:"type"`
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	Timestamp  time.Time              `json:"timestamp"`
	Read       bool                   `json:"read"`
	ProspectID string                 `json:"prospect_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NotificationService сервис для управления уведомлениями.
// Все операции выполняются через StagingDB, кеш в памяти - только
// оптимизация чтения, не источник данных.
type NotificationService struct {
	stagingDB        *database.StagingDB
	mu               sync.RWMutex
	notifications    []Notification
	maxNotifications int
}

// NewNotificationService создает новый сервис уведомлений.
// stagingDB обязателен и не может быть nil.
func NewNotificationService(stagingDB *database.StagingDB) *NotificationService {
	if stagingDB == nil {
		panic("StagingDB is required for NotificationService and cannot be nil")
	}
	return &NotificationService{
		stagingDB:        stagingDB,
		notifications:    make([]Notification, 0),
		maxNotifications: 1000,
	}
}

// AddNotification добавляет новое уведомление и возвращает созданное уведомление
func (ns *NotificationService) AddNotification(ctx context.Context, notificationType NotificationType, title, message, prospectID string, metadata map[string]interface{}) (*Notification, error) {
	dbID, err := ns.stagingDB.SaveNotification(string(notificationType), title, message, prospectID, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to save notification to database: %w", err)
	}

	notification := Notification{
		ID:         dbID,
		Type:       notificationType,
		Title:      title,
		Message:    message,
		Timestamp:  time.Now(),
		Read:       false,
		ProspectID: prospectID,
		Metadata:   metadata,
	}

	// Добавляем в память для кеширования
	ns.mu.Lock()
	ns.notifications = append([]Notification{notification}, ns.notifications...)
	if len(ns.notifications) > ns.maxNotifications {
		ns.notifications = ns.notifications[:ns.maxNotifications]
	}
	ns.mu.Unlock()

	return &notification, nil
}

// GetNotifications возвращает список уведомлений, новые первыми
func (ns *NotificationService) GetNotifications(ctx context.Context, limit int, unreadOnly bool) ([]Notification, error) {
	rows, err := ns.stagingDB.GetNotifications(limit, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications from database: %w", err)
	}

	notifications := make([]Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, Notification{
			ID:         row.ID,
			Type:       NotificationType(row.Type),
			Title:      row.Title,
			Message:    row.Message,
			Timestamp:  row.CreatedAt,
			Read:       row.Read,
			ProspectID: row.ProspectID,
			Metadata:   row.Metadata,
		})
	}

	return notifications, nil
}

// MarkAsRead помечает уведомление прочитанным
func (ns *NotificationService) MarkAsRead(ctx context.Context, id int) error {
	if err := ns.stagingDB.MarkNotificationRead(id); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	ns.mu.Lock()
	for i := range ns.notifications {
		if ns.notifications[i].ID == id {
			ns.notifications[i].Read = true
			break
		}
	}
	ns.mu.Unlock()

	return nil
}
