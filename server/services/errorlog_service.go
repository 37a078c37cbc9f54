package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"quoteserver/database"
	apperrors "quoteserver/server/errors"
)

// maxErrorMessageLength предельная длина сообщения в журнале ошибок
const maxErrorMessageLength = 2000

// secretPatterns фрагменты, вырезаемые из сообщений перед записью в журнал
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|token|password|secret)\s*[=:]\s*\S+`),
	regexp.MustCompile(`(?i)bearer\s+\S+`),
}

// ErrorLogService центральный приемник ошибок пайплайна.
// Классифицирует, записывает в первичный журнал, зеркалирует high/critical
// во второе durable-хранилище и поднимает уведомление выше порога.
// Сбой зеркала или уведомления не проваливает основную запись.
type ErrorLogService struct {
	stagingDB     *database.StagingDB
	promotionDB   *database.PromotionDB
	notifications *NotificationService
	metrics       *apperrors.ErrorMetricsCollector

	notifyThreshold apperrors.Severity
}

// NewErrorLogService создает сервис журнала ошибок.
// promotionDB и notifications опциональны: без них зеркалирование
// и уведомления отключены.
func NewErrorLogService(stagingDB *database.StagingDB, promotionDB *database.PromotionDB, notifications *NotificationService, notifyThreshold apperrors.Severity) *ErrorLogService {
	if stagingDB == nil {
		panic("StagingDB is required for ErrorLogService and cannot be nil")
	}
	if notifyThreshold == "" {
		notifyThreshold = apperrors.SeverityHigh
	}
	return &ErrorLogService{
		stagingDB:       stagingDB,
		promotionDB:     promotionDB,
		notifications:   notifications,
		metrics:         apperrors.NewErrorMetricsCollector(),
		notifyThreshold: notifyThreshold,
	}
}

// Metrics возвращает коллектор метрик ошибок
func (s *ErrorLogService) Metrics() *apperrors.ErrorMetricsCollector {
	return s.metrics
}

// ReportError принимает ошибку от пайплайна промоции.
// Сигнатура совместима с promotion.ErrorReporter.
func (s *ErrorLogService) ReportError(process, message string, retryCount int) {
	s.Log(context.Background(), process, message, retryCount, "")
}

// Log классифицирует и записывает ошибку. explicitSeverity, если задан,
// имеет приоритет над классификатором. Возвращает присвоенный errorID.
func (s *ErrorLogService) Log(ctx context.Context, process, message string, retryCount int, explicitSeverity apperrors.Severity) string {
	sanitized := sanitizeMessage(message)
	severity := apperrors.Classify(sanitized, process, apperrors.ClassifyOptions{
		RetryCount:       retryCount,
		ExplicitSeverity: explicitSeverity,
	})

	entry := &database.ErrorLogEntry{
		ErrorID:          uuid.New().String(),
		Severity:         string(severity),
		Process:          process,
		Message:          sanitized,
		ResolutionStatus: database.ResolutionUnresolved,
		RetryCount:       retryCount,
		StackSummary:     stackSummary(3),
		CreatedAt:        time.Now().UTC(),
	}

	// Первичный журнал - единственная запись, сбой которой виден вызывающему
	if err := s.stagingDB.SaveErrorEntry(entry); err != nil {
		slog.Error("failed to write primary error log",
			"error", err, "process", process, "severity", severity)
		return ""
	}

	s.metrics.RecordError(severity, process, sanitized, "")

	// Зеркало и уведомление вторичны: их сбои глотаются с записью в лог
	if severity.AtLeast(apperrors.SeverityHigh) && s.promotionDB != nil {
		if err := s.promotionDB.MirrorErrorEntry(entry); err != nil {
			slog.Warn("failed to mirror error entry", "error", err, "error_id", entry.ErrorID)
		}
	}

	if severity.AtLeast(s.notifyThreshold) && s.notifications != nil {
		title := fmt.Sprintf("%s error in %s", strings.ToUpper(string(severity)), process)
		_, err := s.notifications.AddNotification(ctx, NotificationTypeError, title, sanitized, "", map[string]interface{}{
			"error_id":    entry.ErrorID,
			"severity":    string(severity),
			"process":     process,
			"retry_count": retryCount,
		})
		if err != nil {
			slog.Warn("failed to raise error notification", "error", err, "error_id", entry.ErrorID)
		}
	}

	return entry.ErrorID
}

// GetErrors возвращает записи журнала, опционально отфильтрованные по severity
func (s *ErrorLogService) GetErrors(ctx context.Context, severity string, limit int) ([]*database.ErrorLogEntry, error) {
	entries, err := s.stagingDB.GetErrorEntries(severity, limit)
	if err != nil {
		return nil, apperrors.WrapError(err, "Failed to read error log")
	}
	return entries, nil
}

// UpdateResolution переводит запись журнала в новый статус резолюции.
// Переходы однонаправленные, reopen - явное исключение.
func (s *ErrorLogService) UpdateResolution(ctx context.Context, errorID, newStatus string, reopen bool) error {
	if err := s.stagingDB.UpdateErrorResolution(errorID, newStatus, reopen); err != nil {
		return err
	}
	slog.Info("error resolution updated", "error_id", errorID, "status", newStatus, "reopen", reopen)
	return nil
}

// sanitizeMessage убирает секреты и управляющие символы, ограничивает длину
func sanitizeMessage(message string) string {
	cleaned := message
	for _, pattern := range secretPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "[REDACTED]")
	}
	cleaned = strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, cleaned)
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) > maxErrorMessageLength {
		cleaned = cleaned[:maxErrorMessageLength] + "..."
	}
	return cleaned
}

// stackSummary короткая сводка стека вызовов для диагностики
func stackSummary(skip int) string {
	pcs := make([]uintptr, 5)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var parts []string
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			parts = append(parts, fmt.Sprintf("%s:%d", frame.Function, frame.Line))
		}
		if !more || len(parts) >= 3 {
			break
		}
	}
	return strings.Join(parts, " <- ")
}
