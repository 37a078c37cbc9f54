package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"quoteserver/database"
	"quoteserver/promotion"
	apperrors "quoteserver/server/errors"
)

// PromotionService сервис пайплайна промоции: триггер, журнал, откат.
// Триггер - перевод статуса staging-записи в client; сам конечный автомат
// живет в promotion.Orchestrator.
type PromotionService struct {
	stagingDB    *database.StagingDB
	promotionDB  *database.PromotionDB
	orchestrator *promotion.Orchestrator
}

// NewPromotionService создает сервис промоции
func NewPromotionService(stagingDB *database.StagingDB, promotionDB *database.PromotionDB, errorLog *ErrorLogService, retryConfig promotion.RetryConfig, gatekeeper *promotion.Gatekeeper) (*PromotionService, error) {
	if stagingDB == nil || promotionDB == nil {
		return nil, fmt.Errorf("stagingDB and promotionDB are required")
	}

	orchestrator := promotion.NewOrchestrator(stagingDB, promotionDB, promotionDB, errorLog).
		WithRetryConfig(retryConfig)
	if gatekeeper != nil {
		orchestrator.WithGatekeeper(gatekeeper)
	}

	return &PromotionService{
		stagingDB:    stagingDB,
		promotionDB:  promotionDB,
		orchestrator: orchestrator,
	}, nil
}

// TriggerPromotion переводит проспект в статус client и запускает промоцию.
// Повторный триггер идемпотентен; rearm явно перевзводит проспект после
// терминальной неудачи.
func (s *PromotionService) TriggerPromotion(ctx context.Context, prospectID string, rearm bool) (*promotion.Outcome, error) {
	err := s.stagingDB.TransitionStatus(prospectID, database.ProspectStatusProspect, database.ProspectStatusClient)
	switch {
	case err == nil:
		slog.Info("prospect marked for promotion", "prospect_id", prospectID)
	case errors.Is(err, database.ErrStatusConflict):
		// Статус уже client: повторный триггер, оркестратор разрулит сам
	case errors.Is(err, database.ErrNotFound):
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("Prospect %s not found", prospectID), err)
	default:
		return nil, apperrors.WrapError(err, "Failed to trigger promotion")
	}

	outcome, err := s.orchestrator.Promote(ctx, prospectID, rearm)
	if err != nil {
		switch {
		case errors.Is(err, promotion.ErrAlreadyPromoted),
			errors.Is(err, promotion.ErrPromotionInFlight),
			errors.Is(err, promotion.ErrAlreadyAttempted):
			return outcome, apperrors.NewConflictError(err.Error(), err)
		case errors.Is(err, promotion.ErrValidationFailed):
			return outcome, apperrors.NewValidationError("Promotion rejected by validation", err)
		default:
			return outcome, apperrors.WrapError(err, "Promotion failed")
		}
	}

	return outcome, nil
}

// Rollback откатывает завершенную промоцию
func (s *PromotionService) Rollback(ctx context.Context, promotionID string) (*promotion.Outcome, error) {
	outcome, err := s.orchestrator.Rollback(ctx, promotionID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Promotion %s not found", promotionID), err)
		case errors.Is(err, promotion.ErrNotRollbackable):
			return nil, apperrors.NewConflictError(err.Error(), err)
		default:
			return nil, apperrors.WrapError(err, "Rollback failed")
		}
	}
	return outcome, nil
}

// GetPromotionLog возвращает журнал промоций, новые первыми
func (s *PromotionService) GetPromotionLog(ctx context.Context, limit int) ([]*database.PromotionLogEntry, error) {
	entries, err := s.stagingDB.GetPromotionLog(limit)
	if err != nil {
		return nil, apperrors.WrapError(err, "Failed to read promotion log")
	}
	return entries, nil
}

// GetPromotion возвращает одну запись журнала промоций
func (s *PromotionService) GetPromotion(ctx context.Context, promotionID string) (*database.PromotionLogEntry, error) {
	entry, err := s.stagingDB.GetPromotionLogEntry(promotionID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Promotion %s not found", promotionID), err)
		}
		return nil, apperrors.WrapError(err, "Failed to read promotion log entry")
	}
	return entry, nil
}

// GetClient возвращает клиента из целевой схемы
func (s *PromotionService) GetClient(ctx context.Context, clientID string) (*database.Client, error) {
	client, err := s.promotionDB.GetClient(clientID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Client %s not found", clientID), err)
		}
		return nil, apperrors.WrapError(err, "Failed to read client")
	}
	return client, nil
}

// Stats агрегированная статистика по staging и целевой схеме
type Stats struct {
	Prospects       int            `json:"prospects"`
	PromotedClients int            `json:"promoted_clients"`
	TargetCounts    map[string]int `json:"target_counts"`
}

// GetStats возвращает статистику для мониторингового эндпоинта
func (s *PromotionService) GetStats(ctx context.Context) (*Stats, error) {
	prospects, err := s.stagingDB.GetAllProspects()
	if err != nil {
		return nil, apperrors.WrapError(err, "Failed to count prospects")
	}

	stats := &Stats{
		Prospects:    len(prospects),
		TargetCounts: make(map[string]int, len(database.TargetTables)),
	}
	for _, p := range prospects {
		if p.PromotionStatus == database.PromotionStatusCompleted {
			stats.PromotedClients++
		}
	}

	for _, table := range database.TargetTables {
		count, err := s.promotionDB.CountRecords(table, "")
		if err != nil {
			return nil, apperrors.WrapError(err, "Failed to count target records")
		}
		stats.TargetCounts[table] = count
	}

	return stats, nil
}
