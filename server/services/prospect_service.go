package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"quoteserver/actuarial"
	"quoteserver/compliance"
	"quoteserver/database"
	apperrors "quoteserver/server/errors"
)

// ProspectService сервис staging-записей проспектов и запусков движков.
// Движки чистые и синхронные: сервис загружает входные данные, запускает
// движок и сохраняет артефакт. Ошибки движков возвращаются вызывающему
// напрямую, без преобразования в терминальные состояния пайплайна.
type ProspectService struct {
	stagingDB *database.StagingDB
	errorLog  *ErrorLogService

	monteCarlo *actuarial.MonteCarloEngine
	splitter   *actuarial.UtilizerSplitEngine
	savings    *actuarial.SavingsScenarioEngine
	compliance *compliance.Matcher

	defaultIterations int
}

// NewProspectService создает сервис проспектов
func NewProspectService(stagingDB *database.StagingDB, errorLog *ErrorLogService, defaultIterations int) (*ProspectService, error) {
	if stagingDB == nil {
		return nil, fmt.Errorf("stagingDB is required")
	}
	if defaultIterations < 1 {
		defaultIterations = actuarial.DefaultIterations
	}

	return &ProspectService{
		stagingDB:         stagingDB,
		errorLog:          errorLog,
		monteCarlo:        actuarial.NewMonteCarloEngine(),
		splitter:          actuarial.NewUtilizerSplitEngine(),
		savings:           actuarial.NewSavingsScenarioEngine(),
		compliance:        compliance.NewMatcher(),
		defaultIterations: defaultIterations,
	}, nil
}

// CreateProspect создает staging-запись проспекта
func (s *ProspectService) CreateProspect(ctx context.Context, p *database.Prospect) (*database.Prospect, error) {
	if p == nil {
		return nil, apperrors.NewValidationError("Prospect payload is required", nil)
	}
	if strings.TrimSpace(p.CompanyName) == "" {
		return nil, apperrors.NewValidationError("Company name is required", nil)
	}

	if p.ProspectID == "" {
		p.ProspectID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = database.ProspectStatusProspect
	}

	if err := s.stagingDB.CreateProspect(p); err != nil {
		return nil, apperrors.WrapError(err, "Failed to create prospect")
	}

	slog.Info("prospect created", "prospect_id", p.ProspectID, "company", p.CompanyName)
	return p, nil
}

// GetProspect возвращает staging-запись проспекта
func (s *ProspectService) GetProspect(ctx context.Context, prospectID string) (*database.Prospect, error) {
	p, err := s.stagingDB.GetProspect(prospectID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Prospect %s not found", prospectID), err)
		}
		return nil, apperrors.WrapError(err, "Failed to load prospect")
	}
	return p, nil
}

// ListProspects возвращает все staging-записи
func (s *ProspectService) ListProspects(ctx context.Context) ([]*database.Prospect, error) {
	prospects, err := s.stagingDB.GetAllProspects()
	if err != nil {
		return nil, apperrors.WrapError(err, "Failed to list prospects")
	}
	return prospects, nil
}

// GetArtifacts возвращает все вычисленные артефакты проспекта
func (s *ProspectService) GetArtifacts(ctx context.Context, prospectID string) (*database.ArtifactSet, error) {
	if _, err := s.GetProspect(ctx, prospectID); err != nil {
		return nil, err
	}
	artifacts, err := s.stagingDB.LoadArtifacts(prospectID)
	if err != nil {
		return nil, apperrors.WrapError(err, "Failed to load artifacts")
	}
	return artifacts, nil
}

// RunSimulation запускает Monte Carlo симуляцию и сохраняет артефакт.
// При iterations <= 0 используется значение из конфигурации.
func (s *ProspectService) RunSimulation(ctx context.Context, prospectID string, volatilityPct float64, iterations int) (*actuarial.SimulationResult, error) {
	p, err := s.GetProspect(ctx, prospectID)
	if err != nil {
		return nil, err
	}
	if iterations <= 0 {
		iterations = s.defaultIterations
	}

	result, err := s.monteCarlo.Simulate(p.TotalClaims.Float64(), volatilityPct, iterations)
	if err != nil {
		if errors.Is(err, actuarial.ErrInvalidInput) {
			return nil, apperrors.NewValidationError(err.Error(), err)
		}
		s.reportEngineError("simulation", prospectID, err)
		return nil, apperrors.WrapError(err, "Simulation failed")
	}

	if err := s.stagingDB.SaveArtifact(prospectID, database.ArtifactSimulation, result, result.GeneratedAt); err != nil {
		s.reportEngineError("simulation", prospectID, err)
		return nil, apperrors.WrapError(err, "Failed to persist simulation artifact")
	}

	slog.Info("simulation completed",
		"prospect_id", prospectID, "iterations", iterations, "p95", result.Summary.P95)
	return result, nil
}

// RunSplit запускает разбиение 10/85 и сохраняет артефакт
func (s *ProspectService) RunSplit(ctx context.Context, prospectID string) (*actuarial.UtilizerSplit, error) {
	p, err := s.GetProspect(ctx, prospectID)
	if err != nil {
		return nil, err
	}

	result, err := s.splitter.Split(p.EmployeeCount, p.TotalClaims.Float64())
	if err != nil {
		if errors.Is(err, actuarial.ErrInvalidInput) {
			return nil, apperrors.NewValidationError(err.Error(), err)
		}
		s.reportEngineError("split", prospectID, err)
		return nil, apperrors.WrapError(err, "Utilizer split failed")
	}

	if err := s.stagingDB.SaveArtifact(prospectID, database.ArtifactSplit, result, result.GeneratedAt); err != nil {
		s.reportEngineError("split", prospectID, err)
		return nil, apperrors.WrapError(err, "Failed to persist split artifact")
	}

	slog.Info("utilizer split completed",
		"prospect_id", prospectID, "high_count", result.HighUtilizers.Count)
	return result, nil
}

// RunSavings запускает сценарии экономии и сохраняет артефакт
func (s *ProspectService) RunSavings(ctx context.Context, prospectID string) (*actuarial.SavingsScenario, error) {
	p, err := s.GetProspect(ctx, prospectID)
	if err != nil {
		return nil, err
	}

	result, err := s.savings.Project(p.TotalClaims.Float64())
	if err != nil {
		if errors.Is(err, actuarial.ErrInvalidInput) {
			return nil, apperrors.NewValidationError(err.Error(), err)
		}
		s.reportEngineError("savings", prospectID, err)
		return nil, apperrors.WrapError(err, "Savings projection failed")
	}

	if err := s.stagingDB.SaveArtifact(prospectID, database.ArtifactSavings, result, result.GeneratedAt); err != nil {
		s.reportEngineError("savings", prospectID, err)
		return nil, apperrors.WrapError(err, "Failed to persist savings artifact")
	}

	slog.Info("savings scenarios completed",
		"prospect_id", prospectID, "savings_amount", result.SavingsAmount)
	return result, nil
}

// RunCompliance запускает матчер комплаенса и сохраняет артефакт
func (s *ProspectService) RunCompliance(ctx context.Context, prospectID string) (*compliance.Result, error) {
	p, err := s.GetProspect(ctx, prospectID)
	if err != nil {
		return nil, err
	}

	result, err := s.compliance.Match(p.EmployeeCount, p.State)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), err)
	}

	if err := s.stagingDB.SaveArtifact(prospectID, database.ArtifactCompliance, result, result.GeneratedAt); err != nil {
		s.reportEngineError("compliance", prospectID, err)
		return nil, apperrors.WrapError(err, "Failed to persist compliance artifact")
	}

	slog.Info("compliance match completed",
		"prospect_id", prospectID,
		"federal", len(result.Federal), "state", len(result.State))
	return result, nil
}

// RunAllEngines запускает все четыре движка за один вызов.
// Останавливается на первой ошибке: частично обновленный набор артефактов
// допустим, Gatekeeper проверит полноту перед промоцией.
func (s *ProspectService) RunAllEngines(ctx context.Context, prospectID string, volatilityPct float64, iterations int) (*database.ArtifactSet, error) {
	sim, err := s.RunSimulation(ctx, prospectID, volatilityPct, iterations)
	if err != nil {
		return nil, err
	}
	split, err := s.RunSplit(ctx, prospectID)
	if err != nil {
		return nil, err
	}
	savings, err := s.RunSavings(ctx, prospectID)
	if err != nil {
		return nil, err
	}
	comp, err := s.RunCompliance(ctx, prospectID)
	if err != nil {
		return nil, err
	}

	return &database.ArtifactSet{
		Simulation: sim,
		Split:      split,
		Savings:    savings,
		Compliance: comp,
	}, nil
}

func (s *ProspectService) reportEngineError(process, prospectID string, err error) {
	if s.errorLog == nil {
		return
	}
	s.errorLog.ReportError(process, fmt.Sprintf("prospect %s: %v", prospectID, err), 0)
}
