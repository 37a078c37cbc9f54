package promotion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"quoteserver/database"
)

// BlueprintVersion версия схемы отображения staging -> целевая схема
const BlueprintVersion = "1.0"

// Состояния конечного автомата промоции
type State string

const (
	StateIdle         State = "idle"
	StateValidating   State = "validating"
	StateTransforming State = "transforming"
	StateInserting    State = "inserting"
	StateLoggingAudit State = "logging_audit"
	StateConfirmed    State = "confirmed"
	StateFailed       State = "failed"
	StateRolledBack   State = "rolled_back"
)

var (
	// ErrAlreadyPromoted проспект уже промотирован, повторный запуск - no-op
	ErrAlreadyPromoted = errors.New("prospect already promoted")
	// ErrAlreadyAttempted по проспекту уже есть терминальная промоция,
	// повторный запуск требует явного перевзвода
	ErrAlreadyAttempted = errors.New("promotion already attempted, re-arm required")
	// ErrPromotionInFlight промоция проспекта уже выполняется
	ErrPromotionInFlight = errors.New("promotion already in flight")
	// ErrValidationFailed Gatekeeper отклонил промоцию до какой-либо записи
	ErrValidationFailed = errors.New("gatekeeper validation failed")
	// ErrNotRollbackable откатить можно только завершенную промоцию
	ErrNotRollbackable = errors.New("promotion is not in a rollbackable state")
)

// TableWriter durable-запись в таблицу целевой схемы
type TableWriter interface {
	Insert(ctx context.Context, table string, payload interface{}, correlationID string, attempt int) error
}

// RecordRemover удаление записей клиента из целевой схемы при откате
type RecordRemover interface {
	DeletePromotedRecords(ctx context.Context, clientID string, recordsInserted map[string]int) error
}

// ErrorReporter приемник ошибок пайплайна. Реализация не должна
// блокировать промоцию: сбой самого репортера глотается на ее стороне.
type ErrorReporter interface {
	ReportError(process, message string, retryCount int)
}

// Outcome итог одного запуска промоции
type Outcome struct {
	PromotionID     string         `json:"promotion_id"`
	ProspectID      string         `json:"prospect_id"`
	ClientID        string         `json:"client_id,omitempty"`
	State           State          `json:"state"`
	RecordsInserted map[string]int `json:"records_inserted"`
	ValidationErrs  []string       `json:"validation_errors,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
}

// Orchestrator конечный автомат промоции проспекта в клиента.
// Idle -> Validating -> Transforming -> Inserting -> LoggingAudit -> Confirmed,
// с переходами в Failed из любого рабочего состояния и RolledBack из Confirmed.
// Вставки в пять целевых таблиц выполняются независимо с ретраями:
// сбой одной таблицы не прерывает попытки остальных, частичный результат
// фиксируется в журнале.
type Orchestrator struct {
	staging     *database.StagingDB
	writer      TableWriter
	remover     RecordRemover
	gatekeeper  *Gatekeeper
	transformer *Transformer
	retryConfig RetryConfig
	reporter    ErrorReporter
}

// NewOrchestrator создает оркестратор промоции
func NewOrchestrator(staging *database.StagingDB, writer TableWriter, remover RecordRemover, reporter ErrorReporter) *Orchestrator {
	return &Orchestrator{
		staging:     staging,
		writer:      writer,
		remover:     remover,
		gatekeeper:  NewGatekeeper(),
		transformer: NewTransformer(),
		retryConfig: DefaultRetryConfig(),
		reporter:    reporter,
	}
}

// WithRetryConfig заменяет конфигурацию ретраев (для тестов)
func (o *Orchestrator) WithRetryConfig(config RetryConfig) *Orchestrator {
	o.retryConfig = config
	return o
}

// WithGatekeeper заменяет валидатор (для тестов с нестандартным окном свежести)
func (o *Orchestrator) WithGatekeeper(g *Gatekeeper) *Orchestrator {
	o.gatekeeper = g
	return o
}

// Promote выполняет полный цикл промоции проспекта. Запускается, когда
// статус staging-записи переходит в client.
// Повторный триггер идемпотентен: выполняющаяся промоция и уже достигнутый
// терминальный исход дают no-op со сторожевой ошибкой, дублей в целевой
// схеме не возникает. rearm=true явно перевзводит проспект после
// терминального исхода (кроме уже завершенной промоции).
func (o *Orchestrator) Promote(ctx context.Context, prospectID string, rearm bool) (*Outcome, error) {
	log.Printf("[PromotionOrchestrator] starting promotion for prospect %s", prospectID)

	prospect, err := o.staging.GetProspect(prospectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prospect %s: %w", prospectID, err)
	}

	// Сторожевые проверки идемпотентности до каких-либо записей
	latest, err := o.staging.GetLatestPromotionForProspect(prospectID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check promotion history: %w", err)
	}
	if latest != nil {
		switch latest.Status {
		case database.PromotionStatusPending:
			log.Printf("[PromotionOrchestrator] prospect %s has a promotion in flight, skipping", prospectID)
			return nil, ErrPromotionInFlight
		case database.PromotionStatusCompleted:
			log.Printf("[PromotionOrchestrator] prospect %s already promoted, skipping", prospectID)
			return nil, ErrAlreadyPromoted
		case database.PromotionStatusFailed:
			if !rearm {
				log.Printf("[PromotionOrchestrator] prospect %s has a failed promotion, re-arm required", prospectID)
				return nil, ErrAlreadyAttempted
			}
		}
	}

	outcome := &Outcome{
		PromotionID:     uuid.New().String(),
		ProspectID:      prospectID,
		State:           StateValidating,
		RecordsInserted: map[string]int{},
	}

	// Журнальная запись открывается в статусе pending до валидации:
	// она же служит замком от параллельного повторного триггера.
	// Терминальный исход проставляется обновлением этой строки.
	if err := o.staging.CreatePromotionLogEntry(&database.PromotionLogEntry{
		PromotionID:     outcome.PromotionID,
		ProspectID:      prospectID,
		Status:          database.PromotionStatusPending,
		RecordsInserted: map[string]int{},
	}); err != nil {
		return nil, fmt.Errorf("failed to open promotion log entry: %w", err)
	}

	artifacts, err := o.staging.LoadArtifacts(prospectID)
	if err != nil {
		outcome.State = StateFailed
		outcome.ErrorMessage = fmt.Sprintf("failed to load artifacts: %v", err)
		o.recordFailure(outcome)
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}

	validation := o.gatekeeper.Validate(prospect, artifacts)
	if !validation.IsValid {
		outcome.State = StateFailed
		outcome.ValidationErrs = validation.Errors
		outcome.ErrorMessage = strings.Join(validation.Errors, "; ")
		o.recordFailure(outcome)
		o.writeBackFailure(prospectID, "validation_failed", outcome)
		o.report("validation", fmt.Sprintf("promotion of prospect %s rejected: %s", prospectID, outcome.ErrorMessage), 0)
		return outcome, ErrValidationFailed
	}
	for _, warning := range validation.Warnings {
		log.Printf("[PromotionOrchestrator] warning for prospect %s: %s", prospectID, warning)
	}

	outcome.State = StateTransforming
	clientID := uuid.New().String()
	record, err := o.transformer.Transform(prospect, artifacts, clientID, BlueprintVersion)
	if err != nil {
		// Ошибка трансформации после пройденной валидации фатальна,
		// не ретраится
		outcome.State = StateFailed
		outcome.ErrorMessage = err.Error()
		o.recordFailure(outcome)
		o.writeBackFailure(prospectID, "transform_failed", outcome)
		o.report("transform", fmt.Sprintf("promotion %s: %s", outcome.PromotionID, err.Error()), 0)
		return outcome, err
	}
	outcome.ClientID = clientID

	outcome.State = StateInserting
	insertErrors := o.insertAll(ctx, record, outcome)

	outcome.State = StateLoggingAudit
	if len(insertErrors) > 0 {
		outcome.State = StateFailed
		outcome.ErrorMessage = strings.Join(insertErrors, "; ")
		o.recordFailure(outcome)
		o.writeBackFailure(prospectID, "insert_failed", outcome)
		log.Printf("[PromotionOrchestrator] promotion %s failed: %s", outcome.PromotionID, outcome.ErrorMessage)
		return outcome, fmt.Errorf("promotion %s failed: %s", outcome.PromotionID, outcome.ErrorMessage)
	}

	// Подтверждение: запись итога в staging - единственная мутация
	// входной записи со стороны пайплайна
	if err := o.staging.UpdatePromotionOutcome(prospectID, database.PromotionStatusCompleted, clientID, outcome.RecordsInserted); err != nil {
		log.Printf("[PromotionOrchestrator] failed to write back promotion outcome for %s: %v", prospectID, err)
	}
	if err := o.staging.UpdatePromotionLogEntry(outcome.PromotionID, clientID,
		database.PromotionStatusCompleted, outcome.RecordsInserted, ""); err != nil {
		log.Printf("[PromotionOrchestrator] failed to update promotion log %s: %v", outcome.PromotionID, err)
	}

	outcome.State = StateConfirmed
	log.Printf("[PromotionOrchestrator] promotion %s confirmed: prospect %s -> client %s",
		outcome.PromotionID, prospectID, clientID)
	return outcome, nil
}

// insertAll пытается вставить все пять таблиц независимо.
// Сбой одной таблицы не прерывает остальные: собираются все ошибки,
// частичный прогресс отражается в outcome.RecordsInserted.
func (o *Orchestrator) insertAll(ctx context.Context, record *PromotionRecord, outcome *Outcome) []string {
	payloads := map[string]interface{}{
		database.TableClients:          record.Client,
		database.TableEmployees:        record.Employees,
		database.TableComplianceFlags:  record.Compliance,
		database.TableFinancialModels:  record.Financial,
		database.TableSavingsScenarios: record.Savings,
	}

	var insertErrors []string
	for _, table := range database.TargetTables {
		table := table
		err := WithRetry(ctx, "promotion", func() error {
			return o.writer.Insert(ctx, table, payloads[table], outcome.PromotionID, 0)
		}, o.retryConfig, func(process string, finalErr error, attempts int) {
			o.report(process,
				fmt.Sprintf("promotion %s: insert into %s failed after %d attempts: %v",
					outcome.PromotionID, table, attempts, finalErr),
				attempts)
		})
		if err != nil {
			outcome.RecordsInserted[table] = 0
			insertErrors = append(insertErrors, fmt.Sprintf("%s: %v", table, err))
			continue
		}
		outcome.RecordsInserted[table] = recordCount(table, record)
	}
	return insertErrors
}

// recordCount число записей, вставленных в таблицу при успехе
func recordCount(table string, record *PromotionRecord) int {
	if table == database.TableEmployees {
		return len(record.Employees)
	}
	return 1
}

// recordFailure переводит открытую журнальную запись промоции в failed
func (o *Orchestrator) recordFailure(outcome *Outcome) {
	err := o.staging.UpdatePromotionLogEntry(outcome.PromotionID, outcome.ClientID,
		database.PromotionStatusFailed, outcome.RecordsInserted, outcome.ErrorMessage)
	if err != nil {
		log.Printf("[PromotionOrchestrator] failed to record promotion failure %s: %v", outcome.PromotionID, err)
	}
}

// writeBackFailure записывает человекочитаемый статус неудачи в staging-запись.
// Частичные счетчики вставок сохраняются - они нужны процедуре отката.
func (o *Orchestrator) writeBackFailure(prospectID, promotionStatus string, outcome *Outcome) {
	if err := o.staging.UpdatePromotionOutcome(prospectID, promotionStatus, outcome.ClientID, outcome.RecordsInserted); err != nil {
		log.Printf("[PromotionOrchestrator] failed to write back failure for %s: %v", prospectID, err)
	}
}

func (o *Orchestrator) report(process, message string, retryCount int) {
	if o.reporter == nil {
		return
	}
	o.reporter.ReportError(process, message, retryCount)
}

// Rollback откатывает завершенную промоцию: удаляет записи клиента
// из целевой схемы, возвращает проспекту статус prospect и добавляет
// в журнал отдельную запись отката. Исходная запись промоции
// не редактируется.
func (o *Orchestrator) Rollback(ctx context.Context, promotionID string) (*Outcome, error) {
	entry, err := o.staging.GetPromotionLogEntry(promotionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load promotion %s: %w", promotionID, err)
	}
	if entry.Status != database.PromotionStatusCompleted {
		return nil, fmt.Errorf("%w: promotion %s has status %s", ErrNotRollbackable, promotionID, entry.Status)
	}

	if err := o.remover.DeletePromotedRecords(ctx, entry.ClientID, entry.RecordsInserted); err != nil {
		o.report("promotion", fmt.Sprintf("rollback of promotion %s failed: %v", promotionID, err), 0)
		return nil, fmt.Errorf("failed to delete promoted records for client %s: %w", entry.ClientID, err)
	}

	if err := o.staging.TransitionStatus(entry.ProspectID, database.ProspectStatusClient, database.ProspectStatusProspect); err != nil {
		return nil, fmt.Errorf("failed to revert prospect status: %w", err)
	}
	if err := o.staging.UpdatePromotionOutcome(entry.ProspectID, database.PromotionStatusRolledBack, "", nil); err != nil {
		log.Printf("[PromotionOrchestrator] failed to write back rollback for %s: %v", entry.ProspectID, err)
	}

	rollbackEntry := &database.PromotionLogEntry{
		PromotionID:     uuid.New().String(),
		ProspectID:      entry.ProspectID,
		ClientID:        entry.ClientID,
		Status:          database.PromotionStatusRolledBack,
		RecordsInserted: entry.RecordsInserted,
		ErrorMessage:    fmt.Sprintf("rollback of promotion %s", promotionID),
		CreatedAt:       time.Now().UTC(),
	}
	if err := o.staging.CreatePromotionLogEntry(rollbackEntry); err != nil {
		log.Printf("[PromotionOrchestrator] failed to record rollback of %s: %v", promotionID, err)
	}

	log.Printf("[PromotionOrchestrator] promotion %s rolled back, client %s removed", promotionID, entry.ClientID)
	return &Outcome{
		PromotionID:     rollbackEntry.PromotionID,
		ProspectID:      entry.ProspectID,
		ClientID:        entry.ClientID,
		State:           StateRolledBack,
		RecordsInserted: entry.RecordsInserted,
	}, nil
}
