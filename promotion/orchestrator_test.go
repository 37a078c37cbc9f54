package promotion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"quoteserver/database"
)

// MockTableWriter is a mock for the TableWriter
type MockTableWriter struct {
	mock.Mock
}

func (m *MockTableWriter) Insert(ctx context.Context, table string, payload interface{}, correlationID string, attempt int) error {
	args := m.Called(ctx, table, payload, correlationID, attempt)
	return args.Error(0)
}

// MockRecordRemover is a mock for the RecordRemover
type MockRecordRemover struct {
	mock.Mock
}

func (m *MockRecordRemover) DeletePromotedRecords(ctx context.Context, clientID string, recordsInserted map[string]int) error {
	args := m.Called(ctx, clientID, recordsInserted)
	return args.Error(0)
}

// MockErrorReporter is a mock for the ErrorReporter
type MockErrorReporter struct {
	mock.Mock
}

func (m *MockErrorReporter) ReportError(process, message string, retryCount int) {
	m.Called(process, message, retryCount)
}

// OrchestratorTestSuite is a test suite for the promotion Orchestrator
type OrchestratorTestSuite struct {
	suite.Suite
	staging  *database.StagingDB
	writer   *MockTableWriter
	remover  *MockRecordRemover
	reporter *MockErrorReporter
	orch     *Orchestrator
}

func (s *OrchestratorTestSuite) SetupTest() {
	staging, err := database.NewStagingDB(":memory:")
	s.Require().NoError(err)
	s.staging = staging

	s.writer = new(MockTableWriter)
	s.remover = new(MockRecordRemover)
	s.reporter = new(MockErrorReporter)

	s.orch = NewOrchestrator(staging, s.writer, s.remover, s.reporter).
		WithRetryConfig(fastRetryConfig())
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.staging.Close()
}

// seedProspect stores a prospect ready for promotion, with all four artifacts
func (s *OrchestratorTestSuite) seedProspect() *database.Prospect {
	prospect := validProspect()
	s.Require().NoError(s.staging.CreateProspect(prospect))
	s.seedArtifacts(prospect.ProspectID)
	return prospect
}

func (s *OrchestratorTestSuite) seedArtifacts(prospectID string) {
	artifacts := validArtifacts(s.T())
	now := time.Now().UTC()
	s.Require().NoError(s.staging.SaveArtifact(prospectID, database.ArtifactSimulation, artifacts.Simulation, now))
	s.Require().NoError(s.staging.SaveArtifact(prospectID, database.ArtifactSplit, artifacts.Split, now))
	s.Require().NoError(s.staging.SaveArtifact(prospectID, database.ArtifactSavings, artifacts.Savings, now))
	s.Require().NoError(s.staging.SaveArtifact(prospectID, database.ArtifactCompliance, artifacts.Compliance, now))
}

func (s *OrchestratorTestSuite) allowAllInserts() {
	s.writer.On("Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func (s *OrchestratorTestSuite) TestPromoteHappyPath() {
	prospect := s.seedProspect()
	s.allowAllInserts()

	outcome, err := s.orch.Promote(context.Background(), prospect.ProspectID, false)
	s.Require().NoError(err)

	s.Equal(StateConfirmed, outcome.State)
	s.NotEmpty(outcome.ClientID)
	s.Equal(1, outcome.RecordsInserted[database.TableClients])
	s.Equal(len(prospect.Census), outcome.RecordsInserted[database.TableEmployees])
	s.Equal(1, outcome.RecordsInserted[database.TableComplianceFlags])
	s.Equal(1, outcome.RecordsInserted[database.TableFinancialModels])
	s.Equal(1, outcome.RecordsInserted[database.TableSavingsScenarios])

	s.writer.AssertNumberOfCalls(s.T(), "Insert", 5)

	// Confirmation write-back on the staging record
	stored, err := s.staging.GetProspect(prospect.ProspectID)
	s.Require().NoError(err)
	s.Equal(database.PromotionStatusCompleted, stored.PromotionStatus)
	s.Equal(outcome.ClientID, stored.TargetClientID)

	// Audit row reached completed
	entry, err := s.staging.GetPromotionLogEntry(outcome.PromotionID)
	s.Require().NoError(err)
	s.Equal(database.PromotionStatusCompleted, entry.Status)
	s.Equal(outcome.RecordsInserted, entry.RecordsInserted)
}

func (s *OrchestratorTestSuite) TestPromotePartialInsertFailure() {
	prospect := s.seedProspect()

	// Employees table fails persistently with a transient error, the other
	// four tables succeed
	s.writer.On("Insert", mock.Anything, database.TableEmployees, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("database is locked"))
	s.writer.On("Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.reporter.On("ReportError", "promotion", mock.Anything, 3).Return()

	outcome, err := s.orch.Promote(context.Background(), prospect.ProspectID, false)
	s.Require().Error(err)

	s.Equal(StateFailed, outcome.State)
	s.Equal(map[string]int{
		database.TableClients:          1,
		database.TableEmployees:        0,
		database.TableComplianceFlags:  1,
		database.TableFinancialModels:  1,
		database.TableSavingsScenarios: 1,
	}, outcome.RecordsInserted)

	// The exhausted retry is reported exactly once
	s.reporter.AssertNumberOfCalls(s.T(), "ReportError", 1)

	// Partial progress is visible in the audit log and the staging record
	entry, err := s.staging.GetPromotionLogEntry(outcome.PromotionID)
	s.Require().NoError(err)
	s.Equal(database.PromotionStatusFailed, entry.Status)
	s.Equal(outcome.RecordsInserted, entry.RecordsInserted)
	s.Contains(entry.ErrorMessage, "employees")

	stored, err := s.staging.GetProspect(prospect.ProspectID)
	s.Require().NoError(err)
	s.Equal("insert_failed", stored.PromotionStatus)
}

func (s *OrchestratorTestSuite) TestPromoteRejectedByGatekeeper() {
	prospect := validProspect()
	prospect.TaxID = ""
	s.Require().NoError(s.staging.CreateProspect(prospect))
	s.seedArtifacts(prospect.ProspectID)

	s.reporter.On("ReportError", "validation", mock.Anything, 0).Return()

	outcome, err := s.orch.Promote(context.Background(), prospect.ProspectID, false)
	s.Require().ErrorIs(err, ErrValidationFailed)

	s.Equal(StateFailed, outcome.State)
	s.Contains(outcome.ValidationErrs, "tax id is missing")

	// Rejection happens before any write to the target schema
	s.writer.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	entry, err := s.staging.GetPromotionLogEntry(outcome.PromotionID)
	s.Require().NoError(err)
	s.Equal(database.PromotionStatusFailed, entry.Status)

	// The rejection closes the audit row opened at start, it does not add one
	log, err := s.staging.GetPromotionLog(10)
	s.Require().NoError(err)
	s.Len(log, 1)
}

func (s *OrchestratorTestSuite) TestAuditRowOpensAtPromotionStart() {
	prospect := s.seedProspect()

	// A second trigger arriving while the first run is still mid-pipeline
	// must find the pending audit row and back off
	var midRunStatus string
	var reentrantErr error
	s.writer.On("Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			if midRunStatus != "" {
				return
			}
			entry, err := s.staging.GetLatestPromotionForProspect(prospect.ProspectID)
			s.Require().NoError(err)
			midRunStatus = entry.Status
			_, reentrantErr = s.orch.Promote(context.Background(), prospect.ProspectID, false)
		}).Return(nil)

	outcome, err := s.orch.Promote(context.Background(), prospect.ProspectID, false)
	s.Require().NoError(err)
	s.Equal(StateConfirmed, outcome.State)

	s.Equal(database.PromotionStatusPending, midRunStatus)
	s.Require().ErrorIs(reentrantErr, ErrPromotionInFlight)

	// The nested attempt left no extra audit row behind
	log, err := s.staging.GetPromotionLog(10)
	s.Require().NoError(err)
	s.Len(log, 1)
}

func (s *OrchestratorTestSuite) TestPromoteIsIdempotent() {
	prospect := s.seedProspect()
	s.allowAllInserts()

	first, err := s.orch.Promote(context.Background(), prospect.ProspectID, false)
	s.Require().NoError(err)
	s.Equal(StateConfirmed, first.State)

	// A repeat trigger after a completed promotion is a no-op
	second, err := s.orch.Promote(context.Background(), prospect.ProspectID, false)
	s.Require().ErrorIs(err, ErrAlreadyPromoted)
	s.Nil(second)

	// Re-arming does not bypass a completed promotion either
	_, err = s.orch.Promote(context.Background(), prospect.ProspectID, true)
	s.Require().ErrorIs(err, ErrAlreadyPromoted)

	s.writer.AssertNumberOfCalls(s.T(), "Insert", 5)
}

func (s *OrchestratorTestSuite) TestPromoteSkipsInFlightPromotion() {
	prospect := s.seedProspect()

	s.Require().NoError(s.staging.CreatePromotionLogEntry(&database.PromotionLogEntry{
		PromotionID: uuid.New().String(),
		ProspectID:  prospect.ProspectID,
		Status:      database.PromotionStatusPending,
	}))

	_, err := s.orch.Promote(context.Background(), prospect.ProspectID, false)
	s.Require().ErrorIs(err, ErrPromotionInFlight)
	s.writer.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *OrchestratorTestSuite) TestPromoteAfterFailureRequiresRearm() {
	// Prospect without artifacts fails validation on the first run
	prospect := validProspect()
	s.Require().NoError(s.staging.CreateProspect(prospect))
	s.reporter.On("ReportError", "validation", mock.Anything, 0).Return()

	_, err := s.orch.Promote(context.Background(), prospect.ProspectID, false)
	s.Require().ErrorIs(err, ErrValidationFailed)

	// Repeat trigger without re-arm is a no-op even after the cause is fixed
	s.seedArtifacts(prospect.ProspectID)
	_, err = s.orch.Promote(context.Background(), prospect.ProspectID, false)
	s.Require().ErrorIs(err, ErrAlreadyAttempted)

	// Explicit re-arm lets the promotion run again
	s.allowAllInserts()
	outcome, err := s.orch.Promote(context.Background(), prospect.ProspectID, true)
	s.Require().NoError(err)
	s.Equal(StateConfirmed, outcome.State)
}

func (s *OrchestratorTestSuite) TestRollbackCompletedPromotion() {
	prospect := s.seedProspect()
	s.allowAllInserts()

	promoted, err := s.orch.Promote(context.Background(), prospect.ProspectID, false)
	s.Require().NoError(err)

	s.remover.On("DeletePromotedRecords", mock.Anything, promoted.ClientID, promoted.RecordsInserted).Return(nil)

	rolledBack, err := s.orch.Rollback(context.Background(), promoted.PromotionID)
	s.Require().NoError(err)

	s.Equal(StateRolledBack, rolledBack.State)
	s.Equal(promoted.ClientID, rolledBack.ClientID)
	s.NotEqual(promoted.PromotionID, rolledBack.PromotionID)

	// The original audit row is untouched, the rollback is a separate row
	original, err := s.staging.GetPromotionLogEntry(promoted.PromotionID)
	s.Require().NoError(err)
	s.Equal(database.PromotionStatusCompleted, original.Status)

	rollbackEntry, err := s.staging.GetPromotionLogEntry(rolledBack.PromotionID)
	s.Require().NoError(err)
	s.Equal(database.PromotionStatusRolledBack, rollbackEntry.Status)

	// The prospect is eligible for promotion again
	stored, err := s.staging.GetProspect(prospect.ProspectID)
	s.Require().NoError(err)
	s.Equal(database.ProspectStatusProspect, stored.Status)
	s.Equal(database.PromotionStatusRolledBack, stored.PromotionStatus)
}

func (s *OrchestratorTestSuite) TestRollbackRejectsNonCompletedPromotion() {
	prospect := s.seedProspect()

	failedID := uuid.New().String()
	s.Require().NoError(s.staging.CreatePromotionLogEntry(&database.PromotionLogEntry{
		PromotionID: failedID,
		ProspectID:  prospect.ProspectID,
		Status:      database.PromotionStatusFailed,
	}))

	_, err := s.orch.Rollback(context.Background(), failedID)
	s.Require().ErrorIs(err, ErrNotRollbackable)
	s.remover.AssertNotCalled(s.T(), "DeletePromotedRecords", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
