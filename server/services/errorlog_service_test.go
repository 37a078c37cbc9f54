package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"quoteserver/database"
	apperrors "quoteserver/server/errors"
)

// ErrorLogServiceTestSuite is a test suite for the ErrorLogService
type ErrorLogServiceTestSuite struct {
	suite.Suite
	staging       *database.StagingDB
	promotionDB   *database.PromotionDB
	notifications *NotificationService
	service       *ErrorLogService
}

func (s *ErrorLogServiceTestSuite) SetupTest() {
	staging, err := database.NewStagingDB(":memory:")
	s.Require().NoError(err)
	s.staging = staging

	promotionDB, err := database.NewPromotionDB(":memory:")
	s.Require().NoError(err)
	s.promotionDB = promotionDB

	s.notifications = NewNotificationService(staging)
	s.service = NewErrorLogService(staging, promotionDB, s.notifications, apperrors.SeverityHigh)
}

func (s *ErrorLogServiceTestSuite) TearDownTest() {
	s.staging.Close()
	s.promotionDB.Close()
}

func (s *ErrorLogServiceTestSuite) TestLogStoresClassifiedEntry() {
	errorID := s.service.Log(context.Background(), "simulation", "sampler produced NaN", 0, "")
	s.Require().NotEmpty(errorID)

	entries, err := s.service.GetErrors(context.Background(), "", 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)

	entry := entries[0]
	s.Equal(errorID, entry.ErrorID)
	s.Equal("simulation", entry.Process)
	// Process default applies when no keyword matches
	s.Equal(string(apperrors.SeverityMedium), entry.Severity)
	s.Equal(database.ResolutionUnresolved, entry.ResolutionStatus)
	s.NotEmpty(entry.StackSummary)
}

func (s *ErrorLogServiceTestSuite) TestLogRedactsSecrets() {
	s.service.Log(context.Background(), "sync", "request rejected, api_key=sk-abc123 invalid", 0, "")

	entries, err := s.service.GetErrors(context.Background(), "", 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)

	s.Contains(entries[0].Message, "[REDACTED]")
	s.NotContains(entries[0].Message, "sk-abc123")
}

func (s *ErrorLogServiceTestSuite) TestLogTruncatesLongMessages() {
	long := strings.Repeat("x", 5000)
	s.service.Log(context.Background(), "sync", long, 0, "")

	entries, err := s.service.GetErrors(context.Background(), "", 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)

	s.Len(entries[0].Message, 2003) // 2000 chars plus ellipsis
	s.True(strings.HasSuffix(entries[0].Message, "..."))
}

func (s *ErrorLogServiceTestSuite) TestExplicitSeverityWins() {
	s.service.Log(context.Background(), "ui", "minor hiccup", 0, apperrors.SeverityCritical)

	entries, err := s.service.GetErrors(context.Background(), string(apperrors.SeverityCritical), 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(string(apperrors.SeverityCritical), entries[0].Severity)
}

func (s *ErrorLogServiceTestSuite) TestHighSeverityIsMirrored() {
	errorID := s.service.Log(context.Background(), "promotion", "promotion failed: target schema rejected client", 3, "")
	s.Require().NotEmpty(errorID)

	var count int
	row := s.promotionDB.GetConnection().QueryRow(
		`SELECT COUNT(*) FROM error_log_mirror WHERE error_id = ?`, errorID)
	s.Require().NoError(row.Scan(&count))
	s.Equal(1, count)
}

func (s *ErrorLogServiceTestSuite) TestExhaustedInsertReportIsHighAndMirrored() {
	// The message the orchestrator reports after exhausting insert retries
	// carries no severity keyword; the promotion process default must hold
	s.service.ReportError("promotion",
		"promotion 7f2c: insert into employees failed after 3 attempts: database is locked", 3)

	entries, err := s.service.GetErrors(context.Background(), "", 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(string(apperrors.SeverityHigh), entries[0].Severity)

	var count int
	row := s.promotionDB.GetConnection().QueryRow(
		`SELECT COUNT(*) FROM error_log_mirror WHERE error_id = ?`, entries[0].ErrorID)
	s.Require().NoError(row.Scan(&count))
	s.Equal(1, count)
}

func (s *ErrorLogServiceTestSuite) TestLowSeverityIsNotMirrored() {
	errorID := s.service.Log(context.Background(), "ui", "tooltip failed to render", 0, "")
	s.Require().NotEmpty(errorID)

	var count int
	row := s.promotionDB.GetConnection().QueryRow(
		`SELECT COUNT(*) FROM error_log_mirror WHERE error_id = ?`, errorID)
	s.Require().NoError(row.Scan(&count))
	s.Equal(0, count)
}

func (s *ErrorLogServiceTestSuite) TestNotificationRaisedAtThreshold() {
	s.service.Log(context.Background(), "promotion", "promotion failed after retries", 3, "")

	notifications, err := s.notifications.GetNotifications(context.Background(), 10, false)
	s.Require().NoError(err)
	s.Require().Len(notifications, 1)
	s.Equal(NotificationTypeError, notifications[0].Type)
	s.Contains(notifications[0].Title, "HIGH")
}

func (s *ErrorLogServiceTestSuite) TestNoNotificationBelowThreshold() {
	s.service.Log(context.Background(), "simulation", "sampler hiccup", 0, "")

	notifications, err := s.notifications.GetNotifications(context.Background(), 10, false)
	s.Require().NoError(err)
	s.Empty(notifications)
}

func (s *ErrorLogServiceTestSuite) TestMetricsRecorded() {
	s.service.Log(context.Background(), "simulation", "first", 0, "")
	s.service.Log(context.Background(), "promotion", "promotion failed", 0, "")

	snapshot := s.service.Metrics().Snapshot()
	s.Equal(int64(2), snapshot.TotalErrors)
	s.Equal(int64(1), snapshot.ByProcess["simulation"])
	s.Equal(int64(1), snapshot.ByProcess["promotion"])
	s.Len(snapshot.LastErrors, 2)
}

func (s *ErrorLogServiceTestSuite) TestResolutionFlow() {
	errorID := s.service.Log(context.Background(), "sync", "transient failure", 0, "")
	ctx := context.Background()

	s.Require().NoError(s.service.UpdateResolution(ctx, errorID, database.ResolutionInProgress, false))
	s.Require().NoError(s.service.UpdateResolution(ctx, errorID, database.ResolutionResolved, false))

	// Backward transition requires an explicit reopen
	s.Error(s.service.UpdateResolution(ctx, errorID, database.ResolutionUnresolved, false))
	s.NoError(s.service.UpdateResolution(ctx, errorID, database.ResolutionUnresolved, true))
}

func TestErrorLogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorLogServiceTestSuite))
}
