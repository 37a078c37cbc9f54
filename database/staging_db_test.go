package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"quoteserver/actuarial"
)

func newTestStagingDB(t *testing.T) *StagingDB {
	t.Helper()
	db, err := NewStagingDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create staging db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestPromotionDB(t *testing.T) *PromotionDB {
	t.Helper()
	db, err := NewPromotionDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create promotion db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testProspect(id string) *Prospect {
	return &Prospect{
		ProspectID:    id,
		CompanyName:   "Acme Widgets",
		TaxID:         "123456789",
		Industry:      "manufacturing",
		EmployeeCount: 100,
		State:         "TX",
		RenewalDate:   "2026-01-01",
		TotalClaims:   1_000_000,
		Census: []CensusMember{
			{Age: 45, Gender: "m", Dependents: 2, CoverageTier: "family", AnnualClaims: 25_000},
			{Age: 31, Gender: "f", Dependents: 0, CoverageTier: "single", AnnualClaims: 3_000},
		},
		ClaimsHistory: []AnnualClaims{
			{Year: 2024, Total: 950_000},
			{Year: 2025, Total: 1_000_000},
		},
	}
}

func TestProspectRoundTrip(t *testing.T) {
	db := newTestStagingDB(t)

	p := testProspect("p-1")
	if err := db.CreateProspect(p); err != nil {
		t.Fatalf("CreateProspect failed: %v", err)
	}

	got, err := db.GetProspect("p-1")
	if err != nil {
		t.Fatalf("GetProspect failed: %v", err)
	}

	if got.CompanyName != p.CompanyName || got.EmployeeCount != p.EmployeeCount {
		t.Errorf("prospect fields lost: got %+v", got)
	}
	if got.Status != ProspectStatusProspect {
		t.Errorf("default status = %s, want prospect", got.Status)
	}
	if len(got.Census) != 2 {
		t.Errorf("census length = %d, want 2", len(got.Census))
	}
	if len(got.ClaimsHistory) != 2 {
		t.Errorf("claims history length = %d, want 2", len(got.ClaimsHistory))
	}
}

func TestGetProspectNotFound(t *testing.T) {
	db := newTestStagingDB(t)

	_, err := db.GetProspect("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTransitionStatusIdempotencyGuard(t *testing.T) {
	db := newTestStagingDB(t)

	p := testProspect("p-2")
	if err := db.CreateProspect(p); err != nil {
		t.Fatalf("CreateProspect failed: %v", err)
	}

	if err := db.TransitionStatus("p-2", ProspectStatusProspect, ProspectStatusClient); err != nil {
		t.Fatalf("first transition failed: %v", err)
	}

	// Повторный переход из того же исходного статуса должен быть отвергнут
	err := db.TransitionStatus("p-2", ProspectStatusProspect, ProspectStatusClient)
	if !errors.Is(err, ErrStatusConflict) {
		t.Errorf("expected ErrStatusConflict on repeat transition, got %v", err)
	}
}

func TestArtifactSaveAndLoad(t *testing.T) {
	db := newTestStagingDB(t)

	p := testProspect("p-3")
	if err := db.CreateProspect(p); err != nil {
		t.Fatalf("CreateProspect failed: %v", err)
	}

	engine := actuarial.NewMonteCarloEngineWithSampler(actuarial.NewSeededNormalSampler(5))
	sim, err := engine.Simulate(1_000_000, 0.2, 1000)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if err := db.SaveArtifact("p-3", ArtifactSimulation, sim, sim.GeneratedAt); err != nil {
		t.Fatalf("SaveArtifact failed: %v", err)
	}

	set, err := db.LoadArtifacts("p-3")
	if err != nil {
		t.Fatalf("LoadArtifacts failed: %v", err)
	}

	if set.Simulation == nil {
		t.Fatal("simulation artifact missing after save")
	}
	if set.Simulation.Iterations != 1000 {
		t.Errorf("iterations = %d, want 1000", set.Simulation.Iterations)
	}
	if set.Split != nil || set.Savings != nil || set.Compliance != nil {
		t.Error("unexpected artifacts present")
	}

	// Перезапись артефакта заменяет предыдущий
	sim2, err := engine.Simulate(2_000_000, 0.1, 2000)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if err := db.SaveArtifact("p-3", ArtifactSimulation, sim2, sim2.GeneratedAt); err != nil {
		t.Fatalf("SaveArtifact overwrite failed: %v", err)
	}

	set, err = db.LoadArtifacts("p-3")
	if err != nil {
		t.Fatalf("LoadArtifacts failed: %v", err)
	}
	if set.Simulation.Iterations != 2000 {
		t.Errorf("iterations after overwrite = %d, want 2000", set.Simulation.Iterations)
	}
}

func TestPromotionLogLifecycle(t *testing.T) {
	db := newTestStagingDB(t)

	entry := &PromotionLogEntry{
		PromotionID: "promo-1",
		ProspectID:  "p-4",
		Status:      PromotionStatusPending,
	}
	if err := db.CreatePromotionLogEntry(entry); err != nil {
		t.Fatalf("CreatePromotionLogEntry failed: %v", err)
	}

	records := map[string]int{
		TableClients: 1, TableEmployees: 100, TableComplianceFlags: 1,
		TableFinancialModels: 1, TableSavingsScenarios: 1,
	}
	if err := db.UpdatePromotionLogEntry("promo-1", "c-1", PromotionStatusCompleted, records, ""); err != nil {
		t.Fatalf("UpdatePromotionLogEntry failed: %v", err)
	}

	got, err := db.GetPromotionLogEntry("promo-1")
	if err != nil {
		t.Fatalf("GetPromotionLogEntry failed: %v", err)
	}
	if got.Status != PromotionStatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.RecordsInserted[TableEmployees] != 100 {
		t.Errorf("employees inserted = %d, want 100", got.RecordsInserted[TableEmployees])
	}

	latest, err := db.GetLatestPromotionForProspect("p-4")
	if err != nil {
		t.Fatalf("GetLatestPromotionForProspect failed: %v", err)
	}
	if latest.PromotionID != "promo-1" {
		t.Errorf("latest promotion = %s, want promo-1", latest.PromotionID)
	}
}

func TestErrorLogResolutionTransitions(t *testing.T) {
	db := newTestStagingDB(t)

	entry := &ErrorLogEntry{
		ErrorID:  "e-1",
		Severity: "high",
		Process:  "promotion",
		Message:  "insert failed: timeout",
	}
	if err := db.SaveErrorEntry(entry); err != nil {
		t.Fatalf("SaveErrorEntry failed: %v", err)
	}
	if entry.ResolutionStatus != ResolutionUnresolved {
		t.Errorf("default resolution = %s, want unresolved", entry.ResolutionStatus)
	}

	if err := db.UpdateErrorResolution("e-1", ResolutionInProgress, false); err != nil {
		t.Fatalf("transition to in_progress failed: %v", err)
	}
	if err := db.UpdateErrorResolution("e-1", ResolutionResolved, false); err != nil {
		t.Fatalf("transition to resolved failed: %v", err)
	}

	// Обратный переход без reopen запрещен
	if err := db.UpdateErrorResolution("e-1", ResolutionUnresolved, false); err == nil {
		t.Error("backward transition without reopen should fail")
	}

	// Явный reopen разрешен
	if err := db.UpdateErrorResolution("e-1", ResolutionUnresolved, true); err != nil {
		t.Errorf("explicit reopen failed: %v", err)
	}
}

func TestErrorLogIdempotentInsert(t *testing.T) {
	db := newTestStagingDB(t)

	entry := &ErrorLogEntry{ErrorID: "e-2", Severity: "low", Process: "ui", Message: "oops"}
	if err := db.SaveErrorEntry(entry); err != nil {
		t.Fatalf("first SaveErrorEntry failed: %v", err)
	}
	// Повторная отправка того же ID не создает дубликат
	if err := db.SaveErrorEntry(entry); err != nil {
		t.Fatalf("repeat SaveErrorEntry failed: %v", err)
	}

	entries, err := db.GetErrorEntries("", 10)
	if err != nil {
		t.Fatalf("GetErrorEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}

func TestPromotionDBInsertAndRollback(t *testing.T) {
	db := newTestPromotionDB(t)
	ctx := context.Background()

	client := &Client{
		ClientID: "c-1", ProspectID: "p-5", CompanyName: "Acme", TaxID: "12-3456789",
		EmployeeCount: 10, State: "CA", PromotedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := db.Insert(ctx, TableClients, client, "corr-1", 1); err != nil {
		t.Fatalf("insert client failed: %v", err)
	}

	employees := []Employee{
		{EmployeeID: "c-1-EMP-0001", ClientID: "c-1", Tier: TierHigh, Age: 50, Gender: "M", AnnualClaims: 85_000},
		{EmployeeID: "c-1-EMP-0002", ClientID: "c-1", Tier: TierStandard, Age: 30, Gender: "F", AnnualClaims: 1_500},
	}
	if err := db.Insert(ctx, TableEmployees, employees, "corr-1", 1); err != nil {
		t.Fatalf("insert employees failed: %v", err)
	}

	count, err := db.CountRecords(TableEmployees, "c-1")
	if err != nil {
		t.Fatalf("CountRecords failed: %v", err)
	}
	if count != 2 {
		t.Errorf("employee count = %d, want 2", count)
	}

	// Откат удаляет только фактически вставленные таблицы
	records := map[string]int{TableClients: 1, TableEmployees: 2}
	if err := db.DeletePromotedRecords(ctx, "c-1", records); err != nil {
		t.Fatalf("DeletePromotedRecords failed: %v", err)
	}

	if _, err := db.GetClient("c-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("client should be deleted after rollback, got %v", err)
	}
	count, _ = db.CountRecords(TableEmployees, "c-1")
	if count != 0 {
		t.Errorf("employees after rollback = %d, want 0", count)
	}
}

func TestPromotionDBInsertWrongPayload(t *testing.T) {
	db := newTestPromotionDB(t)

	err := db.Insert(context.Background(), TableClients, "not a client", "corr-2", 1)
	if err == nil {
		t.Error("expected payload type error")
	}
}

func TestMirrorErrorEntryIdempotent(t *testing.T) {
	db := newTestPromotionDB(t)

	entry := &ErrorLogEntry{
		ErrorID: "e-3", Severity: "critical", Process: "promotion",
		Message: "data loss detected", CreatedAt: time.Now(),
	}
	if err := db.MirrorErrorEntry(entry); err != nil {
		t.Fatalf("MirrorErrorEntry failed: %v", err)
	}
	if err := db.MirrorErrorEntry(entry); err != nil {
		t.Fatalf("repeat MirrorErrorEntry failed: %v", err)
	}

	var count int
	if err := db.GetConnection().QueryRow(`SELECT COUNT(*) FROM error_log_mirror`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("mirror entries = %d, want 1", count)
	}
}
