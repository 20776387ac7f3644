package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/opensource-health/heron/internal/domain"
)

func newTestRepo(t *testing.T, seed bool) domain.Repository {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "heron-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	repo, err := New(domain.RepositoryConfig{
		Driver:      "sqlite",
		SQLitePath:  tmpPath,
		SeedCatalog: seed,
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestSQLiteRepository(t *testing.T) {
	repo := newTestRepo(t, false)

	ctx := context.Background()
	facilityID := "facility-001"

	t.Run("Ping", func(t *testing.T) {
		if err := repo.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("CreateAndListItems", func(t *testing.T) {
		item := &domain.MedicalItem{
			Category:     "Laboratory",
			Name:         "Complete Blood Count",
			Price:        250,
			IsOutpatient: true,
		}

		created, err := repo.CreateItem(ctx, item)
		if err != nil {
			t.Fatalf("CreateItem failed: %v", err)
		}
		if created.ID == 0 {
			t.Error("expected a generated item ID")
		}
		if created.Currency != "BDT" {
			t.Errorf("expected default currency BDT, got %s", created.Currency)
		}

		items, err := repo.ListItems(ctx)
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
	})

	t.Run("CreateItemValidation", func(t *testing.T) {
		_, err := repo.CreateItem(ctx, &domain.MedicalItem{Name: "No Category"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}

		_, err = repo.CreateItem(ctx, &domain.MedicalItem{Category: "Medicine", Name: "Negative", Price: -1})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for negative price, got %v", err)
		}
	})

	t.Run("ListItemsByTypeAndCategory", func(t *testing.T) {
		inpatient := &domain.MedicalItem{
			Category:     "Surgery, O.R. & Delivery",
			Name:         "Minor Surgery",
			Price:        15000,
			IsOutpatient: false,
		}
		if _, err := repo.CreateItem(ctx, inpatient); err != nil {
			t.Fatalf("CreateItem failed: %v", err)
		}

		outpatient, err := repo.ListItemsByType(ctx, true)
		if err != nil {
			t.Fatalf("ListItemsByType failed: %v", err)
		}
		for _, item := range outpatient {
			if !item.IsOutpatient {
				t.Errorf("inpatient item leaked into outpatient schedule: %s", item.Name)
			}
		}

		surgical, err := repo.ListItemsByCategory(ctx, "Surgery, O.R. & Delivery", false)
		if err != nil {
			t.Fatalf("ListItemsByCategory failed: %v", err)
		}
		if len(surgical) != 1 || surgical[0].Name != "Minor Surgery" {
			t.Errorf("unexpected category result: %+v", surgical)
		}
	})

	t.Run("SearchItems", func(t *testing.T) {
		results, err := repo.SearchItems(ctx, "Blood", true)
		if err != nil {
			t.Fatalf("SearchItems failed: %v", err)
		}
		if len(results) != 1 || results[0].Name != "Complete Blood Count" {
			t.Errorf("unexpected search result: %+v", results)
		}
	})

	t.Run("UpdateItem", func(t *testing.T) {
		items, _ := repo.ListItemsByType(ctx, true)
		if len(items) == 0 {
			t.Fatal("no items to update")
		}
		target := items[0]

		target.Price = 300
		updated, err := repo.UpdateItem(ctx, target.ID, target)
		if err != nil {
			t.Fatalf("UpdateItem failed: %v", err)
		}
		if updated.Price != 300 {
			t.Errorf("expected updated price 300, got %v", updated.Price)
		}

		_, err = repo.UpdateItem(ctx, 99999, target)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for missing item, got %v", err)
		}
	})

	t.Run("DeleteItem", func(t *testing.T) {
		created, err := repo.CreateItem(ctx, &domain.MedicalItem{
			Category: "Medicine", Name: "Temp", Price: 1, IsOutpatient: true,
		})
		if err != nil {
			t.Fatalf("CreateItem failed: %v", err)
		}

		if err := repo.DeleteItem(ctx, created.ID); err != nil {
			t.Fatalf("DeleteItem failed: %v", err)
		}
		if err := repo.DeleteItem(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("SaveBillUpsert", func(t *testing.T) {
		bill := &domain.StoredBill{
			Type:      domain.AdmissionOutpatient,
			SessionID: "session-abc",
			BillData:  `[{"category":"Medicine","name":"Paracetamol 500mg","price":15}]`,
			Total:     15,
		}

		saved, err := repo.SaveBill(ctx, facilityID, bill)
		if err != nil {
			t.Fatalf("SaveBill failed: %v", err)
		}
		if saved.ID == 0 {
			t.Error("expected a generated bill ID")
		}
		if saved.Currency != "BDT" {
			t.Errorf("expected default currency BDT, got %s", saved.Currency)
		}

		bill.Total = 30
		bill.BillData = `[{"category":"Medicine","name":"Paracetamol 500mg","price":15},{"category":"Medicine","name":"Aspirin 75mg","price":12}]`
		resaved, err := repo.SaveBill(ctx, facilityID, bill)
		if err != nil {
			t.Fatalf("SaveBill upsert failed: %v", err)
		}
		if resaved.ID != saved.ID {
			t.Errorf("upsert must keep the row, got new ID %d vs %d", resaved.ID, saved.ID)
		}
		if resaved.Total != 30 {
			t.Errorf("expected updated total 30, got %v", resaved.Total)
		}
	})

	t.Run("SaveBillValidation", func(t *testing.T) {
		_, err := repo.SaveBill(ctx, facilityID, &domain.StoredBill{Type: "daycare", SessionID: "s"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for bad type, got %v", err)
		}

		_, err = repo.SaveBill(ctx, facilityID, &domain.StoredBill{Type: domain.AdmissionInpatient})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for missing session, got %v", err)
		}
	})

	t.Run("GetBillBySession", func(t *testing.T) {
		bill, err := repo.GetBillBySession(ctx, facilityID, "session-abc", domain.AdmissionOutpatient)
		if err != nil {
			t.Fatalf("GetBillBySession failed: %v", err)
		}
		if bill.SessionID != "session-abc" || bill.Total != 30 {
			t.Errorf("unexpected bill: %+v", bill)
		}

		_, err = repo.GetBillBySession(ctx, facilityID, "missing", domain.AdmissionOutpatient)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("FacilityIsolation", func(t *testing.T) {
		_, err := repo.GetBillBySession(ctx, "facility-002", "session-abc", domain.AdmissionOutpatient)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for other facility, got %v", err)
		}
	})

	t.Run("ListBillsSince", func(t *testing.T) {
		bills, err := repo.ListBillsSince(ctx, facilityID, time.Now().Add(-time.Hour))
		if err != nil {
			t.Fatalf("ListBillsSince failed: %v", err)
		}
		if len(bills) != 1 {
			t.Errorf("expected 1 recent bill, got %d", len(bills))
		}

		bills, err = repo.ListBillsSince(ctx, facilityID, time.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("ListBillsSince failed: %v", err)
		}
		if len(bills) != 0 {
			t.Errorf("expected 0 future bills, got %d", len(bills))
		}
	})

	t.Run("AuditRuleRoundTrip", func(t *testing.T) {
		one := 1.0
		rule := &domain.AuditRuleConfig{
			ID:         "rule-001",
			Name:       "High Total",
			Version:    "1.0.0",
			Expression: "total > 50000.0",
			Bands: []domain.RuleBand{
				{LowerLimit: &one, Outcome: domain.RuleOutcomeReview, Reason: "Review large bill"},
			},
			Weight:  1.0,
			Enabled: true,
		}

		if err := repo.SaveAuditRule(ctx, facilityID, rule); err != nil {
			t.Fatalf("SaveAuditRule failed: %v", err)
		}

		got, err := repo.GetAuditRule(ctx, facilityID, "rule-001")
		if err != nil {
			t.Fatalf("GetAuditRule failed: %v", err)
		}
		if got.Expression != rule.Expression || len(got.Bands) != 1 {
			t.Errorf("unexpected rule: %+v", got)
		}
		if got.Bands[0].Outcome != domain.RuleOutcomeReview {
			t.Errorf("band outcome lost in round trip: %+v", got.Bands[0])
		}

		rules, err := repo.ListAuditRules(ctx, facilityID)
		if err != nil {
			t.Fatalf("ListAuditRules failed: %v", err)
		}
		if len(rules) != 1 {
			t.Errorf("expected 1 rule, got %d", len(rules))
		}
	})

	t.Run("DeleteAuditRule", func(t *testing.T) {
		if err := repo.DeleteAuditRule(ctx, facilityID, "rule-001"); err != nil {
			t.Fatalf("DeleteAuditRule failed: %v", err)
		}

		_, err := repo.GetAuditRule(ctx, facilityID, "rule-001")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("soft-deleted rule should not resolve, got %v", err)
		}

		if err := repo.DeleteAuditRule(ctx, "facility-002", "rule-001"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for other facility, got %v", err)
		}
	})

	t.Run("ReportRoundTrip", func(t *testing.T) {
		report := &domain.AnalysisReport{
			ID:         "report-001",
			FacilityID: facilityID,
			BillRef:    "session-abc",
			Status:     domain.ReportStatusFlagged,
			Score:      0.8,
			Timestamp:  time.Now().UTC(),
			Anomalies: &domain.AnomalyReport{
				HasAnomalies: true,
				Anomalies: []domain.Anomaly{
					{Type: domain.AnomalyTypeDuplication, Severity: domain.SeverityMedium, Description: "Potential duplicate items detected: X-Ray"},
				},
				ConfidenceScore: 0.9,
			},
			RuleResults: []domain.AuditRuleResult{
				{RuleID: "rule-001", Outcome: domain.RuleOutcomeReview, Score: 1, Weight: 1},
			},
			Metadata: domain.ReportMetadata{EngineVersion: "heron-1.0", RulesEvaluated: 1},
		}

		if err := repo.SaveReport(ctx, facilityID, report); err != nil {
			t.Fatalf("SaveReport failed: %v", err)
		}

		got, err := repo.GetReport(ctx, facilityID, "report-001")
		if err != nil {
			t.Fatalf("GetReport failed: %v", err)
		}
		if got.Status != domain.ReportStatusFlagged {
			t.Errorf("expected FLAG, got %s", got.Status)
		}
		if got.Anomalies == nil || len(got.Anomalies.Anomalies) != 1 {
			t.Errorf("anomalies lost in round trip: %+v", got.Anomalies)
		}
		if got.Metadata.EngineVersion != "heron-1.0" {
			t.Errorf("metadata lost in round trip: %+v", got.Metadata)
		}

		if _, err := repo.GetReport(ctx, "facility-002", "report-001"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for other facility, got %v", err)
		}
	})
}

func TestCatalogSeeding(t *testing.T) {
	repo := newTestRepo(t, true)

	ctx := context.Background()

	count, err := repo.CountItems(ctx)
	if err != nil {
		t.Fatalf("CountItems failed: %v", err)
	}
	if count != 68 {
		t.Errorf("expected 68 seeded items, got %d", count)
	}

	// Seeding is idempotent over a non-empty catalog.
	sqlRepo := repo.(*SQLRepository)
	if err := sqlRepo.seedCatalog(ctx); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	count, _ = repo.CountItems(ctx)
	if count != 68 {
		t.Errorf("second seed duplicated items: %d", count)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := New(domain.RepositoryConfig{Driver: "oracle"})
	if err == nil {
		t.Error("expected error for unsupported driver")
	}
}
