package scoring

import (
	"errors"
	"reflect"
	"testing"

	"github.com/opensource-health/heron/internal/domain"
)

func TestDetectCleanBill(t *testing.T) {
	detector := NewAnomalyDetector()

	report, err := detector.Detect(domain.Bill{
		Items: []domain.MedicalItem{
			{Category: "Laboratory", Name: "CBC", Price: 100},
			{Category: "X-Ray", Name: "Chest X-Ray", Price: 100},
		},
		Total: 200,
	})
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if report.HasAnomalies {
		t.Errorf("expected clean bill, got anomalies: %+v", report.Anomalies)
	}
	if report.ConfidenceScore != 1.0 {
		t.Errorf("expected confidence 1.0, got %.2f", report.ConfidenceScore)
	}
}

func TestDetectTotalMismatch(t *testing.T) {
	detector := NewAnomalyDetector()

	report, err := detector.Detect(domain.Bill{
		Items: []domain.MedicalItem{
			{Category: "Laboratory", Name: "CBC", Price: 100},
			{Category: "X-Ray", Name: "Chest X-Ray", Price: 100},
		},
		Total: 250,
	})
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if !report.HasAnomalies || len(report.Anomalies) != 1 {
		t.Fatalf("expected exactly one anomaly, got %d", len(report.Anomalies))
	}

	a := report.Anomalies[0]
	if a.Type != domain.AnomalyTypePricing || a.Severity != domain.SeverityHigh {
		t.Errorf("expected pricing/high, got %s/%s", a.Type, a.Severity)
	}
	if a.Description != "Total mismatch: Expected ৳200, got ৳250" {
		t.Errorf("unexpected description: %q", a.Description)
	}
}

func TestDetectTotalWithinTolerance(t *testing.T) {
	detector := NewAnomalyDetector()

	t.Run("HalfPaisaDrift", func(t *testing.T) {
		report, err := detector.Detect(domain.Bill{
			Items: []domain.MedicalItem{{Category: "Medicine", Name: "A", Price: 100}},
			Total: 100.005,
		})
		if err != nil {
			t.Fatalf("detect failed: %v", err)
		}
		if report.HasAnomalies {
			t.Errorf("drift within tolerance should not flag: %+v", report.Anomalies)
		}
	})

	// A one-paisa difference sits just past the 0.01 cutoff once the
	// float subtraction rounds up, so it flags.
	t.Run("OnePaisaDriftFlags", func(t *testing.T) {
		report, err := detector.Detect(domain.Bill{
			Items: []domain.MedicalItem{{Category: "Medicine", Name: "A", Price: 100}},
			Total: 100.01,
		})
		if err != nil {
			t.Fatalf("detect failed: %v", err)
		}
		if !report.HasAnomalies {
			t.Error("one-paisa drift should flag")
		}
	})
}

func TestDetectDuplicates(t *testing.T) {
	detector := NewAnomalyDetector()

	t.Run("SingleDuplicate", func(t *testing.T) {
		report, err := detector.Detect(domain.Bill{
			Items: []domain.MedicalItem{
				{Category: "X-Ray", Name: "X-Ray", Price: 800},
				{Category: "X-Ray", Name: "X-Ray", Price: 800},
			},
			Total: 1600,
		})
		if err != nil {
			t.Fatalf("detect failed: %v", err)
		}

		if len(report.Anomalies) != 1 {
			t.Fatalf("expected 1 anomaly, got %d", len(report.Anomalies))
		}
		a := report.Anomalies[0]
		if a.Type != domain.AnomalyTypeDuplication || a.Severity != domain.SeverityMedium {
			t.Errorf("expected duplication/medium, got %s/%s", a.Type, a.Severity)
		}
		if a.Description != "Potential duplicate items detected: X-Ray" {
			t.Errorf("unexpected description: %q", a.Description)
		}
	})

	t.Run("TriplicateListedTwice", func(t *testing.T) {
		report, err := detector.Detect(domain.Bill{
			Items: []domain.MedicalItem{
				{Category: "Laboratory", Name: "CBC", Price: 250},
				{Category: "Laboratory", Name: "CBC", Price: 250},
				{Category: "Laboratory", Name: "CBC", Price: 250},
			},
			Total: 750,
		})
		if err != nil {
			t.Fatalf("detect failed: %v", err)
		}

		// A name appears once per occurrence beyond the first.
		want := "Potential duplicate items detected: CBC, CBC"
		if report.Anomalies[0].Description != want {
			t.Errorf("expected %q, got %q", want, report.Anomalies[0].Description)
		}
	})
}

func TestDetectOutliers(t *testing.T) {
	detector := NewAnomalyDetector()

	// Average = (5+5+5+500)/4 = 128.75; each 5 falls below a tenth of
	// that, so three items count as outliers.
	report, err := detector.Detect(domain.Bill{
		Items: []domain.MedicalItem{
			{Category: "Medicine", Name: "A", Price: 5},
			{Category: "Medicine", Name: "B", Price: 5},
			{Category: "Medicine", Name: "C", Price: 5},
			{Category: "Surgery", Name: "D", Price: 500},
		},
		Total: 515,
	})
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if len(report.Anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d: %+v", len(report.Anomalies), report.Anomalies)
	}
	a := report.Anomalies[0]
	if a.Type != domain.AnomalyTypePricing || a.Severity != domain.SeverityLow {
		t.Errorf("expected pricing/low, got %s/%s", a.Type, a.Severity)
	}
	if a.Description != "Unusual pricing detected for 3 items" {
		t.Errorf("unexpected description: %q", a.Description)
	}
}

func TestDetectConfidenceFloor(t *testing.T) {
	detector := NewAnomalyDetector()

	// Trip all three checks.
	report, err := detector.Detect(domain.Bill{
		Items: []domain.MedicalItem{
			{Category: "Medicine", Name: "A", Price: 5},
			{Category: "Medicine", Name: "A", Price: 5},
			{Category: "Medicine", Name: "B", Price: 5},
			{Category: "Surgery", Name: "C", Price: 500},
		},
		Total: 9999,
	})
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if len(report.Anomalies) != 3 {
		t.Fatalf("expected 3 anomalies, got %d", len(report.Anomalies))
	}
	if report.ConfidenceScore != 0.7 {
		t.Errorf("expected confidence floor 0.7, got %.2f", report.ConfidenceScore)
	}
}

func TestDetectIdempotent(t *testing.T) {
	detector := NewAnomalyDetector()

	bill := domain.Bill{
		Items: []domain.MedicalItem{
			{Category: "X-Ray", Name: "X-Ray", Price: 800},
			{Category: "X-Ray", Name: "X-Ray", Price: 800},
		},
		Total: 1700,
	}

	first, err := detector.Detect(bill)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	second, err := detector.Detect(bill)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("detection not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDetectEmptyBill(t *testing.T) {
	detector := NewAnomalyDetector()

	_, err := detector.Detect(domain.Bill{Total: 0})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
