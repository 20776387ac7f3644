package scoring

import (
	"fmt"
	"math"

	"github.com/opensource-health/heron/internal/domain"
)

// CostPredictor combines a base cost sum with factor-derived
// multiplicative adjustment and a confidence score.
type CostPredictor struct{}

// NewCostPredictor creates a cost predictor.
func NewCostPredictor() *CostPredictor {
	return &CostPredictor{}
}

// Predict estimates the total cost for a set of items and a patient
// type. Returns ErrInvalidInput for an empty item set or unrecognized
// patient type.
func (p *CostPredictor) Predict(items []domain.MedicalItem, patientType domain.AdmissionType) (*domain.CostPrediction, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one line item is required", domain.ErrInvalidInput)
	}
	if _, err := domain.ParseAdmissionType(string(patientType)); err != nil {
		return nil, err
	}

	var baseCost float64
	for _, item := range items {
		baseCost += item.Price
	}

	factors := AnalyzeCostFactors(items, patientType)

	adjustment := 1.0
	for _, f := range factors {
		adjustment += f.Impact
	}

	return &domain.CostPrediction{
		EstimatedCost:   Round2(baseCost * adjustment),
		Confidence:      ConfidenceScore(items),
		Factors:         factors,
		Recommendations: recommendations(items, factors),
	}, nil
}

// recommendations builds the ordered suggestion list: an efficiency
// tip when any factor impact exceeds 0.1, one tip per relevant
// category in first-appearance order, then two fixed closing tips.
func recommendations(items []domain.MedicalItem, factors []domain.CostFactor) []string {
	var recs []string

	for _, f := range factors {
		if f.Impact > 0.1 {
			recs = append(recs, "Consider reviewing high-impact cost factors for potential optimization")
			break
		}
	}

	categoryTips := map[string]string{
		"Laboratory": "Bundle laboratory tests to reduce processing costs",
		"Medicine":   "Verify medicine dosages to avoid waste and optimize costs",
		"Surgery":    "Ensure all surgical procedures are properly documented for accurate billing",
	}

	seen := make(map[string]bool)
	for _, item := range items {
		if seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		if tip, ok := categoryTips[item.Category]; ok {
			recs = append(recs, tip)
		}
	}

	recs = append(recs,
		"Implement predictive analytics for better cost management",
		"Use AI-powered demand forecasting for inventory optimization",
	)

	return recs
}

// Round2 rounds to two decimal places, half away from zero. Pinned so
// boundary values like 2.005 round up for non-negative inputs.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
