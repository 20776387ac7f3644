package scoring

import (
	"fmt"

	"github.com/opensource-health/heron/internal/domain"
)

// RiskProfiler scores patient risk from demographics, admission type,
// item complexity, and medical history, and reuses the cost predictor
// for an expected-cost figure.
type RiskProfiler struct {
	predictor *CostPredictor
}

// NewRiskProfiler creates a risk profiler.
func NewRiskProfiler(predictor *CostPredictor) *RiskProfiler {
	return &RiskProfiler{predictor: predictor}
}

// AssessRisk produces a risk profile for a patient context. Returns
// ErrInvalidInput when currentItems is empty or the admission type is
// unrecognized (propagated from the cost predictor).
func (r *RiskProfiler) AssessRisk(patient domain.PatientContext) (*domain.RiskProfile, error) {
	prediction, err := r.predictor.Predict(patient.CurrentItems, patient.AdmissionType)
	if err != nil {
		return nil, err
	}

	score := 20

	if patient.Age != nil {
		age := *patient.Age
		switch {
		case age > 65:
			score += 25
		case age > 45:
			score += 15
		case age < 18:
			score += 10
		}
	}

	if patient.AdmissionType == domain.AdmissionInpatient {
		score += 20
	}

	complexItems := countComplexItems(patient.CurrentItems)
	score += complexItems * 5

	score += 3 * len(patient.MedicalHistory)

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	level := domain.RiskLevelForScore(score)

	return &domain.RiskProfile{
		RiskScore:       score,
		RiskLevel:       level,
		PredictedCost:   prediction.EstimatedCost,
		Recommendations: riskRecommendations(level),
		Factors:         riskFactors(patient, complexItems),
	}, nil
}

// countComplexItems counts items in the high-variance category list
// (Surgery, Procedures, Laboratory); each contributes +5 to the score.
func countComplexItems(items []domain.MedicalItem) int {
	n := 0
	for _, item := range items {
		if domain.IsHighVarianceCategory(item.Category) {
			n++
		}
	}
	return n
}

func riskRecommendations(level domain.RiskLevel) []string {
	switch level {
	case domain.RiskCritical:
		return []string{
			"Immediate medical attention required",
			"Consider specialized care team assignment",
			"Implement enhanced monitoring protocols",
		}
	case domain.RiskHigh:
		return []string{
			"Schedule regular follow-up appointments",
			"Consider preventive care measures",
			"Monitor for complications",
		}
	case domain.RiskMedium:
		return []string{
			"Standard care protocols apply",
			"Regular health screenings recommended",
		}
	default:
		return []string{
			"Routine care and monitoring",
			"Focus on preventive health measures",
		}
	}
}

func riskFactors(patient domain.PatientContext, complexItems int) []domain.RiskFactor {
	var factors []domain.RiskFactor

	if patient.Age != nil {
		age := *patient.Age
		weight := 0.1
		switch {
		case age > 65:
			weight = 0.3
		case age > 45:
			weight = 0.2
		}
		factors = append(factors, domain.RiskFactor{
			Factor:      "Age",
			Weight:      weight,
			Description: fmt.Sprintf("Patient age: %d years", age),
		})
	}

	admissionWeight := 0.1
	if patient.AdmissionType == domain.AdmissionInpatient {
		admissionWeight = 0.25
	}
	factors = append(factors, domain.RiskFactor{
		Factor:      "Admission Type",
		Weight:      admissionWeight,
		Description: fmt.Sprintf("%s care requirements", patient.AdmissionType),
	})

	if complexItems > 0 {
		factors = append(factors, domain.RiskFactor{
			Factor:      "Medical Complexity",
			Weight:      0.2,
			Description: fmt.Sprintf("%d complex medical procedures required", complexItems),
		})
	}

	return factors
}
