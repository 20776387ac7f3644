package scoring

import "github.com/opensource-health/heron/internal/domain"

// ConfidenceScore computes a heuristic confidence for a cost estimate.
// Base 0.80; +0.10 for 3 or more items; a further +0.05 for 7 or more;
// plus a tenth of the common-category fraction. Capped at 0.95.
// By construction the result never falls below 0.80 for a non-empty set.
func ConfidenceScore(items []domain.MedicalItem) float64 {
	confidence := 0.80

	if len(items) >= 3 {
		confidence += 0.10
	}
	if len(items) >= 7 {
		confidence += 0.05
	}

	common := 0
	for _, item := range items {
		if domain.IsCommonCategory(item.Category) {
			common++
		}
	}
	confidence += float64(common) / float64(len(items)) * 0.10

	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}
