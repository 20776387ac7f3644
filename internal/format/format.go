// Package format renders display strings for analysis results. It is
// a boundary adapter: handlers attach these alongside the raw numeric
// payload, and nothing here alters the numbers themselves.
package format

import (
	"fmt"
	"math"

	"github.com/opensource-health/heron/internal/domain"
)

// takaSymbol is the Bangladeshi taka sign (U+09F3). Amounts are BDT
// throughout; there is no conversion.
const takaSymbol = "৳"

// Taka renders an amount as a taka-prefixed string with two decimals.
func Taka(amount float64) string {
	return fmt.Sprintf("%s%.2f", takaSymbol, amount)
}

// Percent renders a [0,1] ratio as a whole percent string.
func Percent(ratio float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(ratio*100)))
}

// PredictionDisplay carries the display fields for a cost prediction.
type PredictionDisplay struct {
	EstimatedCost     string `json:"estimatedCost"`
	ConfidencePercent string `json:"confidencePercent"`
}

// Prediction builds display fields for a cost prediction.
func Prediction(p *domain.CostPrediction) PredictionDisplay {
	return PredictionDisplay{
		EstimatedCost:     Taka(p.EstimatedCost),
		ConfidencePercent: Percent(p.Confidence),
	}
}

// RiskProfileDisplay carries the display fields for a risk profile.
type RiskProfileDisplay struct {
	PredictedCost    string `json:"predictedCost"`
	RiskScorePercent string `json:"riskScorePercent"`
}

// RiskProfile builds display fields for a risk profile.
func RiskProfile(p *domain.RiskProfile) RiskProfileDisplay {
	return RiskProfileDisplay{
		PredictedCost:    Taka(p.PredictedCost),
		RiskScorePercent: fmt.Sprintf("%d%%", p.RiskScore),
	}
}
