package domain

import "time"

// CostFactor is a named multiplicative adjustment to a base cost sum.
type CostFactor struct {
	Factor      string  `json:"factor"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
}

// CostPrediction is the cost predictor output. Value object, no identity.
type CostPrediction struct {
	EstimatedCost   float64      `json:"estimatedCost"`
	Confidence      float64      `json:"confidence"`
	Factors         []CostFactor `json:"factors"`
	Recommendations []string     `json:"recommendations"`
}

// PatientContext is the risk profiler input.
type PatientContext struct {
	Age            *int          `json:"age,omitempty"`
	AdmissionType  AdmissionType `json:"admissionType"`
	CurrentItems   []MedicalItem `json:"currentItems"`
	MedicalHistory []string      `json:"medicalHistory,omitempty"`
}

// RiskFactor is a named, weighted contributor to a patient risk score.
// Distinct shape from CostFactor: it carries a weight, not an impact.
type RiskFactor struct {
	Factor      string  `json:"factor"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// RiskLevel classifies a risk score into a band.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevelForScore maps a clamped risk score to its band.
// Breakpoints: >=75 critical, >=50 high, >=25 medium, else low.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 75:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 25:
		return RiskMedium
	default:
		return RiskLow
	}
}

// RiskProfile is the risk profiler output.
type RiskProfile struct {
	RiskScore       int          `json:"riskScore"`
	RiskLevel       RiskLevel    `json:"riskLevel"`
	PredictedCost   float64      `json:"predictedCost"`
	Recommendations []string     `json:"recommendations"`
	Factors         []RiskFactor `json:"factors"`
}

// Anomaly severity levels and types.
const (
	AnomalyTypePricing     = "pricing"
	AnomalyTypeDuplication = "duplication"

	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Anomaly is one detected irregularity in a finalized bill.
type Anomaly struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// AnomalyReport is the anomaly detector output.
type AnomalyReport struct {
	HasAnomalies    bool      `json:"hasAnomalies"`
	Anomalies       []Anomaly `json:"anomalies"`
	ConfidenceScore float64   `json:"confidenceScore"`
}

// CategoryTrend describes a per-category cost direction.
type CategoryTrend struct {
	Category      string  `json:"category"`
	Trend         string  `json:"trend"` // "increasing", "decreasing", "stable"
	ChangePercent float64 `json:"changePercent"`
}

// DemandForecast is a per-category predicted usage figure.
type DemandForecast struct {
	Category       string  `json:"category"`
	PredictedUsage int     `json:"predictedUsage"`
	Confidence     float64 `json:"confidence"`
}

// BillingAnalytics summarizes a set of historical bills.
type BillingAnalytics struct {
	TotalBills      int              `json:"totalBills"`
	AverageCost     float64          `json:"averageCost"`
	CostTrends      []CategoryTrend  `json:"costTrends"`
	PredictedDemand []DemandForecast `json:"predictedDemand"`
}

// Report status constants.
const (
	ReportStatusClean   = "CLEAN"
	ReportStatusFlagged = "FLAG"
)

// AnalysisReport is a persisted record of a bill review: the fixed
// anomaly checks plus any facility-defined audit rule results.
type AnalysisReport struct {
	ID         string    `json:"id"`
	FacilityID string    `json:"facilityId"`
	BillRef    string    `json:"billRef"` // session ID or external bill reference
	Status     string    `json:"status"`  // "CLEAN" or "FLAG"
	Score      float64   `json:"score"`
	Timestamp  time.Time `json:"timestamp"`

	Anomalies   *AnomalyReport    `json:"anomalies,omitempty"`
	RuleResults []AuditRuleResult `json:"ruleResults,omitempty"`

	Metadata ReportMetadata `json:"metadata"`
}

// ReportMetadata contains processing information.
type ReportMetadata struct {
	TraceID        string `json:"traceId,omitempty"`
	ChecksMs       int64  `json:"checksMs"`
	RulesMs        int64  `json:"rulesMs"`
	TotalMs        int64  `json:"totalMs"`
	RulesEvaluated int    `json:"rulesEvaluated"`
	EngineVersion  string `json:"engineVersion"`
}
