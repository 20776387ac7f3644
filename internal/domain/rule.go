package domain

// AuditRuleConfig defines a facility-configurable bill audit rule.
// The expression is CEL over bill variables (total, item_count,
// avg_price, max_price, min_price, patient_type, category_counts,
// recent_bill_count).
type AuditRuleConfig struct {
	ID          string `json:"id"`
	FacilityID  string `json:"facilityId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`

	// CEL expression over the bill variables
	Expression string `json:"expression"`

	// Outcome bands for score-to-outcome mapping
	Bands []RuleBand `json:"bands"`

	// Rule weight in report aggregation
	Weight float64 `json:"weight"`

	// Disabled rules stay stored but never evaluate
	Enabled bool `json:"enabled"`
}

// RuleBand assigns an outcome to scores at or above its lower limit.
type RuleBand struct {
	LowerLimit *float64 `json:"lowerLimit,omitempty"`
	UpperLimit *float64 `json:"upperLimit,omitempty"`
	Outcome    string   `json:"outcome"` // e.g., ".pass", ".review", ".flag"
	Reason     string   `json:"reason"`
}

// AuditRuleResult is the output of one audit rule evaluation.
type AuditRuleResult struct {
	RuleID     string  `json:"ruleId"`
	FacilityID string  `json:"facilityId"`
	BillRef    string  `json:"billRef"`
	Outcome    string  `json:"outcome"`
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
	Weight     float64 `json:"weight"`
	ProcessMs  int64   `json:"processMs"`
}

// Predefined audit rule outcomes
const (
	RuleOutcomePass   = ".pass"
	RuleOutcomeReview = ".review"
	RuleOutcomeFlag   = ".flag"
	RuleOutcomeError  = ".err"
)
