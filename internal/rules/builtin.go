package rules

import "github.com/opensource-health/heron/internal/domain"

func limit(v float64) *float64 { return &v }

// BuiltinRules returns the default audit rules loaded when a facility
// has configured none of its own.
func BuiltinRules() []*domain.AuditRuleConfig {
	return []*domain.AuditRuleConfig{
		{
			ID:          "builtin-high-total",
			Name:        "High bill total",
			Description: "Escalating review for unusually large bill totals",
			Version:     "1.0.0",
			Expression:  "total > 100000.0 ? 1.0 : (total > 50000.0 ? 0.5 : 0.0)",
			Bands: []domain.RuleBand{
				{LowerLimit: limit(0), UpperLimit: limit(0.5), Outcome: domain.RuleOutcomePass, Reason: "Total within normal range"},
				{LowerLimit: limit(0.5), UpperLimit: limit(1), Outcome: domain.RuleOutcomeReview, Reason: "Total exceeds 50,000"},
				{LowerLimit: limit(1), Outcome: domain.RuleOutcomeFlag, Reason: "Total exceeds 100,000"},
			},
			Weight:  1.0,
			Enabled: true,
		},
		{
			ID:          "builtin-category-burst",
			Name:        "Category burst",
			Description: "Flags bills with more than ten items from one category",
			Version:     "1.0.0",
			Expression:  "category_counts.exists(c, category_counts[c] > 10)",
			Bands: []domain.RuleBand{
				{LowerLimit: limit(0), UpperLimit: limit(1), Outcome: domain.RuleOutcomePass, Reason: "No category burst"},
				{LowerLimit: limit(1), Outcome: domain.RuleOutcomeReview, Reason: "More than 10 items in one category"},
			},
			Weight:  0.8,
			Enabled: true,
		},
		{
			ID:          "builtin-rapid-billing",
			Name:        "Rapid billing",
			Description: "Reviews facilities saving many bills in a short window",
			Version:     "1.0.0",
			Expression:  "recent_bill_count > 20",
			Bands: []domain.RuleBand{
				{LowerLimit: limit(0), UpperLimit: limit(1), Outcome: domain.RuleOutcomePass, Reason: "Normal billing rate"},
				{LowerLimit: limit(1), Outcome: domain.RuleOutcomeReview, Reason: "More than 20 bills in the window"},
			},
			Weight:  0.6,
			Enabled: true,
		},
	}
}
