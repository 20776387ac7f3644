// Package review aggregates anomaly checks and audit rule results
// into a final analysis report for a bill.
package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opensource-health/heron/internal/domain"
)

// EngineVersion is stamped into report metadata.
const EngineVersion = "heron-1.0"

// Processor combines the fixed anomaly checks with weighted audit
// rule scores and decides whether a bill is flagged.
type Processor struct {
	// FlagThreshold is the normalized rule score at or above which a
	// bill is flagged even without anomalies.
	FlagThreshold float64

	// UseWeightedScoring applies rule weights during aggregation.
	UseWeightedScoring bool
}

// NewProcessor creates a processor with default settings.
func NewProcessor() *Processor {
	return &Processor{
		FlagThreshold:      0.7,
		UseWeightedScoring: true,
	}
}

// Input contains everything needed to produce a report.
type Input struct {
	FacilityID  string
	BillRef     string
	TraceID     string
	Anomalies   *domain.AnomalyReport
	RuleResults []domain.AuditRuleResult
	ChecksMs    int64
	RulesMs     int64
	StartTime   time.Time
}

// Process produces the final analysis report for a bill.
func (p *Processor) Process(ctx context.Context, input *Input) *domain.AnalysisReport {
	report := &domain.AnalysisReport{
		ID:          uuid.New().String(),
		FacilityID:  input.FacilityID,
		BillRef:     input.BillRef,
		Timestamp:   time.Now().UTC(),
		Anomalies:   input.Anomalies,
		RuleResults: input.RuleResults,
	}

	agg := p.aggregate(input.RuleResults)

	flagged := agg.HasFlagOutcome || agg.AggregateScore >= p.FlagThreshold
	if input.Anomalies != nil && input.Anomalies.HasAnomalies {
		flagged = true
	}

	if flagged {
		report.Status = domain.ReportStatusFlagged
	} else {
		report.Status = domain.ReportStatusClean
	}
	report.Score = agg.AggregateScore

	report.Metadata = domain.ReportMetadata{
		TraceID:        input.TraceID,
		ChecksMs:       input.ChecksMs,
		RulesMs:        input.RulesMs,
		TotalMs:        time.Since(input.StartTime).Milliseconds(),
		RulesEvaluated: len(input.RuleResults),
		EngineVersion:  EngineVersion,
	}

	return report
}

// AggregateResult holds the aggregated rule scoring.
type AggregateResult struct {
	AggregateScore float64
	TotalWeight    float64
	RulesTriggered int
	HasFlagOutcome bool
}

// aggregate computes the normalized weighted score from rule results.
func (p *Processor) aggregate(results []domain.AuditRuleResult) *AggregateResult {
	agg := &AggregateResult{}
	if len(results) == 0 {
		return agg
	}

	for _, r := range results {
		weight := r.Weight
		if weight <= 0 {
			weight = 1.0
		}

		switch r.Outcome {
		case domain.RuleOutcomeFlag:
			agg.HasFlagOutcome = true
			agg.RulesTriggered++
		case domain.RuleOutcomeReview:
			agg.RulesTriggered++
		}

		if p.UseWeightedScoring {
			agg.AggregateScore += r.Score * weight
			agg.TotalWeight += weight
		} else {
			agg.AggregateScore += r.Score
			agg.TotalWeight += 1.0
		}
	}

	if agg.TotalWeight > 0 {
		agg.AggregateScore = agg.AggregateScore / agg.TotalWeight
	}

	return agg
}

// ShouldAlert reports whether the report should raise an anomaly alert.
func ShouldAlert(report *domain.AnalysisReport) bool {
	return report.Status == domain.ReportStatusFlagged
}

// Reasons extracts human-readable reasons from a report: anomaly
// descriptions plus any review or flag rule reasons.
func Reasons(report *domain.AnalysisReport) []string {
	var reasons []string
	if report.Anomalies != nil {
		for _, a := range report.Anomalies.Anomalies {
			reasons = append(reasons, a.Description)
		}
	}
	for _, r := range report.RuleResults {
		if r.Outcome == domain.RuleOutcomeFlag || r.Outcome == domain.RuleOutcomeReview {
			if r.Reason != "" {
				reasons = append(reasons, r.Reason)
			}
		}
	}
	return reasons
}
