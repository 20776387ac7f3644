// Package analytics summarizes historical bills into trend and demand
// reports for the billing-analytics operation.
package analytics

import (
	"fmt"
	"strings"

	"github.com/opensource-health/heron/internal/domain"
	"github.com/opensource-health/heron/internal/scoring"
)

// Trend labels attached to category cost trends.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Aggregator builds BillingAnalytics from a bill history. It carries
// no state beyond the trend source and is safe for concurrent use when
// the source is.
type Aggregator struct {
	source TrendSource
}

// NewAggregator creates an aggregator backed by the given trend source.
func NewAggregator(source TrendSource) *Aggregator {
	return &Aggregator{source: source}
}

// Aggregate summarizes the history: bill count, mean cost, per-category
// trends and demand forecasts. An empty history yields the zero-state
// result with empty (not nil) collections; it is never an error.
func (a *Aggregator) Aggregate(history []domain.Bill) *domain.BillingAnalytics {
	if len(history) == 0 {
		return &domain.BillingAnalytics{
			CostTrends:      []domain.CategoryTrend{},
			PredictedDemand: []domain.DemandForecast{},
		}
	}

	var sum float64
	for _, bill := range history {
		sum += bill.Total
	}

	trends := make([]domain.CategoryTrend, 0, len(domain.TrendCategories))
	for _, category := range domain.TrendCategories {
		change := a.source.EstimateTrend(category)
		trends = append(trends, domain.CategoryTrend{
			Category:      category,
			Trend:         trendLabel(change),
			ChangePercent: scoring.Round2(change),
		})
	}

	demand := make([]domain.DemandForecast, 0, len(domain.DemandCategories))
	for _, category := range domain.DemandCategories {
		usage, confidence := a.source.ForecastDemand(category)
		demand = append(demand, domain.DemandForecast{
			Category:       category,
			PredictedUsage: usage,
			Confidence:     confidence,
		})
	}

	return &domain.BillingAnalytics{
		TotalBills:      len(history),
		AverageCost:     scoring.Round2(sum / float64(len(history))),
		CostTrends:      trends,
		PredictedDemand: demand,
	}
}

// trendLabel maps a change percent to its direction label. Changes
// within two percent of flat count as stable.
func trendLabel(changePercent float64) string {
	switch {
	case changePercent > 2:
		return TrendIncreasing
	case changePercent < -2:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// Insights derives advisory strings from an analytics result.
func Insights(analytics *domain.BillingAnalytics) []string {
	if analytics.TotalBills == 0 {
		return []string{"No historical data available for analysis"}
	}

	var insights []string

	for _, trend := range analytics.CostTrends {
		if trend.Trend == TrendIncreasing {
			insights = append(insights, "Some categories show increasing cost trends - consider optimization")
			break
		}
	}

	var highDemand []string
	for _, forecast := range analytics.PredictedDemand {
		if forecast.PredictedUsage > 80 {
			highDemand = append(highDemand, forecast.Category)
		}
	}
	if len(highDemand) > 0 {
		insights = append(insights, fmt.Sprintf("High demand predicted for: %s", strings.Join(highDemand, ", ")))
	}

	return insights
}
