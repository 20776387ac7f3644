package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/opensource-health/heron/internal/domain"
)

// AnomalyDetector runs the fixed, order-stable checks over a finalized
// bill: total mismatch, duplicate items, price outliers.
type AnomalyDetector struct{}

// NewAnomalyDetector creates an anomaly detector.
func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{}
}

// Detect inspects a bill and reports anomalies with severities. Each
// check appends at most one anomaly, in fixed order. Returns
// ErrInvalidInput for a bill with no items; the outlier average is
// undefined for those.
func (d *AnomalyDetector) Detect(bill domain.Bill) (*domain.AnomalyReport, error) {
	if len(bill.Items) == 0 {
		return nil, fmt.Errorf("%w: bill must contain at least one item", domain.ErrInvalidInput)
	}

	var anomalies []domain.Anomaly

	if a, ok := checkTotal(bill); ok {
		anomalies = append(anomalies, a)
	}
	if a, ok := checkDuplicates(bill.Items); ok {
		anomalies = append(anomalies, a)
	}
	if a, ok := checkOutliers(bill.Items); ok {
		anomalies = append(anomalies, a)
	}

	confidence := 1 - 0.1*float64(len(anomalies))
	if confidence < 0.7 {
		confidence = 0.7
	}

	return &domain.AnomalyReport{
		HasAnomalies:    len(anomalies) > 0,
		Anomalies:       anomalies,
		ConfidenceScore: confidence,
	}, nil
}

// checkTotal flags the bill when the asserted total drifts more than a
// cent from the item sum.
func checkTotal(bill domain.Bill) (domain.Anomaly, bool) {
	var expected float64
	for _, item := range bill.Items {
		expected += item.Price
	}

	if math.Abs(bill.Total-expected) <= 0.01 {
		return domain.Anomaly{}, false
	}

	return domain.Anomaly{
		Type:     domain.AnomalyTypePricing,
		Severity: domain.SeverityHigh,
		Description: fmt.Sprintf("Total mismatch: Expected ৳%s, got ৳%s",
			formatAmount(expected), formatAmount(bill.Total)),
		Recommendation: "Verify calculation accuracy and item pricing",
	}, true
}

// checkDuplicates lists item names past their first occurrence. A name
// appears in the list once per extra occurrence, so a triplicated item
// shows up twice.
func checkDuplicates(items []domain.MedicalItem) (domain.Anomaly, bool) {
	seen := make(map[string]bool, len(items))
	var duplicates []string
	for _, item := range items {
		if seen[item.Name] {
			duplicates = append(duplicates, item.Name)
			continue
		}
		seen[item.Name] = true
	}

	if len(duplicates) == 0 {
		return domain.Anomaly{}, false
	}

	return domain.Anomaly{
		Type:           domain.AnomalyTypeDuplication,
		Severity:       domain.SeverityMedium,
		Description:    "Potential duplicate items detected: " + strings.Join(duplicates, ", "),
		Recommendation: "Review for legitimate duplicate services vs. billing errors",
	}, true
}

// checkOutliers flags items priced more than 5x or less than a tenth
// of the bill's average price.
func checkOutliers(items []domain.MedicalItem) (domain.Anomaly, bool) {
	var sum float64
	for _, item := range items {
		sum += item.Price
	}
	average := sum / float64(len(items))

	outliers := 0
	for _, item := range items {
		if item.Price > average*5 || item.Price < average*0.1 {
			outliers++
		}
	}

	if outliers == 0 {
		return domain.Anomaly{}, false
	}

	return domain.Anomaly{
		Type:           domain.AnomalyTypePricing,
		Severity:       domain.SeverityLow,
		Description:    fmt.Sprintf("Unusual pricing detected for %d items", outliers),
		Recommendation: "Verify pricing accuracy for outlier items",
	}, true
}

// formatAmount renders an amount with the fewest digits that round-trip.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
