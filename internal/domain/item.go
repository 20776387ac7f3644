// Package domain defines the core interfaces and types for Heron.
package domain

import (
	"fmt"
	"time"
)

// DefaultCurrency is the catalog currency code. Prices are passed
// through as-is; Heron performs no conversion.
const DefaultCurrency = "BDT"

// AdmissionType classifies a patient as outpatient or inpatient.
type AdmissionType string

const (
	AdmissionOutpatient AdmissionType = "outpatient"
	AdmissionInpatient  AdmissionType = "inpatient"
)

// ParseAdmissionType validates an admission type string.
func ParseAdmissionType(s string) (AdmissionType, error) {
	switch AdmissionType(s) {
	case AdmissionOutpatient:
		return AdmissionOutpatient, nil
	case AdmissionInpatient:
		return AdmissionInpatient, nil
	default:
		return "", fmt.Errorf("%w: admission type must be outpatient or inpatient, got %q", ErrInvalidInput, s)
	}
}

// MedicalItem is a single billable service or product from the catalog.
type MedicalItem struct {
	ID          int64   `json:"id,omitempty"`
	Category    string  `json:"category"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency,omitempty"`
	Description string  `json:"description,omitempty"`

	// IsOutpatient marks which price schedule the item belongs to.
	IsOutpatient bool `json:"isOutpatient"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Bill is the analysis input for anomaly detection: a set of line
// items plus the caller-asserted total.
type Bill struct {
	Items []MedicalItem `json:"items"`
	Total float64       `json:"total"`
}

// StoredBill is a persisted bill tied to a browser session.
type StoredBill struct {
	ID           int64         `json:"id,omitempty"`
	FacilityID   string        `json:"facilityId,omitempty"`
	Type         AdmissionType `json:"type"`
	SessionID    string        `json:"sessionId"`
	BillData     string        `json:"billData"` // JSON-encoded line items
	DaysAdmitted int           `json:"daysAdmitted,omitempty"`
	Total        float64       `json:"total"`
	Currency     string        `json:"currency"`
	CreatedAt    time.Time     `json:"createdAt,omitempty"`
	UpdatedAt    time.Time     `json:"updatedAt,omitempty"`
}
