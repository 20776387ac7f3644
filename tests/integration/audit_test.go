//go:build integration
// +build integration

// Package integration provides end-to-end tests for the Heron billing
// analysis engine.
//
// These tests verify the COMPLETE analysis pipeline:
//
//	Bill → Anomaly Checks → Audit Rules → Aggregation → Final Report
//
// Run with: go test -tags=integration -v ./tests/integration/...
//
// UNDERSTANDING THE DOMAIN:
//
// 1. BILL: A session-scoped list of priced medical items plus a total.
//
// 2. ANOMALY CHECK: A fixed heuristic over the bill:
//   - Total mismatch: item sum differs from the stated total
//   - Duplication: the same item name appears more than once
//   - Pricing outlier: an item priced far from the bill's average
//
// 3. AUDIT RULE: A facility-configurable CEL expression over bill
//    variables (total, item_count, avg_price, ...) with score bands
//    mapping to outcomes (.pass, .review, .flag) and a weight.
//
// 4. REPORT: Final verdict - "FLAG" (anomalous or rule-flagged) or
//    "CLEAN", with a normalized weighted score and reasons.
//
// The server must be running (default http://localhost:8080); set
// HERON_TEST_URL to point elsewhere.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// TestConfig holds test environment configuration.
type TestConfig struct {
	BaseURL    string
	FacilityID string
}

func getTestConfig() TestConfig {
	baseURL := os.Getenv("HERON_TEST_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return TestConfig{
		BaseURL:    baseURL,
		FacilityID: "test-facility",
	}
}

// Item is one catalog line on a bill.
type Item struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
}

// AuditRequest is the bill sent to POST /audit.
type AuditRequest struct {
	BillRef     string  `json:"billRef"`
	PatientType string  `json:"patientType"`
	Items       []Item  `json:"items"`
	Total       float64 `json:"total"`
}

// AuditResponse is what POST /audit returns.
type AuditResponse struct {
	ID        string   `json:"id"`
	BillRef   string   `json:"billRef"`
	Status    string   `json:"status"` // "FLAG" or "CLEAN"
	Score     float64  `json:"score"`
	Reasons   []string `json:"reasons"`
	Anomalies *struct {
		HasAnomalies    bool    `json:"hasAnomalies"`
		ConfidenceScore float64 `json:"confidenceScore"`
		Anomalies       []struct {
			Type        string `json:"type"`
			Severity    string `json:"severity"`
			Description string `json:"description"`
		} `json:"anomalies"`
	} `json:"anomalies"`
}

func doJSON(t *testing.T, config TestConfig, method, path string, payload any, out any) int {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequest(method, config.BaseURL+path, body)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Facility-ID", config.FacilityID)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			t.Fatalf("Failed to unmarshal response: %v (body: %s)", err, string(respBody))
		}
	}

	return resp.StatusCode
}

func audit(t *testing.T, config TestConfig, req AuditRequest) AuditResponse {
	t.Helper()

	var result AuditResponse
	status := doJSON(t, config, "POST", "/audit", req, &result)
	if status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	return result
}

func TestCleanBill_NoFlag(t *testing.T) {
	/*
	   SCENARIO: A regular outpatient bill whose items sum to the total,
	   with no duplicates and no pricing outliers.

	   EXPECTED: No anomaly check fires, no audit rule flags,
	   status "CLEAN" with score 0.
	*/
	config := getTestConfig()

	result := audit(t, config, AuditRequest{
		BillRef:     fmt.Sprintf("OPD-clean-%d", time.Now().UnixNano()),
		PatientType: "outpatient",
		Items: []Item{
			{Category: "Laboratory", Name: "CBC", Price: 400},
			{Category: "X-Ray", Name: "Chest X-Ray", Price: 600},
			{Category: "Medicine", Name: "Paracetamol", Price: 200},
		},
		Total: 1200,
	})

	if result.Status != "CLEAN" {
		t.Errorf("Expected status CLEAN, got %s (reasons: %v)", result.Status, result.Reasons)
	}
	if result.Anomalies != nil && result.Anomalies.HasAnomalies {
		t.Errorf("Expected no anomalies, got %+v", result.Anomalies.Anomalies)
	}

	t.Logf("✓ Clean bill passed: status=%s, score=%.2f", result.Status, result.Score)
}

func TestTotalMismatch_Flagged(t *testing.T) {
	/*
	   SCENARIO: Items sum to 1000 but the stated total is 1500.

	   EXPECTED: The total-mismatch check fires with high severity and
	   the bill is flagged regardless of audit rule scores.
	*/
	config := getTestConfig()

	result := audit(t, config, AuditRequest{
		BillRef:     fmt.Sprintf("OPD-mismatch-%d", time.Now().UnixNano()),
		PatientType: "outpatient",
		Items: []Item{
			{Category: "Laboratory", Name: "CBC", Price: 400},
			{Category: "X-Ray", Name: "Chest X-Ray", Price: 600},
		},
		Total: 1500,
	})

	if result.Status != "FLAG" {
		t.Errorf("Expected status FLAG, got %s", result.Status)
	}
	if result.Anomalies == nil || !result.Anomalies.HasAnomalies {
		t.Fatal("Expected anomalies in report")
	}

	foundPricing := false
	for _, a := range result.Anomalies.Anomalies {
		if a.Type == "pricing" && a.Severity == "high" {
			foundPricing = true
		}
	}
	if !foundPricing {
		t.Errorf("Expected high-severity pricing anomaly, got %+v", result.Anomalies.Anomalies)
	}

	t.Logf("✓ Mismatched bill flagged: reasons=%v", result.Reasons)
}

func TestDuplicateItems_Flagged(t *testing.T) {
	/*
	   SCENARIO: The same lab test appears twice on one bill.

	   EXPECTED: The duplication check fires with medium severity.
	*/
	config := getTestConfig()

	result := audit(t, config, AuditRequest{
		BillRef:     fmt.Sprintf("IPD-dup-%d", time.Now().UnixNano()),
		PatientType: "inpatient",
		Items: []Item{
			{Category: "Laboratory", Name: "CBC", Price: 400},
			{Category: "Laboratory", Name: "CBC", Price: 400},
		},
		Total: 800,
	})

	if result.Status != "FLAG" {
		t.Errorf("Expected status FLAG, got %s", result.Status)
	}

	foundDup := false
	if result.Anomalies != nil {
		for _, a := range result.Anomalies.Anomalies {
			if a.Type == "duplication" {
				foundDup = true
			}
		}
	}
	if !foundDup {
		t.Error("Expected duplication anomaly")
	}

	t.Logf("✓ Duplicate bill flagged: reasons=%v", result.Reasons)
}

func TestReportPersistence(t *testing.T) {
	/*
	   SCENARIO: Audit a bill, then fetch the stored report by ID.

	   EXPECTED: GET /reports/{id} returns the same report for the
	   same facility, and 404 for a different facility.
	*/
	config := getTestConfig()

	result := audit(t, config, AuditRequest{
		BillRef:     fmt.Sprintf("OPD-persist-%d", time.Now().UnixNano()),
		PatientType: "outpatient",
		Items: []Item{
			{Category: "Laboratory", Name: "CBC", Price: 400},
			{Category: "Laboratory", Name: "CBC", Price: 400},
		},
		Total: 800,
	})

	if result.ID == "" {
		t.Fatal("Expected report ID")
	}

	var fetched AuditResponse
	status := doJSON(t, config, "GET", "/reports/"+result.ID, nil, &fetched)
	if status != http.StatusOK {
		t.Fatalf("Expected status 200 fetching report, got %d", status)
	}
	if fetched.BillRef != result.BillRef {
		t.Errorf("Expected billRef %s, got %s", result.BillRef, fetched.BillRef)
	}

	otherFacility := TestConfig{BaseURL: config.BaseURL, FacilityID: "other-facility"}
	status = doJSON(t, otherFacility, "GET", "/reports/"+result.ID, nil, nil)
	if status != http.StatusNotFound {
		t.Errorf("Expected 404 for another facility, got %d", status)
	}

	t.Logf("✓ Report persisted and facility-scoped: id=%s", result.ID)
}

func TestBillSaveAndFetch(t *testing.T) {
	/*
	   SCENARIO: Save a session bill, then fetch it back by session and
	   type. The save also announces the bill on the event bus for any
	   async workers, which must not affect the synchronous flow.
	*/
	config := getTestConfig()

	sessionID := fmt.Sprintf("OPD-session-%d", time.Now().UnixNano())

	saveReq := map[string]any{
		"type":      "outpatient",
		"sessionId": sessionID,
		"items": []Item{
			{Category: "Laboratory", Name: "CBC", Price: 400},
		},
		"total": 400,
	}

	status := doJSON(t, config, "POST", "/bills", saveReq, nil)
	if status != http.StatusOK {
		t.Fatalf("Expected status 200 saving bill, got %d", status)
	}

	var fetched struct {
		SessionID string  `json:"sessionId"`
		Total     float64 `json:"total"`
		Currency  string  `json:"currency"`
	}
	status = doJSON(t, config, "GET", "/bills?sessionId="+sessionID+"&type=outpatient", nil, &fetched)
	if status != http.StatusOK {
		t.Fatalf("Expected status 200 fetching bill, got %d", status)
	}
	if fetched.SessionID != sessionID {
		t.Errorf("Expected session %s, got %s", sessionID, fetched.SessionID)
	}
	if fetched.Currency != "BDT" {
		t.Errorf("Expected currency BDT, got %s", fetched.Currency)
	}

	t.Logf("✓ Bill saved and fetched: session=%s", sessionID)
}

func TestAuditRuleLifecycle(t *testing.T) {
	/*
	   SCENARIO: Create a custom rule that flags totals above 100000,
	   reload, audit a bill above the threshold, then delete the rule.

	   EXPECTED: The expensive bill is flagged by the custom rule even
	   though no fixed anomaly check fires.
	*/
	config := getTestConfig()

	ruleID := fmt.Sprintf("itest-high-total-%d", time.Now().UnixNano())

	createReq := map[string]any{
		"id":         ruleID,
		"name":       "Integration High Total",
		"expression": "total > 100000.0",
		"bands": []map[string]any{
			{"lowerLimit": 1.0, "outcome": ".flag", "reason": "Total exceeds audit ceiling"},
		},
		"weight":  1.0,
		"enabled": true,
	}

	status := doJSON(t, config, "POST", "/audit/rules", createReq, nil)
	if status != http.StatusCreated {
		t.Fatalf("Expected status 201 creating rule, got %d", status)
	}
	defer doJSON(t, config, "DELETE", "/audit/rules/"+ruleID, nil, nil)

	status = doJSON(t, config, "POST", "/audit/rules/reload", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Expected status 200 reloading rules, got %d", status)
	}

	result := audit(t, config, AuditRequest{
		BillRef:     fmt.Sprintf("IPD-expensive-%d", time.Now().UnixNano()),
		PatientType: "inpatient",
		Items: []Item{
			{Category: "Surgery", Name: "Surgery, O.R. & Delivery", Price: 150000},
		},
		Total: 150000,
	})

	if result.Status != "FLAG" {
		t.Errorf("Expected status FLAG from custom rule, got %s", result.Status)
	}

	t.Logf("✓ Custom rule flagged expensive bill: reasons=%v", result.Reasons)
}

func TestPredictCost(t *testing.T) {
	/*
	   SCENARIO: Predict the cost of a small outpatient bill.

	   EXPECTED: A positive estimate with confidence in (0, 1] and a
	   display string in taka.
	*/
	config := getTestConfig()

	var resp struct {
		EstimatedCost float64 `json:"estimatedCost"`
		Confidence    float64 `json:"confidence"`
		Display       struct {
			EstimatedCost string `json:"estimatedCost"`
		} `json:"display"`
	}

	status := doJSON(t, config, "POST", "/analysis/predict-cost", map[string]any{
		"items": []Item{
			{Category: "Laboratory", Name: "CBC", Price: 400},
			{Category: "Medicine", Name: "Paracetamol", Price: 20},
		},
		"patientType": "outpatient",
	}, &resp)

	if status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if resp.EstimatedCost <= 0 {
		t.Errorf("Expected positive estimate, got %f", resp.EstimatedCost)
	}
	if resp.Confidence <= 0 || resp.Confidence > 1 {
		t.Errorf("Confidence out of range: %f", resp.Confidence)
	}

	t.Logf("✓ Cost predicted: %s (confidence %.2f)", resp.Display.EstimatedCost, resp.Confidence)
}
