package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/opensource-health/heron/internal/domain"
	"github.com/opensource-health/heron/internal/review"
	"github.com/opensource-health/heron/internal/rules"
)

// billCacheTTL bounds how long a session bill snapshot is served
// from cache before falling back to the repository.
const billCacheTTL = 30 * time.Minute

// SaveBillRequest is the request body for POST /bills.
type SaveBillRequest struct {
	Type         string               `json:"type"`
	SessionID    string               `json:"sessionId"`
	Items        []domain.MedicalItem `json:"items"`
	DaysAdmitted int                  `json:"daysAdmitted,omitempty"`
	Total        float64              `json:"total"`
	Currency     string               `json:"currency,omitempty"`
}

// billEvent is the payload published on heron.bill.saved.
type billEvent struct {
	SessionID   string               `json:"sessionId"`
	FacilityID  string               `json:"facilityId"`
	TraceID     string               `json:"traceId"`
	PatientType string               `json:"patientType"`
	Items       []domain.MedicalItem `json:"items"`
	Total       float64              `json:"total"`
}

// SaveBill handles POST /bills. The bill is upserted per
// (session, type), cached, counted for usage tracking, and announced
// on the event bus for async analysis.
func (h *Handler) SaveBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	traceID := GetTraceID(ctx)

	var req SaveBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	billType, err := domain.ParseAdmissionType(req.Type)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "sessionId is required",
		})
		return
	}

	billData, err := json.Marshal(req.Items)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "items are not serializable",
		})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	saved, err := h.repo.SaveBill(ctx, facilityID, &domain.StoredBill{
		Type:         billType,
		SessionID:    req.SessionID,
		BillData:     string(billData),
		DaysAdmitted: req.DaysAdmitted,
		Total:        req.Total,
		Currency:     currency,
	})
	if err != nil {
		slog.Error("failed to save bill", "session_id", req.SessionID, "error", err)
		writeError(w, err)
		return
	}

	if h.cache != nil {
		snapshot := &domain.BillCache{
			SessionID:    saved.SessionID,
			Type:         string(saved.Type),
			BillData:     saved.BillData,
			DaysAdmitted: saved.DaysAdmitted,
			Total:        saved.Total,
			Currency:     saved.Currency,
			UpdatedAt:    saved.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := h.cache.SetBill(ctx, facilityID, billKey(saved.SessionID, saved.Type), snapshot, billCacheTTL); err != nil {
			slog.Warn("failed to cache bill", "session_id", saved.SessionID, "error", err)
		}
	}

	if h.usage != nil {
		h.usage.RecordBillSaved(ctx, facilityID)
	}

	if h.bus != nil {
		payload, _ := json.Marshal(billEvent{
			SessionID:   saved.SessionID,
			FacilityID:  facilityID,
			TraceID:     traceID,
			PatientType: string(saved.Type),
			Items:       req.Items,
			Total:       saved.Total,
		})
		if err := h.bus.Publish(ctx, facilityID, domain.TopicBillSaved, payload); err != nil {
			slog.Error("failed to publish bill event", "session_id", saved.SessionID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, saved)
}

// GetBill handles GET /bills?sessionId=&type=. Cache is consulted
// first; misses fall through to the repository and repopulate it.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "sessionId is required",
		})
		return
	}

	billType, err := domain.ParseAdmissionType(r.URL.Query().Get("type"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if h.cache != nil {
		cached, err := h.cache.GetBill(ctx, facilityID, billKey(sessionID, billType))
		if err == nil && cached != nil {
			updatedAt, _ := time.Parse(time.RFC3339, cached.UpdatedAt)
			writeJSON(w, http.StatusOK, &domain.StoredBill{
				FacilityID:   facilityID,
				Type:         domain.AdmissionType(cached.Type),
				SessionID:    cached.SessionID,
				BillData:     cached.BillData,
				DaysAdmitted: cached.DaysAdmitted,
				Total:        cached.Total,
				Currency:     cached.Currency,
				UpdatedAt:    updatedAt,
			})
			return
		}
	}

	bill, err := h.repo.GetBillBySession(ctx, facilityID, sessionID, billType)
	if err != nil {
		writeError(w, err)
		return
	}

	if h.cache != nil {
		snapshot := &domain.BillCache{
			SessionID:    bill.SessionID,
			Type:         string(bill.Type),
			BillData:     bill.BillData,
			DaysAdmitted: bill.DaysAdmitted,
			Total:        bill.Total,
			Currency:     bill.Currency,
			UpdatedAt:    bill.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := h.cache.SetBill(ctx, facilityID, billKey(sessionID, billType), snapshot, billCacheTTL); err != nil {
			slog.Warn("failed to cache bill", "session_id", sessionID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, bill)
}

func billKey(sessionID string, billType domain.AdmissionType) string {
	return sessionID + ":" + string(billType)
}

// AuditRequest is the request body for POST /audit.
type AuditRequest struct {
	BillRef     string               `json:"billRef"`
	PatientType string               `json:"patientType,omitempty"`
	Items       []domain.MedicalItem `json:"items"`
	Total       float64              `json:"total"`
	UsageWindow int                  `json:"usageWindow,omitempty"`
}

// AuditResponse is the response for POST /audit.
type AuditResponse struct {
	*domain.AnalysisReport
	Reasons []string `json:"reasons,omitempty"`
}

// Audit handles POST /audit: a synchronous run of the full analysis
// pipeline over a submitted bill.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	traceID := GetTraceID(ctx)

	var req AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	checksStart := time.Now()
	anomalies, err := h.detector.Detect(domain.Bill{Items: req.Items, Total: req.Total})
	if err != nil {
		writeError(w, err)
		return
	}
	checksMs := time.Since(checksStart).Milliseconds()

	usageWindow := req.UsageWindow
	if usageWindow == 0 {
		usageWindow = 3600
	}

	rulesStart := time.Now()
	ruleResults, err := h.engine.EvaluateAll(ctx, &rules.EvaluateInput{
		FacilityID:  facilityID,
		BillRef:     req.BillRef,
		PatientType: req.PatientType,
		Items:       req.Items,
		Total:       req.Total,
		UsageWindow: usageWindow,
	})
	if err != nil {
		slog.Error("rule evaluation failed", "bill_ref", req.BillRef, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "rule evaluation failed",
		})
		return
	}
	rulesMs := time.Since(rulesStart).Milliseconds()

	report := h.processor.Process(ctx, &review.Input{
		FacilityID:  facilityID,
		BillRef:     req.BillRef,
		TraceID:     traceID,
		Anomalies:   anomalies,
		RuleResults: ruleResults,
		ChecksMs:    checksMs,
		RulesMs:     rulesMs,
		StartTime:   start,
	})

	if h.repo != nil {
		if err := h.repo.SaveReport(ctx, facilityID, report); err != nil {
			slog.Error("failed to save report", "bill_ref", req.BillRef, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, AuditResponse{
		AnalysisReport: report,
		Reasons:        review.Reasons(report),
	})
}

// GetReport handles GET /reports/{id}.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	reportID := chi.URLParam(r, "id")

	if reportID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "report id is required",
		})
		return
	}

	report, err := h.repo.GetReport(ctx, facilityID, reportID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
