package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opensource-health/heron/internal/analytics"
	"github.com/opensource-health/heron/internal/domain"
	"github.com/opensource-health/heron/internal/format"
	"github.com/opensource-health/heron/internal/review"
	"github.com/opensource-health/heron/internal/rules"
	"github.com/opensource-health/heron/internal/scoring"
	"github.com/opensource-health/heron/internal/usage"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	repo       domain.Repository
	cache      domain.Cache
	bus        domain.EventBus
	engine     *rules.Engine
	processor  *review.Processor
	detector   *scoring.AnomalyDetector
	predictor  *scoring.CostPredictor
	profiler   *scoring.RiskProfiler
	aggregator *analytics.Aggregator
	models     *domain.ModelRegistry
	usage      *usage.Service
	version    string
}

// Deps bundles the handler's dependencies.
type Deps struct {
	Repo       domain.Repository
	Cache      domain.Cache
	Bus        domain.EventBus
	Engine     *rules.Engine
	Processor  *review.Processor
	Detector   *scoring.AnomalyDetector
	Predictor  *scoring.CostPredictor
	Profiler   *scoring.RiskProfiler
	Aggregator *analytics.Aggregator
	Models     *domain.ModelRegistry
	Usage      *usage.Service
	Version    string
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		repo:       deps.Repo,
		cache:      deps.Cache,
		bus:        deps.Bus,
		engine:     deps.Engine,
		processor:  deps.Processor,
		detector:   deps.Detector,
		predictor:  deps.Predictor,
		profiler:   deps.Profiler,
		aggregator: deps.Aggregator,
		models:     deps.Models,
		usage:      deps.Usage,
		version:    deps.Version,
	}
}

// PredictCostRequest is the request body for POST /analysis/predict-cost.
type PredictCostRequest struct {
	Items       []domain.MedicalItem `json:"items"`
	PatientType string               `json:"patientType"`
}

// PredictCostResponse pairs the prediction with display strings.
type PredictCostResponse struct {
	*domain.CostPrediction
	Display format.PredictionDisplay `json:"display"`
}

// PredictCost handles POST /analysis/predict-cost.
func (h *Handler) PredictCost(w http.ResponseWriter, r *http.Request) {
	var req PredictCostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	patientType, err := domain.ParseAdmissionType(req.PatientType)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	prediction, err := h.predictor.Predict(req.Items, patientType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PredictCostResponse{
		CostPrediction: prediction,
		Display:        format.Prediction(prediction),
	})
}

// AssessRiskRequest is the request body for POST /analysis/assess-risk.
type AssessRiskRequest struct {
	Age            *int                 `json:"age,omitempty"`
	AdmissionType  string               `json:"admissionType"`
	CurrentItems   []domain.MedicalItem `json:"currentItems"`
	MedicalHistory []string             `json:"medicalHistory,omitempty"`
}

// AssessRiskResponse pairs the risk profile with display strings.
type AssessRiskResponse struct {
	*domain.RiskProfile
	Display format.RiskProfileDisplay `json:"display"`
}

// AssessRisk handles POST /analysis/assess-risk.
func (h *Handler) AssessRisk(w http.ResponseWriter, r *http.Request) {
	var req AssessRiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	admissionType, err := domain.ParseAdmissionType(req.AdmissionType)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	profile, err := h.profiler.AssessRisk(domain.PatientContext{
		Age:            req.Age,
		AdmissionType:  admissionType,
		CurrentItems:   req.CurrentItems,
		MedicalHistory: req.MedicalHistory,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AssessRiskResponse{
		RiskProfile: profile,
		Display:     format.RiskProfile(profile),
	})
}

// BillingAnalyticsRequest is the request body for POST /analysis/billing-analytics.
// BillHistory stays raw so a missing or malformed value degrades to an
// empty history instead of rejecting the request.
type BillingAnalyticsRequest struct {
	BillHistory json.RawMessage `json:"billHistory"`
}

// BillingAnalyticsResponse carries aggregated analytics plus insights.
type BillingAnalyticsResponse struct {
	*domain.BillingAnalytics
	Insights []string `json:"insights"`
}

// BillingAnalytics handles POST /analysis/billing-analytics.
// Absent, empty, or malformed history is not an error: the response
// degrades to a zero-count summary with an explanatory insight.
func (h *Handler) BillingAnalytics(w http.ResponseWriter, r *http.Request) {
	var req BillingAnalyticsRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	var history []domain.Bill
	if len(req.BillHistory) > 0 {
		_ = json.Unmarshal(req.BillHistory, &history)
	}

	result := h.aggregator.Aggregate(history)

	writeJSON(w, http.StatusOK, BillingAnalyticsResponse{
		BillingAnalytics: result,
		Insights:         analytics.Insights(result),
	})
}

// DetectAnomaliesRequest is the request body for POST /analysis/detect-anomalies.
type DetectAnomaliesRequest struct {
	Items []domain.MedicalItem `json:"items"`
	Total float64              `json:"total"`
}

// DetectAnomalies handles POST /analysis/detect-anomalies.
func (h *Handler) DetectAnomalies(w http.ResponseWriter, r *http.Request) {
	var req DetectAnomaliesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	report, err := h.detector.Detect(domain.Bill{Items: req.Items, Total: req.Total})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ListModels handles GET /analysis/models.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	models := h.models.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"models":          models,
		"count":           len(models),
		"averageAccuracy": h.models.AverageAccuracy(),
	})
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
