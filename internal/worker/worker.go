// Package worker provides async bill analysis for the Pro tier.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/opensource-health/heron/internal/domain"
	"github.com/opensource-health/heron/internal/review"
	"github.com/opensource-health/heron/internal/rules"
	"github.com/opensource-health/heron/internal/scoring"
)

// Worker analyzes saved bills asynchronously from the EventBus.
type Worker struct {
	bus       domain.EventBus
	repo      domain.Repository
	engine    *rules.Engine
	detector  *scoring.AnomalyDetector
	processor *review.Processor

	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// Config holds worker configuration.
type Config struct {
	// FacilityIDs is the list of facilities to process (empty = all via the global subscription)
	FacilityIDs []string

	// WorkerCount is the number of concurrent workers per facility
	WorkerCount int
}

// NewWorker creates a new async worker.
func NewWorker(bus domain.EventBus, repo domain.Repository, engine *rules.Engine, detector *scoring.AnomalyDetector, processor *review.Processor) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:       bus,
		repo:      repo,
		engine:    engine,
		detector:  detector,
		processor: processor,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins processing bill events for the given facilities.
func (w *Worker) Start(cfg Config) error {
	if len(cfg.FacilityIDs) == 0 {
		return w.startGlobalWorker()
	}

	for _, facilityID := range cfg.FacilityIDs {
		if err := w.startFacilityWorker(facilityID); err != nil {
			slog.Error("failed to start worker for facility",
				"facility_id", facilityID,
				"error", err,
			)
			continue
		}
	}

	slog.Info("workers started",
		"facility_count", len(cfg.FacilityIDs),
	)

	return nil
}

// startGlobalWorker subscribes under a sentinel facility ID, used for
// dev setups where everything publishes to "_global".
func (w *Worker) startGlobalWorker() error {
	sub, err := w.bus.Subscribe(w.ctx, "_global", domain.TopicBillSaved, w.handleMessage)
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("global worker started")
	return nil
}

// startFacilityWorker subscribes to bill events for a single facility.
func (w *Worker) startFacilityWorker(facilityID string) error {
	sub, err := w.bus.Subscribe(w.ctx, facilityID, domain.TopicBillSaved, func(ctx context.Context, msg *domain.Message) error {
		return w.processBill(ctx, facilityID, msg)
	})
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("facility worker started",
		"facility_id", facilityID,
		"topic", domain.TopicBillSaved,
	)

	return nil
}

// handleMessage handles messages from the global subscription.
func (w *Worker) handleMessage(ctx context.Context, msg *domain.Message) error {
	return w.processBill(ctx, msg.FacilityID, msg)
}

// BillSavedMessage is the payload published when a bill is saved.
type BillSavedMessage struct {
	SessionID   string               `json:"sessionId"`
	FacilityID  string               `json:"facilityId"`
	TraceID     string               `json:"traceId"`
	PatientType string               `json:"patientType"`
	Items       []domain.MedicalItem `json:"items"`
	Total       float64              `json:"total"`
	UsageWindow int                  `json:"usageWindow,omitempty"`
}

// processBill runs a saved bill through the full analysis pipeline:
// anomaly checks, audit rules, report aggregation and persistence.
func (w *Worker) processBill(ctx context.Context, facilityID string, msg *domain.Message) error {
	w.wg.Add(1)
	defer w.wg.Done()

	start := time.Now()

	var billMsg BillSavedMessage
	if err := json.Unmarshal(msg.Payload, &billMsg); err != nil {
		slog.Error("failed to parse bill message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	if billMsg.FacilityID != "" {
		facilityID = billMsg.FacilityID
	}

	traceID := billMsg.TraceID
	if traceID == "" {
		traceID = msg.ID
	}

	slog.Debug("analyzing bill",
		"session_id", billMsg.SessionID,
		"facility_id", facilityID,
		"trace_id", traceID,
	)

	bill := domain.Bill{
		Items: billMsg.Items,
		Total: billMsg.Total,
	}

	checksStart := time.Now()
	anomalies, err := w.detector.Detect(bill)
	if err != nil {
		slog.Error("anomaly detection failed",
			"session_id", billMsg.SessionID,
			"error", err,
		)
		return err
	}
	checksMs := time.Since(checksStart).Milliseconds()

	evalInput := &rules.EvaluateInput{
		FacilityID:  facilityID,
		BillRef:     billMsg.SessionID,
		PatientType: billMsg.PatientType,
		Items:       billMsg.Items,
		Total:       billMsg.Total,
		UsageWindow: billMsg.UsageWindow,
	}

	if evalInput.UsageWindow == 0 {
		evalInput.UsageWindow = 3600 // Default 1 hour
	}

	rulesStart := time.Now()
	ruleResults, err := w.engine.EvaluateAll(ctx, evalInput)
	if err != nil {
		slog.Error("rule evaluation failed",
			"session_id", billMsg.SessionID,
			"error", err,
		)
		return err
	}
	rulesMs := time.Since(rulesStart).Milliseconds()

	report := w.processor.Process(ctx, &review.Input{
		FacilityID:  facilityID,
		BillRef:     billMsg.SessionID,
		TraceID:     traceID,
		Anomalies:   anomalies,
		RuleResults: ruleResults,
		ChecksMs:    checksMs,
		RulesMs:     rulesMs,
		StartTime:   start,
	})

	if w.repo != nil {
		if err := w.repo.SaveReport(ctx, facilityID, report); err != nil {
			slog.Error("failed to save report",
				"session_id", billMsg.SessionID,
				"error", err,
			)
		}
	}

	resultPayload, _ := json.Marshal(report)
	if err := w.bus.Publish(ctx, facilityID, domain.TopicAnalysisCompleted, resultPayload); err != nil {
		slog.Error("failed to publish analysis result",
			"session_id", billMsg.SessionID,
			"error", err,
		)
	}

	if review.ShouldAlert(report) {
		if err := w.bus.Publish(ctx, facilityID, domain.TopicAnomalyAlert, resultPayload); err != nil {
			slog.Error("failed to publish anomaly alert",
				"session_id", billMsg.SessionID,
				"error", err,
			)
		}
	}

	slog.Info("bill analyzed",
		"session_id", billMsg.SessionID,
		"facility_id", facilityID,
		"status", report.Status,
		"score", report.Score,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Stop gracefully stops all workers.
func (w *Worker) Stop() error {
	w.cancel()

	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()

	slog.Info("workers stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
