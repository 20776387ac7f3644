package domain

// ModelInfo describes one of the fixed, named heuristic models the
// API advertises. Purely descriptive metadata; only cost_predictor and
// fraud_detector correspond to live scoring paths.
type ModelInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Accuracy    float64  `json:"accuracy"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// ModelRegistry is an immutable, load-time-constructed catalog of
// model metadata. Safe for concurrent reads; never mutated after
// construction.
type ModelRegistry struct {
	models []ModelInfo
	byID   map[string]int
}

// NewModelRegistry constructs the registry with the four fixed models.
func NewModelRegistry() *ModelRegistry {
	models := []ModelInfo{
		{
			ID:          "cost_predictor",
			Name:        "Medical Cost Prediction Model",
			Type:        "cost_prediction",
			Accuracy:    0.87,
			Description: "Predicts total medical costs based on selected items and patient type",
			Features: []string{
				"Category complexity analysis",
				"Patient type risk assessment",
				"Historical cost variance calculation",
				"Confidence scoring",
			},
		},
		{
			ID:          "demand_forecaster",
			Name:        "Medical Service Demand Forecaster",
			Type:        "demand_forecasting",
			Accuracy:    0.82,
			Description: "Forecasts demand for medical services and categories",
			Features: []string{
				"Seasonal trend analysis",
				"Category demand prediction",
				"Resource allocation optimization",
				"Inventory planning support",
			},
		},
		{
			ID:          "billing_optimizer",
			Name:        "Billing Process Optimizer",
			Type:        "billing_optimization",
			Accuracy:    0.91,
			Description: "Optimizes billing processes and identifies cost-saving opportunities",
			Features: []string{
				"Cost optimization recommendations",
				"Process efficiency analysis",
				"Revenue enhancement suggestions",
				"Billing workflow optimization",
			},
		},
		{
			ID:          "fraud_detector",
			Name:        "Medical Billing Fraud Detector",
			Type:        "fraud_detection",
			Accuracy:    0.94,
			Description: "Detects potential billing anomalies and fraud patterns",
			Features: []string{
				"Pricing anomaly detection",
				"Duplicate billing identification",
				"Pattern analysis",
				"Risk scoring",
			},
		},
	}

	byID := make(map[string]int, len(models))
	for i, m := range models {
		byID[m.ID] = i
	}

	return &ModelRegistry{models: models, byID: byID}
}

// List returns all models in registration order.
func (r *ModelRegistry) List() []ModelInfo {
	out := make([]ModelInfo, len(r.models))
	copy(out, r.models)
	return out
}

// Get returns a model by ID.
func (r *ModelRegistry) Get(id string) (ModelInfo, bool) {
	i, ok := r.byID[id]
	if !ok {
		return ModelInfo{}, false
	}
	return r.models[i], true
}

// AverageAccuracy returns the mean accuracy across all models.
func (r *ModelRegistry) AverageAccuracy() float64 {
	if len(r.models) == 0 {
		return 0
	}
	var sum float64
	for _, m := range r.models {
		sum += m.Accuracy
	}
	return sum / float64(len(r.models))
}
