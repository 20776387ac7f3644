// Package rules provides the CEL-Go based bill audit rule engine.
package rules

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/opensource-health/heron/internal/domain"
)

// Engine compiles and evaluates facility-defined audit rules.
type Engine struct {
	mu            sync.RWMutex
	env           *cel.Env
	compiledRules map[string]*CompiledRule
	usageGetter   UsageGetter
	maxWorkers    int
}

// CompiledRule pairs a rule configuration with its compiled CEL program.
type CompiledRule struct {
	Config  *domain.AuditRuleConfig
	Program cel.Program
}

// UsageGetter returns the number of bills a facility saved inside a
// time window. It feeds the recent_bill_count variable.
type UsageGetter func(ctx context.Context, facilityID string, windowSecs int) (int64, error)

// NewEngine creates an audit rule engine.
func NewEngine(usageGetter UsageGetter, maxWorkers int) (*Engine, error) {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	// CEL environment with bill variables
	env, err := cel.NewEnv(
		cel.Variable("bill", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("total", cel.DoubleType),
		cel.Variable("item_count", cel.IntType),
		cel.Variable("avg_price", cel.DoubleType),
		cel.Variable("max_price", cel.DoubleType),
		cel.Variable("min_price", cel.DoubleType),
		cel.Variable("patient_type", cel.StringType),
		cel.Variable("category_counts", cel.MapType(cel.StringType, cel.IntType)),
		cel.Variable("recent_bill_count", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:           env,
		compiledRules: make(map[string]*CompiledRule),
		usageGetter:   usageGetter,
		maxWorkers:    maxWorkers,
	}, nil
}

// ValidateRule compiles a rule without mutating the loaded set.
func (e *Engine) ValidateRule(cfg *domain.AuditRuleConfig) error {
	if cfg == nil {
		return fmt.Errorf("rule config is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compileRule(cfg)
	return err
}

// LoadRule compiles the expression and registers the rule, replacing
// any rule with the same ID.
func (e *Engine) LoadRule(cfg *domain.AuditRuleConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compileRule(cfg)
	if err != nil {
		return err
	}

	e.compiledRules[cfg.ID] = compiled

	return nil
}

// LoadRules compiles and loads the enabled rules.
func (e *Engine) LoadRules(configs []*domain.AuditRuleConfig) error {
	for _, cfg := range configs {
		if cfg.Enabled {
			if err := e.LoadRule(cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

// EvaluateInput holds the bill data for rule evaluation.
type EvaluateInput struct {
	FacilityID  string
	BillRef     string
	PatientType string
	Items       []domain.MedicalItem
	Total       float64
	UsageWindow int // seconds
}

// EvaluateAll runs every loaded rule against the bill, bounded by the
// configured worker count.
func (e *Engine) EvaluateAll(ctx context.Context, input *EvaluateInput) ([]domain.AuditRuleResult, error) {
	e.mu.RLock()
	rules := make([]*CompiledRule, 0, len(e.compiledRules))
	for _, rule := range e.compiledRules {
		rules = append(rules, rule)
	}
	e.mu.RUnlock()

	if len(rules) == 0 {
		return nil, nil
	}

	var recentBills int64
	if e.usageGetter != nil && input.UsageWindow > 0 {
		count, err := e.usageGetter(ctx, input.FacilityID, input.UsageWindow)
		if err == nil {
			recentBills = count
		}
	}

	activation := buildActivation(input, recentBills)

	// Bounded-parallel evaluation
	results := make([]domain.AuditRuleResult, len(rules))
	var wg sync.WaitGroup

	sem := make(chan struct{}, e.maxWorkers)

	for i, rule := range rules {
		wg.Add(1)
		go func(idx int, r *CompiledRule) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = e.evaluateRule(r, activation, input)
		}(i, rule)
	}

	wg.Wait()

	return results, nil
}

// buildActivation derives the CEL variables from a bill.
func buildActivation(input *EvaluateInput, recentBills int64) map[string]any {
	var sum, maxPrice, minPrice float64
	categoryCounts := make(map[string]int64, 8)
	for i, item := range input.Items {
		sum += item.Price
		if i == 0 || item.Price > maxPrice {
			maxPrice = item.Price
		}
		if i == 0 || item.Price < minPrice {
			minPrice = item.Price
		}
		categoryCounts[item.Category]++
	}

	var avgPrice float64
	if len(input.Items) > 0 {
		avgPrice = sum / float64(len(input.Items))
	}

	return map[string]any{
		"bill": map[string]any{
			"ref":          input.BillRef,
			"total":        input.Total,
			"item_count":   int64(len(input.Items)),
			"patient_type": input.PatientType,
		},
		"total":             input.Total,
		"item_count":        int64(len(input.Items)),
		"avg_price":         avgPrice,
		"max_price":         maxPrice,
		"min_price":         minPrice,
		"patient_type":      input.PatientType,
		"category_counts":   categoryCounts,
		"recent_bill_count": recentBills,
	}
}

// evaluateRule runs one rule and maps its score through the bands.
func (e *Engine) evaluateRule(rule *CompiledRule, activation map[string]any, input *EvaluateInput) domain.AuditRuleResult {
	start := time.Now()

	result := domain.AuditRuleResult{
		RuleID:     rule.Config.ID,
		FacilityID: input.FacilityID,
		BillRef:    input.BillRef,
		Weight:     rule.Config.Weight,
	}

	out, _, err := rule.Program.Eval(activation)
	if err != nil {
		result.Outcome = domain.RuleOutcomeError
		result.Reason = fmt.Sprintf("evaluation error: %v", err)
		result.ProcessMs = time.Since(start).Milliseconds()
		return result
	}

	score := toScore(out)
	result.Score = score

	result.Outcome, result.Reason = matchBand(score, rule.Config.Bands)
	result.ProcessMs = time.Since(start).Milliseconds()

	return result
}

// toScore coerces the CEL result (bool, int, or double) to a score.
func toScore(val ref.Val) float64 {
	switch v := val.(type) {
	case types.Bool:
		if v {
			return 1.0
		}
		return 0.0
	case types.Double:
		return float64(v)
	case types.Int:
		return float64(v)
	default:
		return 0.0
	}
}

// matchBand finds the matching band for a score. Bands are evaluated
// in order: lower inclusive, upper exclusive, nil upper means no
// ceiling.
func matchBand(score float64, bands []domain.RuleBand) (string, string) {
	for _, band := range bands {
		lower := 0.0
		if band.LowerLimit != nil {
			lower = *band.LowerLimit
		}

		if score < lower {
			continue
		}
		if band.UpperLimit == nil || score < *band.UpperLimit {
			return band.Outcome, band.Reason
		}
	}

	return domain.RuleOutcomePass, "no matching band"
}

// RulesCount reports how many rules are loaded.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiledRules)
}

// ReloadRules swaps the loaded set for the given configs. Used for
// hot reload from the database.
func (e *Engine) ReloadRules(configs []*domain.AuditRuleConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	newRules := make(map[string]*CompiledRule)

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		compiled, err := e.compileRule(cfg)
		if err != nil {
			return err
		}
		newRules[cfg.ID] = compiled
	}

	e.compiledRules = newRules

	return nil
}

// GetLoadedRules lists the loaded rules' configurations.
func (e *Engine) GetLoadedRules() []*domain.AuditRuleConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules := make([]*domain.AuditRuleConfig, 0, len(e.compiledRules))
	for _, compiled := range e.compiledRules {
		rules = append(rules, compiled.Config)
	}
	return rules
}

// Close clears the loaded rules.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiledRules = make(map[string]*CompiledRule)
	return nil
}

func (e *Engine) compileRule(cfg *domain.AuditRuleConfig) (*CompiledRule, error) {
	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", cfg.ID, issues.Err())
	}

	outputType := ast.OutputType()
	if outputType != cel.BoolType && outputType != cel.DoubleType && outputType != cel.IntType {
		return nil, fmt.Errorf("rule %s: expression must return bool, int, or double, got %s", cfg.ID, outputType)
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for rule %s: %w", cfg.ID, err)
	}

	return &CompiledRule{
		Config:  cfg,
		Program: program,
	}, nil
}
