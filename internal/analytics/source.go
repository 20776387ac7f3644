package analytics

import (
	"math"
	"math/rand"
	"sync"
)

// TrendSource supplies per-category trend and demand estimates. The
// aggregator treats it as an oracle so tests can inject fixed values.
type TrendSource interface {
	// EstimateTrend returns the cost change percent for a category.
	EstimateTrend(category string) float64
	// ForecastDemand returns predicted usage and forecast confidence
	// for a category.
	ForecastDemand(category string) (usage int, confidence float64)
}

// RandomTrendSource draws uniform estimates: change percent in
// [-10, 10), usage in [50, 150], confidence in [0.70, 1.00]. This is a
// placeholder until real trend computation lands; the draws match the
// historical behavior of the service.
type RandomTrendSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomTrendSource creates a source seeded for reproducible draws.
func NewRandomTrendSource(seed int64) *RandomTrendSource {
	return &RandomTrendSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomTrendSource) EstimateTrend(category string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (s.rng.Float64() - 0.5) * 20
}

func (s *RandomTrendSource) ForecastDemand(category string) (int, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	usage := int(math.Round(s.rng.Float64()*100 + 50))
	confidence := math.Round((s.rng.Float64()*0.3+0.7)*100) / 100
	return usage, confidence
}
