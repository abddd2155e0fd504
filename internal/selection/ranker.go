package selection

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/pkg/logger"
)

// Ranker turns per-ticker analyses into weighted, ranked scores
// ⭐ SSOT: 정규화 · 가중합 · 랭킹 로직은 여기서만
type Ranker struct {
	weights WeightConfig
	logger  *logger.Logger
}

// WeightConfig defines sub-score weights for the composite score.
// Weights are applied as given; they need not sum to 1.
type WeightConfig struct {
	Value    float64 // 가치 (기본: 0.5)
	Momentum float64 // 모멘텀 (기본: 0.3)
	Risk     float64 // 저변동성 (기본: 0.2)
}

// NewRanker creates a new ranker
func NewRanker(weights WeightConfig, logger *logger.Logger) *Ranker {
	return &Ranker{
		weights: weights,
		logger:  logger,
	}
}

// Rank scores the analyses and sorts them by composite score, descending.
// Equal composites keep their input order.
func (r *Ranker) Rank(analyses []*contracts.StockAnalysis) []contracts.RankedStock {
	n := len(analyses)
	if n == 0 {
		return []contracts.RankedStock{}
	}

	pe := make([]contracts.OptionalFloat, n)
	pb := make([]contracts.OptionalFloat, n)
	fcf := make([]contracts.OptionalFloat, n)
	momentum := make([]contracts.OptionalFloat, n)
	volatility := make([]contracts.OptionalFloat, n)
	for i, a := range analyses {
		pe[i] = a.PE
		pb[i] = a.PB
		fcf[i] = a.FreeCashFlowYield
		momentum[i] = a.Momentum21D
		volatility[i] = a.Volatility21D
	}

	peScores := Normalize(pe, false)
	pbScores := Normalize(pb, false)
	fcfScores := Normalize(fcf, true)
	momentumScores := Normalize(momentum, true)
	riskScores := Normalize(volatility, false)

	ranked := make([]contracts.RankedStock, n)
	for i, a := range analyses {
		value := valueScore(a.ValuationFields(), []float64{peScores[i], pbScores[i], fcfScores[i]})

		ranked[i] = contracts.RankedStock{
			Ticker:         a.Ticker,
			CompositeScore: r.calculateTotalScore(value, momentumScores[i], riskScores[i]),
			ValueScore:     value,
			MomentumScore:  momentumScores[i],
			RiskScore:      riskScores[i],
			Analysis:       a,
		}
	}

	// Sort by composite score (descending), input order on ties
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CompositeScore > ranked[j].CompositeScore
	})

	// Assign ranks
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	r.logger.WithFields(map[string]interface{}{
		"total_stocks": len(ranked),
		"top_score":    ranked[0].CompositeScore,
		"top_ticker":   ranked[0].Ticker,
	}).Info("Ranking completed")

	return ranked
}

// valueScore averages the normalized scores of the valuation fields the ticker has.
// A ticker with none of them scores 0.
func valueScore(raw []contracts.OptionalFloat, normalized []float64) float64 {
	var sum float64
	var count int
	for i, v := range raw {
		if !v.IsSet() {
			continue
		}
		sum += normalized[i]
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// calculateTotalScore calculates weighted total score
func (r *Ranker) calculateTotalScore(value, momentum, risk float64) float64 {
	return value*r.weights.Value +
		momentum*r.weights.Momentum +
		risk*r.weights.Risk
}

// Sum returns the total of all weights
func (w *WeightConfig) Sum() float64 {
	return w.Value + w.Momentum + w.Risk
}

// CheckFinite rejects NaN and infinite weights; the sum is left unchecked
func (w *WeightConfig) CheckFinite() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"value", w.Value},
		{"momentum", w.Momentum},
		{"risk", w.Risk},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s weight must be finite, got %v", f.name, f.v)
		}
	}
	return nil
}

// ValidateWeights checks if weights sum to 1.0
func (w *WeightConfig) ValidateWeights() bool {
	sum := w.Sum()
	// Allow small floating point error
	return sum >= 0.99 && sum <= 1.01
}

// DefaultWeightConfig returns default weight configuration
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		Value:    0.5, // 50% - 가치
		Momentum: 0.3, // 30% - 모멘텀
		Risk:     0.2, // 20% - 저변동성
	}
	// Total: 100%
}
