package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/pkg/logger"
)

func TestRanker_Rank(t *testing.T) {
	analyses := []*contracts.StockAnalysis{
		{
			Ticker:            "CHEAP",
			PE:                contracts.Some(10),
			PB:                contracts.Some(1),
			FreeCashFlowYield: contracts.Some(0.08),
			Momentum21D:       contracts.Some(0.01),
			Volatility21D:     contracts.Some(0.30),
		},
		{
			Ticker:            "PRICEY",
			PE:                contracts.Some(40),
			PB:                contracts.Some(9),
			FreeCashFlowYield: contracts.Some(0.01),
			Momentum21D:       contracts.Some(0.12),
			Volatility21D:     contracts.Some(0.10),
		},
	}

	ranked := NewRanker(DefaultWeightConfig(), logger.NewNop()).Rank(analyses)
	require.Len(t, ranked, 2)

	// CHEAP: value 1, momentum 0, risk 0 → 0.5
	// PRICEY: value 0, momentum 1, risk 1 → 0.5
	assert.Equal(t, "CHEAP", ranked[0].Ticker, "tie keeps input order")
	assert.Equal(t, 1, ranked[0].Rank)
	assert.InDelta(t, 1.0, ranked[0].ValueScore, 1e-12)
	assert.InDelta(t, 0.5, ranked[0].CompositeScore, 1e-12)
	assert.Equal(t, "PRICEY", ranked[1].Ticker)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.InDelta(t, 1.0, ranked[1].MomentumScore, 1e-12)
	assert.InDelta(t, 1.0, ranked[1].RiskScore, 1e-12)
	assert.Same(t, analyses[1], ranked[1].Analysis)
}

func TestRanker_WeightsAreLiteral(t *testing.T) {
	analyses := []*contracts.StockAnalysis{
		{Ticker: "A", Momentum21D: contracts.Some(0.2), Volatility21D: contracts.Some(0.1), PE: contracts.Some(10)},
		{Ticker: "B", Momentum21D: contracts.Some(0.1), Volatility21D: contracts.Some(0.2), PE: contracts.Some(20)},
	}

	// weights need not sum to 1
	ranked := NewRanker(WeightConfig{Value: 2, Momentum: 2, Risk: 2}, logger.NewNop()).Rank(analyses)
	require.Len(t, ranked, 2)
	assert.Equal(t, "A", ranked[0].Ticker)
	assert.InDelta(t, 6.0, ranked[0].CompositeScore, 1e-12)
	assert.InDelta(t, 0.0, ranked[1].CompositeScore, 1e-12)
}

func TestRanker_ValueScorePartialFields(t *testing.T) {
	analyses := []*contracts.StockAnalysis{
		{Ticker: "NOVAL", Momentum21D: contracts.Some(0.1), Volatility21D: contracts.Some(0.2)},
		{Ticker: "PEONLY", PE: contracts.Some(15), Momentum21D: contracts.Some(0.1), Volatility21D: contracts.Some(0.2)},
		{Ticker: "FULL", PE: contracts.Some(30), PB: contracts.Some(3), FreeCashFlowYield: contracts.Some(0.05), Momentum21D: contracts.Some(0.1), Volatility21D: contracts.Some(0.2)},
	}

	ranked := NewRanker(WeightConfig{Value: 1}, logger.NewNop()).Rank(analyses)
	byTicker := make(map[string]contracts.RankedStock)
	for _, r := range ranked {
		byTicker[r.Ticker] = r
	}

	assert.Equal(t, 0.0, byTicker["NOVAL"].ValueScore)
	// PEONLY has the lower P/E → normalized 1, averaged over one field
	assert.InDelta(t, 1.0, byTicker["PEONLY"].ValueScore, 1e-12)
	// FULL: P/E 0, P/B degenerate 1, FCF degenerate 1 → 2/3
	assert.InDelta(t, 2.0/3.0, byTicker["FULL"].ValueScore, 1e-12)
}

func TestRanker_Empty(t *testing.T) {
	ranked := NewRanker(DefaultWeightConfig(), logger.NewNop()).Rank(nil)
	assert.Empty(t, ranked)
}

func TestWeightConfig(t *testing.T) {
	w := DefaultWeightConfig()
	assert.InDelta(t, 1.0, w.Sum(), 1e-12)
	assert.True(t, w.ValidateWeights())

	skewed := WeightConfig{Value: 1, Momentum: 1}
	assert.False(t, skewed.ValidateWeights())
}
