package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/pkg/logger"
)

// Extractor computes per-ticker metrics from raw market data
// ⭐ SSOT: 종목별 지표 계산은 여기서만
type Extractor struct {
	provider contracts.MarketDataProvider
	logger   *logger.Logger
	now      func() time.Time
}

// NewExtractor creates a new extractor
func NewExtractor(provider contracts.MarketDataProvider, log *logger.Logger) *Extractor {
	return &Extractor{
		provider: provider,
		logger:   log,
		now:      time.Now,
	}
}

// Analyze fetches a snapshot and derives its metrics.
// Soft failures are returned as the contracts sentinels; anything else
// is wrapped in *contracts.AnalysisError.
func (e *Extractor) Analyze(ctx context.Context, ticker string, period contracts.Period) (*contracts.StockAnalysis, error) {
	snapshot, err := e.provider.Snapshot(ctx, ticker, period)
	if err != nil {
		if errors.Is(err, contracts.ErrNoData) {
			return nil, contracts.ErrNoData
		}
		return nil, &contracts.AnalysisError{Ticker: ticker, Err: err}
	}

	if !snapshot.HasPrices() {
		return nil, contracts.ErrNoData
	}

	result, err := e.compute(ticker, snapshot)
	if err != nil {
		if contracts.IsSoftFailure(err) {
			return nil, err
		}
		return nil, &contracts.AnalysisError{Ticker: ticker, Err: err}
	}

	e.logger.WithTicker(ticker).WithFields(map[string]interface{}{
		"closes":     len(snapshot.Closes),
		"momentum":   result.Momentum21D.Ptr(),
		"volatility": result.Volatility21D.Ptr(),
		"pe":         result.PE.Ptr(),
		"pb":         result.PB.Ptr(),
		"fcf_yield":  result.FreeCashFlowYield.Ptr(),
	}).Debug("Computed ticker metrics")

	return result, nil
}

func (e *Extractor) compute(ticker string, snapshot *contracts.RawSnapshot) (*contracts.StockAnalysis, error) {
	if err := validateCloses(snapshot.Closes); err != nil {
		return nil, err
	}

	momentum, err := Momentum(snapshot.Closes)
	if err != nil {
		return nil, err
	}

	volatility, err := Volatility(Returns(snapshot.Closes))
	if err != nil {
		return nil, err
	}

	analysis := &contracts.StockAnalysis{
		Ticker:            ticker,
		Momentum21D:       contracts.Some(momentum),
		Volatility21D:     contracts.Some(volatility),
		PE:                snapshot.PE,
		PB:                snapshot.PB,
		FreeCashFlowYield: FreeCashFlowYield(snapshot.FreeCashFlow, snapshot.MarketCap),
		MarketCap:         snapshot.MarketCap,
		LastUpdated:       e.now().UTC(),
	}

	return analysis, nil
}
