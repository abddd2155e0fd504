package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/equityscreen/internal/contracts"
)

const (
	// LookbackDays is the momentum and volatility window in trading sessions
	LookbackDays = 21

	// TradingDaysPerYear annualizes daily volatility
	TradingDaysPerYear = 252
)

// Momentum returns last / close[LookbackDays sessions earlier] - 1.
// closes must be chronological.
func Momentum(closes []float64) (float64, error) {
	if len(closes) <= LookbackDays {
		return 0, contracts.ErrInsufficientHistory
	}

	last := closes[len(closes)-1]
	base := closes[len(closes)-1-LookbackDays]
	return last/base - 1, nil
}

// Returns converts closes to simple period-over-period returns.
// The first observation has no return and is dropped.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}

	returns := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns[i-1] = closes[i]/closes[i-1] - 1
	}
	return returns
}

// Volatility returns the annualized population standard deviation of the
// last LookbackDays returns.
func Volatility(returns []float64) (float64, error) {
	if len(returns) < LookbackDays {
		return 0, contracts.ErrInsufficientReturns
	}

	window := returns[len(returns)-LookbackDays:]
	_, std := stat.PopMeanStdDev(window, nil)
	return std * math.Sqrt(TradingDaysPerYear), nil
}

// FreeCashFlowYield is fcf / market cap when both are present and market cap is non-zero
func FreeCashFlowYield(fcf, marketCap contracts.OptionalFloat) contracts.OptionalFloat {
	f, ok := fcf.Get()
	if !ok {
		return contracts.None()
	}
	mc, ok := marketCap.Get()
	if !ok || mc == 0 {
		return contracts.None()
	}
	return contracts.Some(f / mc)
}

// validateCloses rejects series that cannot be priced
func validateCloses(closes []float64) error {
	for i, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
			return fmt.Errorf("malformed close at index %d: %v", i, c)
		}
	}
	return nil
}
