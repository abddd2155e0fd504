package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// Soft failures: the ticker is skipped and the batch continues.
var (
	ErrNoData              = errors.New("no price history available")
	ErrInsufficientHistory = errors.New("not enough price history to compute momentum")
	ErrInsufficientReturns = errors.New("not enough return history to compute volatility")
)

// IsSoftFailure reports whether err only disqualifies a single ticker
func IsSoftFailure(err error) bool {
	return errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrInsufficientHistory) ||
		errors.Is(err, ErrInsufficientReturns)
}

// AnalysisError is a fatal failure while analyzing one ticker
type AnalysisError struct {
	Ticker string
	Err    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed for ticker %s: %v", e.Ticker, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// TickerFailure is one entry of a NoAnalyzableError
type TickerFailure struct {
	Ticker string
	Reason string
}

// NoAnalyzableError is returned when every ticker of a batch failed softly
type NoAnalyzableError struct {
	Failures []TickerFailure // input order
}

func (e *NoAnalyzableError) Error() string {
	if len(e.Failures) == 0 {
		return "unable to analyze any tickers: no tickers supplied"
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s (%s)", f.Ticker, f.Reason)
	}
	return "unable to analyze any tickers. Reasons: " + strings.Join(parts, ", ")
}
