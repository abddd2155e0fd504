package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalFloat(t *testing.T) {
	v, ok := Some(0).Get()
	assert.True(t, ok, "zero is a present value")
	assert.Equal(t, 0.0, v)

	_, ok = None().Get()
	assert.False(t, ok)

	assert.True(t, Some(1.5).Usable())
	assert.False(t, Some(math.NaN()).Usable())
	assert.False(t, Some(math.Inf(1)).Usable())
	assert.False(t, None().Usable())

	assert.Nil(t, None().Ptr())
	require.NotNil(t, Some(2).Ptr())
	assert.Equal(t, 2.0, *Some(2).Ptr())

	f := 3.25
	assert.Equal(t, Some(3.25), FromPtr(&f))
	assert.Equal(t, None(), FromPtr(nil))
}

func TestOptionalFloat_JSON(t *testing.T) {
	snap := RawSnapshot{
		Ticker:    "AAPL",
		Closes:    []float64{1, 2},
		PE:        Some(28.5),
		PB:        None(),
		MarketCap: Some(math.NaN()),
	}

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"ticker":"AAPL","closes":[1,2],"pe":28.5,"pb":null,"market_cap":null,"free_cash_flow":null}`,
		string(data))

	var decoded RawSnapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Some(28.5), decoded.PE)
	assert.False(t, decoded.PB.IsSet())
	assert.False(t, decoded.MarketCap.IsSet())

	var bad OptionalFloat
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &bad))
}

func TestIsSoftFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no data", ErrNoData, true},
		{"insufficient history", ErrInsufficientHistory, true},
		{"insufficient returns", ErrInsufficientReturns, true},
		{"wrapped soft", fmt.Errorf("yahoo: %w", ErrNoData), true},
		{"io error", errors.New("connection reset"), false},
		{"analysis error", &AnalysisError{Ticker: "X", Err: errors.New("boom")}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSoftFailure(tt.err))
		})
	}
}

func TestAnalysisError(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&AnalysisError{Ticker: "MSFT", Err: cause})

	assert.Equal(t, "analysis failed for ticker MSFT: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	var ae *AnalysisError
	require.ErrorAs(t, fmt.Errorf("run: %w", err), &ae)
	assert.Equal(t, "MSFT", ae.Ticker)
}

func TestNoAnalyzableError(t *testing.T) {
	err := &NoAnalyzableError{Failures: []TickerFailure{
		{Ticker: "ZZZ", Reason: ErrNoData.Error()},
		{Ticker: "AAA", Reason: ErrInsufficientHistory.Error()},
	}}

	assert.Equal(t,
		"unable to analyze any tickers. Reasons: ZZZ (no price history available), AAA (not enough price history to compute momentum)",
		err.Error())

	empty := &NoAnalyzableError{}
	assert.Equal(t, "unable to analyze any tickers: no tickers supplied", empty.Error())
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input   string
		want    Period
		wantErr bool
	}{
		{"6mo", "6mo", false},
		{" 1Y ", "1y", false},
		{"ytd", "ytd", false},
		{"max", "max", false},
		{"", DefaultPeriod, false},
		{"7mo", "", true},
		{"forever", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePeriod(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriod_Start(t *testing.T) {
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, time.September, 15, 0, 0, 0, 0, time.UTC), Period("6mo").Start(now))
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), Period("1y").Start(now))
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), Period("ytd").Start(now))
	assert.True(t, Period("max").Start(now).IsZero())
}

func TestSummary_Tickers(t *testing.T) {
	s := Summary{Ranked: []RankedStock{{Ticker: "B", Rank: 1}, {Ticker: "A", Rank: 2}}}
	assert.Equal(t, []string{"B", "A"}, s.Tickers())
	assert.True(t, s.Ranked[1].IsTopRanked(2))
	assert.False(t, s.Ranked[1].IsTopRanked(1))
}
