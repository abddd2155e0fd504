package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/internal/selection"
	"github.com/wonny/equityscreen/pkg/logger"
)

type stubEvaluator struct {
	summary *contracts.Summary
	err     error
	got     selection.Request
}

func (s *stubEvaluator) Evaluate(ctx context.Context, req selection.Request) (*contracts.Summary, error) {
	s.got = req
	return s.summary, s.err
}

type stubLatest struct {
	summary *contracts.Summary
}

func (s stubLatest) Latest() *contracts.Summary { return s.summary }

func sampleSummary() *contracts.Summary {
	return &contracts.Summary{
		RunID:  uuid.New(),
		Period: contracts.DefaultPeriod,
		Ranked: []contracts.RankedStock{
			{
				Ticker:         "AAPL",
				Rank:           1,
				CompositeScore: 0.8,
				ValueScore:     0.7,
				MomentumScore:  1,
				RiskScore:      0.6,
				Analysis: &contracts.StockAnalysis{
					Ticker:      "AAPL",
					Momentum21D: contracts.Some(0.1),
					PE:          contracts.Some(25),
				},
			},
		},
		Failures:  contracts.FailureMap{"ZZZZ": "no data"},
		StartedAt: time.Now(),
	}
}

func defaultRequest() selection.Request {
	top := 20
	return selection.Request{
		Tickers: []string{"AAPL", "MSFT"},
		Period:  contracts.DefaultPeriod,
		Weights: selection.DefaultWeightConfig(),
		TopN:    &top,
	}
}

func TestScreen_UsesDefaults(t *testing.T) {
	eval := &stubEvaluator{summary: sampleSummary()}
	h := NewScreenHandler(eval, defaultRequest(), nil, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Screen(rec, httptest.NewRequest(http.MethodGet, "/api/screen", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"AAPL", "MSFT"}, eval.got.Tickers)
	assert.Equal(t, contracts.DefaultPeriod, eval.got.Period)
	require.NotNil(t, eval.got.TopN)
	assert.Equal(t, 20, *eval.got.TopN)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	results := body["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].(map[string]interface{})["ticker"])
	assert.Equal(t, "no data", body["failures"].(map[string]interface{})["ZZZZ"])
}

func TestScreen_QueryOverrides(t *testing.T) {
	eval := &stubEvaluator{summary: sampleSummary()}
	h := NewScreenHandler(eval, defaultRequest(), nil, logger.NewNop())

	url := "/api/screen?tickers=nvda,amd&period=1y&value_weight=0.2&momentum_weight=0.7&risk_weight=0.1&top=5"
	rec := httptest.NewRecorder()
	h.Screen(rec, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"AMD", "NVDA"}, eval.got.Tickers)
	assert.Equal(t, contracts.Period("1y"), eval.got.Period)
	assert.Equal(t, selection.WeightConfig{Value: 0.2, Momentum: 0.7, Risk: 0.1}, eval.got.Weights)
	require.NotNil(t, eval.got.TopN)
	assert.Equal(t, 5, *eval.got.TopN)
}

func TestScreen_BadParams(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"period", "/api/screen?period=3w"},
		{"weight", "/api/screen?value_weight=abc"},
		{"top", "/api/screen?top=ten"},
		{"negative top", "/api/screen?top=-1"},
		{"nan weight", "/api/screen?value_weight=NaN"},
		{"inf weight", "/api/screen?momentum_weight=Inf"},
		{"negative inf weight", "/api/screen?risk_weight=-Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := &stubEvaluator{summary: sampleSummary()}
			h := NewScreenHandler(eval, defaultRequest(), nil, logger.NewNop())

			rec := httptest.NewRecorder()
			h.Screen(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
			assert.Nil(t, eval.got.Tickers, "evaluator must not run")
		})
	}
}

func TestScreen_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "no analyzable tickers",
			err: &contracts.NoAnalyzableError{Failures: []contracts.TickerFailure{
				{Ticker: "ZZZZ", Reason: "no data"},
			}},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "provider failure",
			err:  &contracts.AnalysisError{Ticker: "AAPL", Err: errors.New("connection reset")},
			want: http.StatusBadGateway,
		},
		{
			name: "cancelled",
			err:  context.DeadlineExceeded,
			want: http.StatusGatewayTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := &stubEvaluator{err: tt.err}
			h := NewScreenHandler(eval, defaultRequest(), nil, logger.NewNop())

			rec := httptest.NewRecorder()
			h.Screen(rec, httptest.NewRequest(http.MethodGet, "/api/screen", nil))

			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestScreen_NoAnalyzableIncludesFailures(t *testing.T) {
	eval := &stubEvaluator{err: &contracts.NoAnalyzableError{Failures: []contracts.TickerFailure{
		{Ticker: "ZZZZ", Reason: "no data"},
	}}}
	h := NewScreenHandler(eval, defaultRequest(), nil, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Screen(rec, httptest.NewRequest(http.MethodGet, "/api/screen", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no data", body["failures"].(map[string]interface{})["ZZZZ"])
}

func TestScreen_NonFiniteWeightWithScorer(t *testing.T) {
	scorer := selection.NewScorer(healthyAnalyzer{}, logger.NewNop())
	h := NewScreenHandler(scorer, defaultRequest(), nil, logger.NewNop())

	for _, raw := range []string{"NaN", "Inf"} {
		rec := httptest.NewRecorder()
		h.Screen(rec, httptest.NewRequest(http.MethodGet, "/api/screen?value_weight="+raw, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
		assert.Contains(t, rec.Body.String(), "value weight must be finite", raw)
	}

	rec := httptest.NewRecorder()
	h.Screen(rec, httptest.NewRequest(http.MethodGet, "/api/screen?value_weight=0.4", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body["results"], 2)
}

// healthyAnalyzer returns distinct metrics for every ticker
type healthyAnalyzer struct{}

func (healthyAnalyzer) Analyze(ctx context.Context, ticker string, period contracts.Period) (*contracts.StockAnalysis, error) {
	m := 0.05
	if ticker == "MSFT" {
		m = 0.1
	}
	return &contracts.StockAnalysis{
		Ticker:        ticker,
		Momentum21D:   contracts.Some(m),
		Volatility21D: contracts.Some(0.2 + m),
		PE:            contracts.Some(20 + m*100),
	}, nil
}

func TestLatest(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h := NewScreenHandler(&stubEvaluator{}, defaultRequest(), nil, logger.NewNop())
		rec := httptest.NewRecorder()
		h.Latest(rec, httptest.NewRequest(http.MethodGet, "/api/screen/latest", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("not yet run", func(t *testing.T) {
		h := NewScreenHandler(&stubEvaluator{}, defaultRequest(), stubLatest{}, logger.NewNop())
		rec := httptest.NewRecorder()
		h.Latest(rec, httptest.NewRequest(http.MethodGet, "/api/screen/latest", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("available", func(t *testing.T) {
		h := NewScreenHandler(&stubEvaluator{}, defaultRequest(), stubLatest{summary: sampleSummary()}, logger.NewNop())
		rec := httptest.NewRecorder()
		h.Latest(rec, httptest.NewRequest(http.MethodGet, "/api/screen/latest", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "AAPL")
	})
}
