package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/internal/report"
	"github.com/wonny/equityscreen/internal/selection"
	"github.com/wonny/equityscreen/internal/universe"
	"github.com/wonny/equityscreen/pkg/logger"
)

// Evaluator runs a screening request
type Evaluator interface {
	Evaluate(ctx context.Context, req selection.Request) (*contracts.Summary, error)
}

// LatestSource exposes the last scheduled summary
type LatestSource interface {
	Latest() *contracts.Summary
}

// ScreenHandler handles screening API endpoints
// ⭐ SSOT: 스크리닝 API 핸들러는 이 구조체에서만
type ScreenHandler struct {
	evaluator Evaluator
	defaults  selection.Request
	latest    LatestSource
	logger    *logger.Logger
}

// NewScreenHandler creates a new screen handler.
// defaults supplies the universe, period, weights and top-N when a query omits them.
func NewScreenHandler(evaluator Evaluator, defaults selection.Request, latest LatestSource, log *logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		evaluator: evaluator,
		defaults:  defaults,
		latest:    latest,
		logger:    log,
	}
}

// Screen runs a screen synchronously
// GET /api/screen?tickers=AAPL,MSFT&period=6mo&value_weight=0.5&momentum_weight=0.3&risk_weight=0.2&top=20
func (h *ScreenHandler) Screen(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.evaluator.Evaluate(r.Context(), req)
	if err != nil {
		h.respondEvaluateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report.NewPayload(summary))
}

// Latest returns the most recent scheduled screen
// GET /api/screen/latest
func (h *ScreenHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if h.latest == nil {
		respondError(w, http.StatusNotFound, "scheduled screening is not enabled")
		return
	}

	summary := h.latest.Latest()
	if summary == nil {
		respondError(w, http.StatusNotFound, "no scheduled screen has completed yet")
		return
	}

	respondJSON(w, http.StatusOK, report.NewPayload(summary))
}

func (h *ScreenHandler) respondEvaluateError(w http.ResponseWriter, err error) {
	var nae *contracts.NoAnalyzableError
	if errors.As(err, &nae) {
		failures := make(contracts.FailureMap, len(nae.Failures))
		for _, f := range nae.Failures {
			failures[f.Ticker] = f.Reason
		}
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":    err.Error(),
			"failures": failures,
		})
		return
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		respondError(w, http.StatusGatewayTimeout, err.Error())
		return
	}

	h.logger.WithError(err).Error("Screen failed")
	respondError(w, http.StatusBadGateway, err.Error())
}

func (h *ScreenHandler) parseRequest(q url.Values) (selection.Request, error) {
	req := h.defaults

	if tickers := q["tickers"]; len(tickers) > 0 {
		resolved, err := universe.Resolve(tickers, "")
		if err != nil {
			return req, err
		}
		req.Tickers = resolved
	}

	if p := q.Get("period"); p != "" {
		period, err := contracts.ParsePeriod(p)
		if err != nil {
			return req, err
		}
		req.Period = period
	}

	weights := []struct {
		param string
		dst   *float64
	}{
		{"value_weight", &req.Weights.Value},
		{"momentum_weight", &req.Weights.Momentum},
		{"risk_weight", &req.Weights.Risk},
	}
	for _, w := range weights {
		raw := q.Get(w.param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("invalid %s: %q", w.param, raw)
		}
		*w.dst = v
	}
	if err := req.Weights.CheckFinite(); err != nil {
		return req, err
	}

	if raw := q.Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("invalid top: %q", raw)
		}
		if n < 0 {
			return req, fmt.Errorf("top must be >= 0, got %d", n)
		}
		req.TopN = &n
	}

	return req, nil
}
