package jobs

import (
	"context"
	"errors"
	"testing"

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

func (s *stubEvaluator) Evaluate(_ context.Context, req selection.Request) (*contracts.Summary, error) {
	s.got = req
	return s.summary, s.err
}

func TestScreenJob(t *testing.T) {
	summary := &contracts.Summary{RunID: uuid.New(), Ranked: []contracts.RankedStock{{Ticker: "AAPL", Rank: 1}}}
	eval := &stubEvaluator{summary: summary}
	req := selection.Request{Tickers: []string{"AAPL"}, Period: "6mo", Weights: selection.DefaultWeightConfig()}

	job := NewScreenJob(eval, req, "0 30 16 * * 1-5", logger.NewNop())
	assert.Equal(t, "screen", job.Name())
	assert.Equal(t, "0 30 16 * * 1-5", job.Schedule())
	assert.Nil(t, job.Latest())

	require.NoError(t, job.Run(context.Background()))
	assert.Same(t, summary, job.Latest())
	assert.Equal(t, req.Tickers, eval.got.Tickers)

	// a failed run keeps the previous summary
	eval.summary, eval.err = nil, errors.New("provider down")
	assert.Error(t, job.Run(context.Background()))
	assert.Same(t, summary, job.Latest())
}
