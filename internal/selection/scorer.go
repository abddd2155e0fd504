package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/internal/monitoring"
	"github.com/wonny/equityscreen/pkg/logger"
)

// DefaultWorkers bounds concurrent extractions when none is configured
const DefaultWorkers = 4

// Analyzer computes the metrics of a single ticker
type Analyzer interface {
	Analyze(ctx context.Context, ticker string, period contracts.Period) (*contracts.StockAnalysis, error)
}

// Request is one screening run over a universe
type Request struct {
	Tickers []string
	Period  contracts.Period
	Weights WeightConfig
	TopN    *int // nil or negative: keep all
}

// Scorer evaluates a universe: extraction, normalization, ranking
// ⭐ SSOT: 유니버스 평가 진입점은 여기서만
type Scorer struct {
	analyzer Analyzer
	logger   *logger.Logger
	metrics  *monitoring.Metrics
	workers  int
	now      func() time.Time
}

// NewScorer creates a new scorer
func NewScorer(analyzer Analyzer, log *logger.Logger) *Scorer {
	return &Scorer{
		analyzer: analyzer,
		logger:   log,
		workers:  DefaultWorkers,
		now:      time.Now,
	}
}

// WithWorkers sets the extraction concurrency
func (s *Scorer) WithWorkers(n int) *Scorer {
	if n < 1 {
		n = DefaultWorkers
	}
	s.workers = n
	return s
}

// WithMetrics records run outcomes on m
func (s *Scorer) WithMetrics(m *monitoring.Metrics) *Scorer {
	s.metrics = m
	return s
}

// outcome is the per-ticker result slot written by exactly one worker
type outcome struct {
	analysis *contracts.StockAnalysis
	reason   string
}

// Evaluate screens the request's tickers.
// Soft failures land in Summary.Failures. Any other per-ticker failure aborts
// the run, and a run where no ticker succeeded returns *contracts.NoAnalyzableError.
func (s *Scorer) Evaluate(ctx context.Context, req Request) (*contracts.Summary, error) {
	if err := req.Weights.CheckFinite(); err != nil {
		return nil, err
	}

	startedAt := s.now()
	runID := uuid.New()

	period := req.Period
	if period == "" {
		period = contracts.DefaultPeriod
	}

	tickers := dedupe(req.Tickers)

	log := s.logger.WithRun(runID.String()).WithFields(map[string]interface{}{
		"period":  period.String(),
		"tickers": len(tickers),
		"workers": s.workers,
	})
	log.Info("Screening started")

	s.metrics.RunStarted()

	results, err := s.extract(ctx, log, tickers, period)
	if err != nil {
		s.metrics.RunFinished(monitoring.RunFatal, time.Since(startedAt))
		log.WithError(err).Error("Screening aborted")
		return nil, err
	}

	// Partition in input order
	analyses := make([]*contracts.StockAnalysis, 0, len(tickers))
	failures := make(contracts.FailureMap)
	ordered := make([]contracts.TickerFailure, 0)
	for i, res := range results {
		if res.analysis != nil {
			analyses = append(analyses, res.analysis)
			continue
		}
		failures[tickers[i]] = res.reason
		ordered = append(ordered, contracts.TickerFailure{Ticker: tickers[i], Reason: res.reason})
	}

	s.metrics.TickersProcessed(len(analyses), len(failures))

	if len(analyses) == 0 {
		err := &contracts.NoAnalyzableError{Failures: ordered}
		s.metrics.RunFinished(monitoring.RunNoAnalyzable, time.Since(startedAt))
		log.WithError(err).Error("No ticker could be analyzed")
		return nil, err
	}

	ranked := NewRanker(req.Weights, log).Rank(analyses)
	ranked = truncate(ranked, req.TopN)

	summary := &contracts.Summary{
		RunID:     runID,
		Period:    period,
		Ranked:    ranked,
		Failures:  failures,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
	}

	s.metrics.RunFinished(monitoring.RunOK, summary.Duration)
	log.WithFields(map[string]interface{}{
		"analyzed": len(analyses),
		"skipped":  len(failures),
		"returned": len(ranked),
		"duration": summary.Duration,
	}).Info("Screening completed")

	return summary, nil
}

// extract runs the analyzer over tickers on a bounded worker pool.
// The first hard failure cancels the remaining work.
func (s *Scorer) extract(ctx context.Context, log *logger.Logger, tickers []string, period contracts.Period) ([]outcome, error) {
	results := make([]outcome, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, ticker := range tickers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			analysis, err := s.analyzer.Analyze(gctx, ticker, period)
			if err == nil {
				results[i].analysis = analysis
				return nil
			}

			if contracts.IsSoftFailure(err) {
				results[i].reason = err.Error()
				log.WithTicker(ticker).WithField("reason", err.Error()).Warn("Ticker skipped")
				return nil
			}

			var ae *contracts.AnalysisError
			if errors.As(err, &ae) {
				return err
			}
			return &contracts.AnalysisError{Ticker: ticker, Err: err}
		})
	}

	err := g.Wait()

	// Parent cancellation wins over whatever the workers saw
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("screening cancelled: %w", ctxErr)
	}
	if err != nil {
		return nil, err
	}

	return results, nil
}

// dedupe drops repeated tickers, keeping the first occurrence
func dedupe(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	unique := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}

// truncate applies the top-N limit; nil or negative keeps everything
func truncate(ranked []contracts.RankedStock, topN *int) []contracts.RankedStock {
	if topN == nil || *topN < 0 || *topN >= len(ranked) {
		return ranked
	}
	return ranked[:*topN]
}
