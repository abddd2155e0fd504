package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/internal/selection"
	"github.com/wonny/equityscreen/pkg/logger"
)

// Evaluator runs a screening request
type Evaluator interface {
	Evaluate(ctx context.Context, req selection.Request) (*contracts.Summary, error)
}

// ScreenJob screens the configured universe on a schedule and keeps the latest summary
// ⭐ SSOT: 정기 스크리닝 스케줄은 이 Job에서만
type ScreenJob struct {
	evaluator Evaluator
	request   selection.Request
	schedule  string
	logger    *logger.Logger

	mu     sync.RWMutex
	latest *contracts.Summary
}

// NewScreenJob creates a new screen job
func NewScreenJob(evaluator Evaluator, req selection.Request, schedule string, log *logger.Logger) *ScreenJob {
	return &ScreenJob{
		evaluator: evaluator,
		request:   req,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *ScreenJob) Name() string {
	return "screen"
}

// Schedule returns the cron schedule (with seconds)
func (j *ScreenJob) Schedule() string {
	return j.schedule
}

// Run executes the screen; the previous summary is kept when it fails
func (j *ScreenJob) Run(ctx context.Context) error {
	j.logger.WithField("tickers", len(j.request.Tickers)).Info("Starting scheduled screen")

	summary, err := j.evaluator.Evaluate(ctx, j.request)
	if err != nil {
		return fmt.Errorf("scheduled screen failed: %w", err)
	}

	j.mu.Lock()
	j.latest = summary
	j.mu.Unlock()

	j.logger.WithFields(map[string]interface{}{
		"run_id":  summary.RunID.String(),
		"ranked":  len(summary.Ranked),
		"skipped": len(summary.Failures),
	}).Info("Scheduled screen completed")

	return nil
}

// Latest returns the most recent successful summary, or nil
func (j *ScreenJob) Latest() *contracts.Summary {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.latest
}
