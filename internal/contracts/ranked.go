package contracts

import (
	"time"

	"github.com/google/uuid"
)

// RankedStock is a scored ticker in the final ordering
// ⭐ SSOT: Scorer → 출력 랭킹 결과 전달
type RankedStock struct {
	Ticker         string         `json:"ticker"`
	Rank           int            `json:"rank"` // 1-based ranking
	CompositeScore float64        `json:"composite_score"`
	ValueScore     float64        `json:"value_score"`
	MomentumScore  float64        `json:"momentum_score"`
	RiskScore      float64        `json:"risk_score"`
	Analysis       *StockAnalysis `json:"analysis"`
}

// IsTopRanked checks if the stock is in top N ranks
func (r *RankedStock) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}

// FailureMap maps a skipped ticker to a human-readable reason
type FailureMap map[string]string

// Summary is the result of one screening run
type Summary struct {
	RunID     uuid.UUID     `json:"run_id"`
	Period    Period        `json:"period"`
	Ranked    []RankedStock `json:"ranked"`
	Failures  FailureMap    `json:"failures"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Tickers returns the ranked tickers in rank order
func (s *Summary) Tickers() []string {
	tickers := make([]string, len(s.Ranked))
	for i, r := range s.Ranked {
		tickers[i] = r.Ticker
	}
	return tickers
}
