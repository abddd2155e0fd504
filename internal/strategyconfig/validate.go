package strategyconfig

import (
	"fmt"
	"math"

	"github.com/robfig/cron/v3"

	"github.com/wonny/equityscreen/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// cronParser matches the scheduler (seconds field required)
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Universe ===
	for i, t := range cfg.Universe.Tickers {
		if t == "" {
			return ValidationError{fmt.Sprintf("universe.tickers[%d]", i), "must not be empty"}
		}
	}

	// === Screen ===
	switch cfg.Screen.Source {
	case "", "yahoo", "postgres":
	default:
		return ValidationError{"screen.source", "must be yahoo or postgres"}
	}
	if _, err := contracts.ParsePeriod(cfg.Screen.Period); err != nil {
		return ValidationError{"screen.period", err.Error()}
	}
	if err := validateWeight(cfg.Screen.Weights.Value, "screen.weights.value"); err != nil {
		return err
	}
	if err := validateWeight(cfg.Screen.Weights.Momentum, "screen.weights.momentum"); err != nil {
		return err
	}
	if err := validateWeight(cfg.Screen.Weights.Risk, "screen.weights.risk"); err != nil {
		return err
	}
	if cfg.Screen.TopN != nil && *cfg.Screen.TopN < 0 {
		return ValidationError{"screen.top_n", "must be >= 0"}
	}
	if cfg.Screen.Workers < 0 {
		return ValidationError{"screen.workers", "must be >= 0"}
	}

	// === Schedule ===
	if cfg.Schedule.Cron != "" {
		if _, err := cronParser.Parse(cfg.Schedule.Cron); err != nil {
			return ValidationError{"schedule.cron", err.Error()}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 가중치 합 != 1 경고 (그대로 적용됨)
	w := cfg.Screen.Weights
	if sum := w.Value + w.Momentum + w.Risk; math.Abs(sum-1) > 0.01 {
		warnings = append(warnings, Warning{
			Code:    "WEIGHTS_SUM",
			Message: fmt.Sprintf("weights sum to %.4f, composite scores are not on a 0-1 scale", sum),
		})
	}

	// 유니버스 미지정 경고
	if len(cfg.Universe.Tickers) == 0 && cfg.Universe.File == "" {
		warnings = append(warnings, Warning{
			Code:    "DEFAULT_UNIVERSE",
			Message: "no tickers configured, the default large-cap universe is used",
		})
	}

	// top_n = 0 → 결과 없음
	if cfg.Screen.TopN != nil && *cfg.Screen.TopN == 0 {
		warnings = append(warnings, Warning{
			Code:    "EMPTY_RESULT",
			Message: "top_n is 0, runs return no ranked tickers",
		})
	}

	return warnings
}

// === Helper Functions ===

func validateWeight(w float64, field string) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return ValidationError{field, "must be finite"}
	}
	if w < 0 {
		return ValidationError{field, "must be >= 0"}
	}
	return nil
}
