package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/equityscreen/internal/analysis"
	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/internal/marketdata"
	"github.com/wonny/equityscreen/internal/monitoring"
	"github.com/wonny/equityscreen/internal/selection"
	"github.com/wonny/equityscreen/internal/strategyconfig"
	"github.com/wonny/equityscreen/internal/universe"
	"github.com/wonny/equityscreen/pkg/config"
	"github.com/wonny/equityscreen/pkg/logger"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Rank a universe of tickers",
	Long: `Fetches market data for every ticker, computes value, momentum and
risk sub-scores and prints the ranked result.

Tickers with missing or short data are skipped and listed after the table.
Any other data failure aborts the run with exit code 1.

Precedence: flags > strategy file > environment (SCREENER_*).

Example:
  go run ./cmd/screener screen
  go run ./cmd/screener screen --tickers AAPL,MSFT --period 1y --top 10
  go run ./cmd/screener screen --universe-file tickers.txt --format json`,
	RunE: runScreen,
}

// screenOptions holds the screen/api flag values
type screenOptions struct {
	tickers        []string
	universeFile   string
	period         string
	valueWeight    float64
	momentumWeight float64
	riskWeight     float64
	top            int
	format         string
	strategy       string
	source         string
	workers        int
}

var screenOpts screenOptions

func init() {
	rootCmd.AddCommand(screenCmd)
	bindScreenFlags(screenCmd, &screenOpts)
	screenCmd.Flags().StringVar(&screenOpts.format, "format", FormatTable, "output format (table|json)")
}

// bindScreenFlags registers the flags shared by screen and api
func bindScreenFlags(cmd *cobra.Command, o *screenOptions) {
	f := cmd.Flags()
	f.StringSliceVar(&o.tickers, "tickers", nil, "comma separated tickers (default: large-cap universe)")
	f.StringVar(&o.universeFile, "universe-file", "", "file with comma or newline separated tickers")
	f.StringVar(&o.period, "period", string(contracts.DefaultPeriod), "price history period (1mo|3mo|6mo|1y|2y|5y|10y|ytd|max)")
	f.Float64Var(&o.valueWeight, "value-weight", 0.5, "value sub-score weight")
	f.Float64Var(&o.momentumWeight, "momentum-weight", 0.3, "momentum sub-score weight")
	f.Float64Var(&o.riskWeight, "risk-weight", 0.2, "risk sub-score weight")
	f.IntVar(&o.top, "top", 20, "number of ranked tickers to keep")
	f.StringVar(&o.strategy, "strategy", "", "strategy YAML file")
	f.StringVar(&o.source, "source", "", "market data source (yahoo|postgres, default: SCREENER_SOURCE)")
	f.IntVar(&o.workers, "workers", 0, "concurrent extractions (default: SCREENER_WORKERS)")
}

// runPlan is a resolved screening run
type runPlan struct {
	Request      selection.Request
	Source       string
	Workers      int
	Schedule     string
	StrategyID   string
	StrategyHash string
	Warnings     []strategyconfig.Warning
}

// resolvePlan layers environment defaults, the strategy file and explicit flags
func resolvePlan(cmd *cobra.Command, cfg *config.Config, o screenOptions) (*runPlan, error) {
	flags := cmd.Flags()

	period, err := contracts.ParsePeriod(cfg.Screener.Period)
	if err != nil {
		return nil, fmt.Errorf("SCREENER_PERIOD: %w", err)
	}

	plan := &runPlan{
		Request: selection.Request{
			Period: period,
			Weights: selection.WeightConfig{
				Value:    cfg.Screener.ValueWeight,
				Momentum: cfg.Screener.MomentumWeight,
				Risk:     cfg.Screener.RiskWeight,
			},
		},
		Source:  cfg.Screener.Source,
		Workers: cfg.Screener.Workers,
	}
	if cfg.Screener.TopN > 0 {
		top := cfg.Screener.TopN
		plan.Request.TopN = &top
	}

	var tickers []string
	var universeFile string

	// 1. Strategy file
	if o.strategy != "" {
		strat, _, err := strategyconfig.Load(o.strategy)
		if err != nil {
			return nil, fmt.Errorf("load strategy %s: %w", o.strategy, err)
		}

		hash, err := strategyconfig.Hash(strat)
		if err != nil {
			return nil, fmt.Errorf("hash strategy: %w", err)
		}
		plan.StrategyID = strat.Meta.StrategyID
		plan.StrategyHash = hash
		plan.Warnings = strategyconfig.Warn(strat)
		plan.Schedule = strat.Schedule.Cron

		tickers = strat.Universe.Tickers
		universeFile = strat.Universe.File

		s := strat.Screen
		if s.Source != "" {
			plan.Source = s.Source
		}
		if s.Period != "" {
			// Validate already accepted the period
			plan.Request.Period, _ = contracts.ParsePeriod(s.Period)
		}
		if w := s.Weights; w.Value+w.Momentum+w.Risk > 0 {
			plan.Request.Weights = selection.WeightConfig{Value: w.Value, Momentum: w.Momentum, Risk: w.Risk}
		}
		if s.TopN != nil {
			top := *s.TopN
			plan.Request.TopN = &top
		}
		if s.Workers > 0 {
			plan.Workers = s.Workers
		}
	}

	// 2. Explicit flags
	if flags.Changed("tickers") || flags.Changed("universe-file") {
		tickers = o.tickers
		universeFile = o.universeFile
	}
	if flags.Changed("period") {
		p, err := contracts.ParsePeriod(o.period)
		if err != nil {
			return nil, err
		}
		plan.Request.Period = p
	}
	if flags.Changed("value-weight") {
		plan.Request.Weights.Value = o.valueWeight
	}
	if flags.Changed("momentum-weight") {
		plan.Request.Weights.Momentum = o.momentumWeight
	}
	if flags.Changed("risk-weight") {
		plan.Request.Weights.Risk = o.riskWeight
	}
	if err := plan.Request.Weights.CheckFinite(); err != nil {
		return nil, err
	}
	if flags.Changed("top") {
		if o.top < 0 {
			return nil, fmt.Errorf("--top must be >= 0, got %d", o.top)
		}
		top := o.top
		plan.Request.TopN = &top
	}
	if o.source != "" {
		plan.Source = o.source
	}
	if o.workers > 0 {
		plan.Workers = o.workers
	}

	plan.Request.Tickers, err = universe.Resolve(tickers, universeFile)
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// logPlan reports the resolved run and any advisory warnings
func logPlan(log *logger.Logger, plan *runPlan) {
	w := plan.Request.Weights
	if !w.ValidateWeights() {
		log.WithField("sum", w.Sum()).Warn("Weights do not sum to 1, applying as given")
	}
	for _, warning := range plan.Warnings {
		log.WithFields(map[string]interface{}{
			"code":     warning.Code,
			"strategy": plan.StrategyID,
		}).Warn(warning.Message)
	}

	fields := map[string]interface{}{
		"tickers": len(plan.Request.Tickers),
		"period":  plan.Request.Period.String(),
		"source":  plan.Source,
		"workers": plan.Workers,
	}
	if plan.StrategyHash != "" {
		fields["strategy"] = plan.StrategyID
		fields["strategy_hash"] = plan.StrategyHash
	}
	log.WithFields(fields).Info("Screening plan resolved")
}

// newScorer wires the market data source, extractor and scorer for a plan
func newScorer(ctx context.Context, cfg *config.Config, plan *runPlan, log *logger.Logger, metrics *monitoring.Metrics) (*selection.Scorer, *marketdata.Provider, error) {
	provider, err := marketdata.New(ctx, cfg, plan.Source, log, metrics)
	if err != nil {
		return nil, nil, err
	}

	extractor := analysis.NewExtractor(provider, log)
	scorer := selection.NewScorer(extractor, log).
		WithWorkers(plan.Workers).
		WithMetrics(metrics)

	return scorer, provider, nil
}

func runScreen(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(screenOpts.format)
	if err != nil {
		return err
	}

	cfg, log, err := setup()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	plan, err := resolvePlan(cmd, cfg, screenOpts)
	if err != nil {
		return err
	}
	logPlan(log, plan)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scorer, provider, err := newScorer(ctx, cfg, plan, log, nil)
	if err != nil {
		return fmt.Errorf("init market data: %w", err)
	}
	defer provider.Close()

	summary, err := scorer.Evaluate(ctx, plan.Request)
	if err != nil {
		return fmt.Errorf("unable to evaluate tickers: %w", err)
	}

	return render(cmd.OutOrStdout(), summary, format)
}
