package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/internal/universe"
	"github.com/wonny/equityscreen/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Env: "development",
		Screener: config.ScreenerConfig{
			Source:         config.SourceYahoo,
			Period:         "6mo",
			ValueWeight:    0.5,
			MomentumWeight: 0.3,
			RiskWeight:     0.2,
			TopN:           20,
			Workers:        4,
		},
	}
}

// newPlanCmd parses args into a fresh command carrying the screen flags
func newPlanCmd(t *testing.T, args ...string) (*cobra.Command, screenOptions) {
	t.Helper()
	var o screenOptions
	cmd := &cobra.Command{Use: "screen"}
	bindScreenFlags(cmd, &o)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd, o
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolvePlan_EnvironmentDefaults(t *testing.T) {
	cmd, o := newPlanCmd(t)

	plan, err := resolvePlan(cmd, testConfig(), o)
	require.NoError(t, err)

	assert.ElementsMatch(t, universe.Default(), plan.Request.Tickers)
	assert.Equal(t, contracts.Period("6mo"), plan.Request.Period)
	assert.Equal(t, 0.5, plan.Request.Weights.Value)
	require.NotNil(t, plan.Request.TopN)
	assert.Equal(t, 20, *plan.Request.TopN)
	assert.Equal(t, config.SourceYahoo, plan.Source)
	assert.Equal(t, 4, plan.Workers)
	assert.Empty(t, plan.Schedule)
}

func TestResolvePlan_NoTopCapFromEnvironment(t *testing.T) {
	cfg := testConfig()
	cfg.Screener.TopN = 0
	cmd, o := newPlanCmd(t)

	plan, err := resolvePlan(cmd, cfg, o)
	require.NoError(t, err)
	assert.Nil(t, plan.Request.TopN)
}

func TestResolvePlan_Flags(t *testing.T) {
	cmd, o := newPlanCmd(t,
		"--tickers", "msft,aapl",
		"--period", "1y",
		"--value-weight", "0.1",
		"--momentum-weight", "0.8",
		"--risk-weight", "0.1",
		"--top", "0",
		"--source", "postgres",
		"--workers", "8",
	)

	plan, err := resolvePlan(cmd, testConfig(), o)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, plan.Request.Tickers)
	assert.Equal(t, contracts.Period("1y"), plan.Request.Period)
	assert.Equal(t, 0.8, plan.Request.Weights.Momentum)
	require.NotNil(t, plan.Request.TopN)
	assert.Equal(t, 0, *plan.Request.TopN)
	assert.Equal(t, config.SourcePostgres, plan.Source)
	assert.Equal(t, 8, plan.Workers)
}

func TestResolvePlan_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"period", []string{"--period", "2w"}},
		{"negative top", []string{"--top", "-1"}},
		{"nan weight", []string{"--value-weight", "NaN"}},
		{"inf weight", []string{"--risk-weight", "+Inf"}},
		{"missing universe file", []string{"--universe-file", "/nonexistent/tickers.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, o := newPlanCmd(t, tt.args...)
			_, err := resolvePlan(cmd, testConfig(), o)
			assert.Error(t, err)
		})
	}
}

func TestResolvePlan_Strategy(t *testing.T) {
	path := writeFile(t, "strategy.yaml", `
meta:
  strategy_id: tech_momentum
  version: "1.0"
universe:
  tickers: [NVDA, AMD, INTC]
screen:
  period: 1y
  weights:
    value: 0.2
    momentum: 0.6
    risk: 0.2
  top_n: 2
  workers: 2
schedule:
  cron: "0 0 17 * * 1-5"
`)

	cmd, o := newPlanCmd(t, "--strategy", path, "--top", "1")
	plan, err := resolvePlan(cmd, testConfig(), o)
	require.NoError(t, err)

	assert.Equal(t, "tech_momentum", plan.StrategyID)
	assert.Len(t, plan.StrategyHash, 64)
	assert.Equal(t, []string{"AMD", "INTC", "NVDA"}, plan.Request.Tickers)
	assert.Equal(t, contracts.Period("1y"), plan.Request.Period)
	assert.Equal(t, 0.6, plan.Request.Weights.Momentum)
	assert.Equal(t, 2, plan.Workers)
	assert.Equal(t, "0 0 17 * * 1-5", plan.Schedule)

	// explicit flag wins over the strategy file
	require.NotNil(t, plan.Request.TopN)
	assert.Equal(t, 1, *plan.Request.TopN)
}

func TestResolvePlan_FlagUniverseOverridesStrategy(t *testing.T) {
	strategy := writeFile(t, "strategy.yaml", `
meta:
  strategy_id: s
universe:
  tickers: [NVDA]
`)
	tickers := writeFile(t, "tickers.txt", "# watchlist\nko, pep\n")

	cmd, o := newPlanCmd(t, "--strategy", strategy, "--universe-file", tickers)
	plan, err := resolvePlan(cmd, testConfig(), o)
	require.NoError(t, err)

	assert.Equal(t, []string{"KO", "PEP"}, plan.Request.Tickers)
}

func TestResolvePlan_InvalidStrategy(t *testing.T) {
	path := writeFile(t, "strategy.yaml", "meta:\n  strategy_id: s\nscreen:\n  unknown_field: 1\n")

	cmd, o := newPlanCmd(t, "--strategy", path)
	_, err := resolvePlan(cmd, testConfig(), o)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" json ", FormatJSON, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender(t *testing.T) {
	summary := &contracts.Summary{
		RunID:  uuid.New(),
		Period: contracts.DefaultPeriod,
		Ranked: []contracts.RankedStock{{
			Ticker:   "AAPL",
			Rank:     1,
			Analysis: &contracts.StockAnalysis{Ticker: "AAPL"},
		}},
		Failures: contracts.FailureMap{"ZZZZ": "no data"},
	}

	var table bytes.Buffer
	require.NoError(t, render(&table, summary, FormatTable))
	assert.Contains(t, table.String(), "Rank")
	assert.Contains(t, table.String(), "- ZZZZ: no data")

	var js bytes.Buffer
	require.NoError(t, render(&js, summary, FormatJSON))
	assert.Contains(t, js.String(), `"results"`)
	assert.Contains(t, js.String(), `"ZZZZ": "no data"`)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "screener dev\n", out.String())
}
