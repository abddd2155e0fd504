package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/equityscreen/pkg/config"
	"github.com/wonny/equityscreen/pkg/logger"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Equity screener - value, momentum and risk ranking",
	Long: `Equity Screener CLI

Fetches price history and fundamentals for a universe of tickers,
scores each one on value, momentum and risk, and prints a ranked list.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener screen
  go run ./cmd/screener screen --tickers AAPL,MSFT,NVDA --top 5
  go run ./cmd/screener screen --strategy config/strategy/us_largecap.yaml --format json
  go run ./cmd/screener api --schedule "0 30 16 * * 1-5"`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// setup loads the environment config and builds the logger
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}
