package config_test

import (
	"fmt"

	"github.com/wonny/equityscreen/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Source: %s\n", cfg.Screener.Source)
	fmt.Printf("Weights: value=%.2f momentum=%.2f risk=%.2f\n",
		cfg.Screener.ValueWeight, cfg.Screener.MomentumWeight, cfg.Screener.RiskWeight)
}
