package commands

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/equityscreen/internal/api"
	"github.com/wonny/equityscreen/internal/api/handlers"
	"github.com/wonny/equityscreen/internal/monitoring"
	"github.com/wonny/equityscreen/internal/scheduler"
	"github.com/wonny/equityscreen/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the screening API server",
	Long: `Starts the HTTP API server.

Screen flags (--tickers, --period, --strategy, ...) set the defaults used
when a request omits a parameter and by the scheduled screen.

Endpoints:
  GET  /health                - Health check
  GET  /metrics               - Prometheus metrics
  GET  /api/screen            - Run a screen (tickers, period, *_weight, top)
  GET  /api/screen/latest     - Last scheduled screen
  GET  /api/jobs              - Scheduler job statistics
  GET  /api/jobs/{name}       - Job run history
  POST /api/jobs/{name}/run   - Trigger a job now

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8080 --schedule "0 30 16 * * 1-5"`,
	RunE: runAPIServer,
}

var (
	apiOpts     screenOptions
	apiPort     string
	apiSchedule string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	bindScreenFlags(apiCmd, &apiOpts)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: PORT)")
	apiCmd.Flags().StringVar(&apiSchedule, "schedule", "", "cron expression with seconds for scheduled screens")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, log, err := setup()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	plan, err := resolvePlan(cmd, cfg, apiOpts)
	if err != nil {
		return err
	}
	if apiSchedule != "" {
		plan.Schedule = apiSchedule
	}
	logPlan(log, plan)

	// 2. Metrics
	var metrics *monitoring.Metrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metrics = monitoring.New()
		metricsHandler = metrics.Handler()
	}

	// 3. Market data + scorer
	scorer, provider, err := newScorer(cmd.Context(), cfg, plan, log, metrics)
	if err != nil {
		return fmt.Errorf("init market data: %w", err)
	}
	defer provider.Close()

	// 4. Scheduler (optional)
	var sched *scheduler.Scheduler
	var latest handlers.LatestSource
	if plan.Schedule != "" {
		job := jobs.NewScreenJob(scorer, plan.Request, plan.Schedule, log)
		sched = scheduler.New(log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("register screen job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		latest = job
	}

	// 5. Handlers + router
	screenHandler := handlers.NewScreenHandler(scorer, plan.Request, latest, log)
	jobsHandler := handlers.NewJobsHandler(sched, log)
	router := api.NewRouter(screenHandler, jobsHandler, metricsHandler, log)

	// 6. Serve until interrupted
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(map[string]interface{}{
		"port":     cfg.Port,
		"schedule": plan.Schedule,
		"metrics":  cfg.MetricsEnabled,
	}).Info("Starting API server")

	server := api.New(":"+cfg.Port, router, log)
	if err := server.Run(ctx); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
