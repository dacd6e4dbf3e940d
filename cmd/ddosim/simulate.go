package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ddosim/internal/analysis"
	"ddosim/internal/config"
	"ddosim/internal/logging"
	"ddosim/internal/metrics"
	"ddosim/internal/scenario"
	"ddosim/internal/sim"
)

var (
	simPrintOnly  bool
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simLogFile    string
	simListen     string
	simVerbose    bool
	simScenario   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the interactive load simulator",
	Long:  "simulate starts the drift loop, the terminal dashboard, and the admin HTTP server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if simVerbose {
			level = slog.LevelDebug
		}
		log := logging.New(level)
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		ctx = logging.NewContext(ctx, log)

		runID := resolveRunID(cfg.RunID)

		tuning := cfg.EngineTuning()
		if simTick > 0 {
			tuning.TickInterval = simTick
		}
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tuning.TickInterval = d
		}

		listen := cfg.Listen
		if simListen != "" {
			listen = simListen
		}

		writer, tui, srv, cleanup, err := newWriters(simPrintOnly, simLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		ctrl := sim.NewController(runID, tuning, writer, analysis.NewClientFromEnv(), metrics.New())
		srv.Ctrl = ctrl

		if tui != nil {
			tui.SetControls(sim.Controls{
				SelectVector:     ctrl.SelectVector,
				ToggleMitigation: ctrl.ToggleMitigation,
				StartMission:     ctrl.StartMission,
				AbortMission:     ctrl.AbortMission,
				Reset:            ctrl.Reset,
				RunAnalysis:      func() error { return ctrl.RunAnalysis(ctx) },
			})
		}

		if simScenario != "" {
			sc, err := scenario.Resolve(simScenario)
			if err != nil {
				return err
			}
			go func() {
				if err := scenario.NewPlayer(sc, ctrl).Run(ctx); err != nil && ctx.Err() == nil {
					log.Error("scenario aborted", "err", err)
				}
			}()
		}

		go func() {
			log.Info("admin server listening", "addr", listen)
			if err := srv.Start(ctx, listen); err != nil && err != http.ErrServerClosed {
				log.Error("admin server failed", "err", err)
				cancel()
			}
		}()

		ctrl.Run(ctx)
		log.Info("simulation stopped", "run_id", runID)
		return nil
	},
}

// resolveRunID prefers the RUN_ID env var, then the configured id, and
// otherwise generates a fresh short id for this run.
func resolveRunID(configured string) string {
	if env := os.Getenv("RUN_ID"); env != "" {
		return env
	}
	if configured != "" {
		return configured
	}
	return "run-" + strings.SplitN(uuid.New().String(), "-", 2)[0]
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print snapshots to STDOUT instead of the terminal dashboard")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "", "Path to simulation configuration YAML (empty uses built-in defaults)")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 0, "Drift tick interval override (e.g. 500ms, 2s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export snapshot/event logs (JSONL)")
	simulateCmd.Flags().StringVar(&simListen, "listen", "", "Admin server listen address override")
	simulateCmd.Flags().BoolVar(&simVerbose, "verbose", false, "Enable debug logging")
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "", "Built-in scenario name or YAML path to play automatically")
}
