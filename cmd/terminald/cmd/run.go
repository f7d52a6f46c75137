package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solterminal/solterminal/internal/dbg"
	"github.com/solterminal/solterminal/internal/feed"
	"github.com/solterminal/solterminal/pkg/book"
	"github.com/solterminal/solterminal/pkg/config"
	"github.com/solterminal/solterminal/pkg/exec"
	"github.com/solterminal/solterminal/pkg/market"
	"github.com/solterminal/solterminal/pkg/middleware"
	"github.com/solterminal/solterminal/pkg/portfolio"
	"github.com/solterminal/solterminal/pkg/utility"
)

var listenAddr string

func init() {
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "feed listen address (overrides config)")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the engine and serve the websocket feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := dbg.NewLogger(debug).With(
			zap.String("execution_id", utility.GetExecutionID().String()))
		defer func(logger *zap.Logger) {
			_ = logger.Sync()
		}(logger)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			logger.Error("cannot load config", zap.Error(err))
			return err
		}

		marketCfg, err := cfg.MarketConfig()
		if err != nil {
			logger.Error("invalid market config", zap.Error(err))
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		// Create
		monitor := middleware.NewMonitor(logger, monitorFlags())
		telemetry := middleware.NewTelemetry(logger)

		simulator := market.NewSimulator(logger, marketCfg)
		books := book.NewSynthesizer(logger, cfg.BookConfig())
		ledger := portfolio.NewLedger(logger)
		ledger.SetBalances(cfg.Balances())

		executor := exec.NewSimulator(logger, cfg.ExecutionConfig(), cfg.RiskConfig(),
			simulator, books, ledger)

		// Initialize
		unsubscribe := simulator.Subscribe(telemetry.WithUpdate(monitor.WithUpdate(func(u market.Update) {
			books.OnUpdate(u)
			ledger.OnUpdate(u)
			if u.Tick == nil {
				// Structural updates give the equity curve a bounded cadence.
				ledger.AppendEquityPoint(ledger.TotalUsd())
			}
		})))
		defer unsubscribe()
		defer telemetry.PrintStatistics()

		addr := cfg.ListenAddr()
		if listenAddr != "" {
			addr = listenAddr
		}

		server := feed.NewServer(logger, simulator, books, executor, ledger)
		return server.Run(ctx, addr)
	},
}

func monitorFlags() middleware.MonitorFlags {
	if debug {
		return middleware.MonitorAll
	}
	return middleware.MonitorNone
}
