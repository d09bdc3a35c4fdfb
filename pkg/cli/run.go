package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danyQe/codedash/internal/app"
	"github.com/danyQe/codedash/internal/cliconfig"
	"github.com/danyQe/codedash/pkg/api"
	"github.com/danyQe/codedash/pkg/bus"
	"github.com/danyQe/codedash/pkg/client"
	"github.com/danyQe/codedash/pkg/logging"
)

// logRingCapacity bounds the in-memory log records kept for the logs view.
const logRingCapacity = 500

var runFlagVals struct {
	section  string
	refresh  time.Duration
	shipLogs bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the dashboard runtime (foreground)",
	Long: `Start the dashboard runtime against the configured control plane and
keep it in the foreground. The runtime polls /health on the configured
refresh interval, records every call in the telemetry log and persists
history, stats and preferences across restarts.`,
	Example: `  # Run against a local control plane
  codedash run

  # Run against staging, landing on the git section
  codedash run --profile staging --section git

  # Run without touching disk
  codedash run --in-memory`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		return runDashboard(cfg)
	},
}

func initRunCmd() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlagVals.section, "section", "", "Section to land on (overrides the stored location)")
	runCmd.Flags().DurationVar(&runFlagVals.refresh, "refresh", 0, "Health poll interval (0 = use preferences, default 30s)")
	runCmd.Flags().BoolVar(&runFlagVals.shipLogs, "ship-logs", false, "Ship warn/error records to the control-plane logs endpoint")
}

func runDashboard(cfg *cliconfig.CLIConfig) error {
	ring := logging.NewRingHandler(logRingCapacity, logging.ParseLevel(cfg.LogLevel))

	var remote *logging.RemoteHandler
	if runFlagVals.shipLogs {
		remote = logging.NewRemoteHandler(cfg.ServerURL + api.RouteLogs)
		defer func() { _ = remote.Close() }()
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Ring:   ring,
		Remote: remote,
	})

	a, err := app.New(app.Config{
		ServerURL:  cfg.ServerURL,
		AssetURL:   cfg.AssetURL,
		DataDir:    cfg.DataDir,
		InMemory:   rootFlagVals.inMemory,
		HistoryCap: cfg.HistoryCap,
		Sections:   cfg.Sections,
		Logger:     log,
		LogRing:    ring,
	})
	if err != nil {
		return fmt.Errorf("failed to assemble runtime: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("shutdown flush failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.Bus.On(bus.EventConnectivityChanged, func(args ...any) {
		if len(args) > 0 {
			if online, ok := args[0].(bool); ok {
				log.Info("connectivity changed", "online", online)
			}
		}
	})

	a.Start(ctx)
	if runFlagVals.section != "" {
		a.Router.Navigate(ctx, runFlagVals.section)
	}

	go pollHealth(ctx, a, refreshInterval(a))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Info("shutting down", "signal", sig.String())
	cancel()
	return nil
}

// refreshInterval resolves the health poll interval: flag, then
// preferences, then 30s.
func refreshInterval(a *app.App) time.Duration {
	if runFlagVals.refresh > 0 {
		return runFlagVals.refresh
	}
	p := a.Preferences()
	if p.AutoRefresh && p.RefreshInterval > 0 {
		return time.Duration(p.RefreshInterval) * time.Millisecond
	}
	return 30 * time.Second
}

// pollHealth keeps the connectivity flag honest while the runtime idles.
func pollHealth(ctx context.Context, a *app.App, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Client.Request(ctx, "GET", api.RouteHealth, &client.Options{UserAction: "healthPoll"})
		}
	}
}
