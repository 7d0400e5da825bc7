package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"scoperoot-hq/scoperoot/pkg/audit"
	"scoperoot-hq/scoperoot/pkg/cli"
	"scoperoot-hq/scoperoot/pkg/config"
	"scoperoot-hq/scoperoot/pkg/policy"
	"scoperoot-hq/scoperoot/pkg/server"
	"scoperoot-hq/scoperoot/pkg/share"
	"scoperoot-hq/scoperoot/pkg/telemetry/logging"
	"scoperoot-hq/scoperoot/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	root          string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the ScopeRoot server",
	Long: `Start the ScopeRoot server with the specified configuration.

The server exposes the shared root over the streamable MCP endpoint with
the list_files and read_text tools. Every file operation is checked against
the allow file first.

Examples:
  # Serve the current directory with defaults
  scoperoot run

  # Serve a specific directory
  scoperoot run --root /srv/share

  # Start with custom config
  scoperoot run --config /etc/scoperoot/config.yaml

  # Validate config without starting the server
  scoperoot run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVarP(&runFlags.root, "root", "r", "", "override shared root directory")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("ScopeRoot v%s\n", Version)
	fmt.Printf("Sharing %s\n", cfg.Share.Root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	var collector *metrics.Collector
	if *cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics, nil)
	}

	// Audit trail
	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		store, err := audit.NewSQLiteStore(&audit.SQLiteConfig{
			Path:         cfg.Audit.Path,
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			WALMode:      true,
			BusyTimeout:  5 * time.Second,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		defer store.Close()

		recorder = audit.NewRecorder(store, nil, logger)
		defer recorder.Close()

		pruner := audit.NewPruner(store, &audit.RetentionConfig{
			RetentionDays: cfg.Audit.RetentionDays,
			MaxRecords:    cfg.Audit.MaxRecords,
			PruneSchedule: cfg.Audit.PruneSchedule,
		}, logger)
		if err := pruner.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
		}

		fmt.Printf("✓ Audit trail enabled (%s)\n", cfg.Audit.Path)
	}

	// Policy engine
	allowPath := filepath.Join(cfg.Share.Root, cfg.Share.AllowFile)
	store := policy.NewStore(policy.NewLoader(allowPath, logger), logger)
	if collector != nil {
		store.OnReload(collector.RecordReload)
	}
	if outcome, err := store.Reload(); err != nil {
		slog.Warn("initial policy load failed, serving default-deny", "error", err)
	} else {
		slog.Info("policy loaded",
			"allow_file", allowPath,
			"outcome", outcome.String(),
			"patterns", store.Current().Len(),
		)
	}

	gate, err := policy.NewGate(cfg.Share.Root, store, logger)
	if err != nil {
		return cli.NewConfigError("share.root", err.Error())
	}
	gate.OnDecision(func(d policy.Decision, op policy.Operation, elapsed time.Duration) {
		if collector != nil {
			collector.RecordEvaluation(d, op, elapsed)
		}
		if recorder != nil {
			recorder.Record("", d, op)
		}
	})

	fmt.Printf("✓ Policy loaded (%d patterns)\n", store.Current().Len())

	// Hot reload watcher
	if *cfg.Policy.Watch {
		watcher, err := policy.NewWatcher(store, &policy.WatcherConfig{
			DebounceInterval: cfg.Policy.DebounceInterval,
		}, logger)
		if err != nil {
			slog.Warn("failed to create policy watcher, relying on per-request checks", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					slog.Error("policy watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	service := share.NewService(gate, cfg.Share.MaxReadBytes, logger)
	srv := server.NewServer(&cfg.Server, service, collector, logger)

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ MCP endpoint: http://%s/mcp\n", cfg.Server.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(cli.SetupSignalHandler()); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// loadConfig loads the configuration file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.root != "" {
		cfg.Share.Root = runFlags.root
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
		cfg.Telemetry.Logging.Format = "text"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}

	return cfg, nil
}
