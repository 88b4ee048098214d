// Command tabprep prepares tabular CSV data for model training: categorical
// encoding, holiday distance features and model-based feature importance.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tabprep/pkg/config"
	"tabprep/pkg/logger"
	"tabprep/pkg/metrics"
)

// app carries what every subcommand needs once the root has set it up.
type app struct {
	configPath string
	flags      flagValues

	cfg     *config.Config
	log     logger.Logger
	metrics *metrics.Manager
	runID   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tabprep",
		Short:         "Prepare tabular data for tree models",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.flushMetrics(cmd.Context())
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file (default $TABPREP_CONFIG)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "text or json")
	pf.StringVar(&a.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")

	root.AddCommand(a.prepCmd(), a.importanceCmd(), a.holidaysCmd())
	return root
}

// setup loads the configuration, applies flag overrides and starts logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), a.configPath)
	if err != nil {
		return err
	}
	a.flags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	}); err != nil {
		return err
	}

	a.cfg = cfg
	a.runID = uuid.NewString()
	a.log = logger.Named("tabprep").With(logger.String("run_id", a.runID), logger.String("command", cmd.Name()))
	a.metrics = metrics.NewManager()
	a.log.Debug(cmd.Context(), "configuration loaded", logger.String("config", a.configPath))
	return nil
}

func (a *app) flushMetrics(ctx context.Context) error {
	if a.cfg == nil || a.cfg.MetricsFile == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		return err
	}
	a.log.Info(ctx, "metrics written", logger.String("path", a.cfg.MetricsFile))
	return nil
}
