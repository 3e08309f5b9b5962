package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kvctl.io/kvctl/internal/config"
	"kvctl.io/kvctl/internal/logging"
	"kvctl.io/kvctl/internal/metrics"
	"kvctl.io/kvctl/sdk"
)

var (
	// Version information (set at build time via ldflags)
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// options holds the global flags.
type options struct {
	configPath  string
	addr        string
	timeout     time.Duration
	output      string
	logLevel    string
	dev         bool
	metricsFile string
}

// app is the state shared by one CLI invocation.
type app struct {
	opts     options
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	client   *sdk.Client
}

// Execute runs the CLI and prints the normalized message of any failure.
func Execute(ctx context.Context) error {
	a := &app{}
	root := a.newRootCmd()

	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", sdk.Message(err))
	}
	return err
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kvctl",
		Short: "kvctl - command line client for the Kvrocks controller",
		Long: `kvctl manages namespaces, clusters, shards and nodes through the
Kvrocks controller REST API.

Settings are layered, lowest precedence first:
  - built-in defaults
  - a YAML file given by --config or KVCTL_CONFIG
  - KVCTL_ environment variables (KVCTL_ADDR, KVCTL_TIMEOUT, ...)
  - command-line flags`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "Path to a YAML configuration file")
	flags.StringVar(&a.opts.addr, "addr", "", "Controller address (default http://127.0.0.1:9379)")
	flags.DurationVar(&a.opts.timeout, "timeout", 0, "Timeout for each API call (default 30s)")
	flags.StringVarP(&a.opts.output, "output", "o", "", "Output format: table, json or yaml")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVar(&a.opts.dev, "dev", false, "Enable development logging (console, debug level)")
	flags.StringVar(&a.opts.metricsFile, "metrics-file", "", "Write call metrics in Prometheus text format to this file")

	root.AddCommand(
		a.newNamespaceCmd(),
		a.newClusterCmd(),
		a.newShardCmd(),
		a.newNodeCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger and API client.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = a.opts.addr
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.opts.timeout
	}
	if flags.Changed("output") {
		cfg.Output = a.opts.output
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.opts.logLevel
	}
	if a.opts.dev {
		cfg.LogLevel = "debug"
		cfg.LogFormat = string(logging.FormatConsole)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := initLogger(cfg, a.opts.dev)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	a.registry = prometheus.NewRegistry()
	clientMetrics, err := metrics.NewClient(a.registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	a.client, err = sdk.NewClient(sdk.ClientConfig{
		BaseURL: cfg.Addr,
		Timeout: cfg.Timeout,
		Logger:  logger,
		Metrics: clientMetrics,
	})
	if err != nil {
		return err
	}

	logger.Debug("Configuration loaded",
		zap.String("addr", cfg.Addr),
		zap.Duration("timeout", cfg.Timeout),
		zap.String("output", cfg.Output),
		zap.String("command", cmd.CommandPath()))

	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	return nil
}

// close writes the metrics file, if requested, and flushes the logger.
func (a *app) close() {
	if a.registry != nil && a.opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(a.opts.metricsFile, a.registry); err != nil && a.logger != nil {
			a.logger.Warn("Failed to write metrics file",
				zap.String("path", a.opts.metricsFile),
				zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func initLogger(cfg *config.Config, devMode bool) (*zap.Logger, error) {
	logCfg := cfg.LoggingConfig()
	if devMode {
		// Development mode: show callers too
		logCfg.DisableCaller = false
	}
	return logging.NewLogger(logCfg)
}

// printer returns the output writer for cmd in the configured format.
func (a *app) printer(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), format: a.cfg.Output}
}

// versionString returns formatted version information
func versionString() string {
	return fmt.Sprintf("kvctl %s (commit: %s, built: %s)",
		Version, Commit, BuildDate)
}
