package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/latbench/internal/bench"
	"github.com/wesleyorama2/latbench/internal/config"
	lhttp "github.com/wesleyorama2/latbench/internal/http"
	"github.com/wesleyorama2/latbench/internal/output"
	"github.com/wesleyorama2/latbench/internal/trace"
)

// stdoutPath writes the result file to stdout instead of a file
const stdoutPath = "-"

type runOptions struct {
	configFile string
	baseURL    string
	warmup     int
	rounds     int
	exclude    int
	mockedID   string
	backendID  string
	outputPath string
	format     string
	logLevel   string
	timeout    time.Duration
	insecure   bool
	noColor    bool
	quiet      bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the latency benchmark",
		Long: `Run measures every configured endpoint, mocked first and then against the
backend, and writes the results once every measurement has succeeded.

Without --config the built-in endpoint table is used:
  latbench run

With a configuration file and overrides:
  latbench run --config latbench.yaml --rounds 100 --exclude 10 --format json --output results.json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Configuration file (YAML or JSON)")
	flags.StringVar(&opts.baseURL, "base-url", "", "Base URL the endpoint paths are resolved against")
	flags.IntVar(&opts.warmup, "warmup", config.DefaultWarmupRounds, "Untimed warmup calls per endpoint and identity")
	flags.IntVar(&opts.rounds, "rounds", config.DefaultTestingRounds, "Timed calls per endpoint and identity")
	flags.IntVar(&opts.exclude, "exclude", config.DefaultExcludeMaxOutliers, "Slowest samples discarded before aggregation")
	flags.StringVar(&opts.mockedID, "mocked-id", "", "Client id sent for mocked calls")
	flags.StringVar(&opts.backendID, "backend-id", "", "Client id sent for backend calls")
	flags.StringVarP(&opts.outputPath, "output", "o", "", "Result file, - for stdout (default results.csv)")
	flags.StringVarP(&opts.format, "format", "f", "", "Result format: csv, json, yaml, text")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	flags.DurationVarP(&opts.timeout, "timeout", "t", config.DefaultTimeout, "Per-call timeout")
	flags.BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Print only the final status")

	return cmd
}

// loadConfig reads path, or returns the built-in configuration when path is
// empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// applyOverrides copies every flag the user set onto cfg.
func applyOverrides(cmd *cobra.Command, cfg *config.Config, opts *runOptions) {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = opts.baseURL
	}
	if flags.Changed("warmup") {
		cfg.WarmupRounds = opts.warmup
	}
	if flags.Changed("rounds") {
		cfg.TestingRounds = opts.rounds
	}
	if flags.Changed("exclude") {
		cfg.ExcludeMaxOutliers = opts.exclude
	}
	if flags.Changed("mocked-id") {
		cfg.Identities.Mocked = opts.mockedID
	}
	if flags.Changed("backend-id") {
		cfg.Identities.Backend = opts.backendID
	}
	if flags.Changed("output") {
		cfg.Output.Path = opts.outputPath
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("timeout") {
		cfg.Timeout = config.Duration(opts.timeout)
	}
	if flags.Changed("insecure") {
		cfg.InsecureSkipVerify = opts.insecure
	}
}

func runBenchmark(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	applyOverrides(cmd, cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	runCfg, err := cfg.RunConfig()
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Logging.Level, runID)
	if err != nil {
		return err
	}

	// stdout carries the result itself when writing to -
	progress := cmd.OutOrStdout()
	if cfg.Output.Path == stdoutPath {
		progress = cmd.ErrOrStderr()
	}
	console := output.NewConsole(output.ConsoleConfig{
		Writer:  progress,
		NoColor: opts.noColor,
		Quiet:   opts.quiet,
	})

	options := []bench.Option{
		bench.WithObserver(console),
		bench.WithLogger(logger),
	}
	if cfg.InsecureSkipVerify {
		options = append(options, bench.WithCallerFactory(insecureCallerFactory))
	}
	if tc, ok := cfg.TracerConfig(); ok {
		tracer, err := trace.New(tc)
		if err != nil {
			return err
		}
		options = append(options, bench.WithFollower(tracer))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("base_url", runCfg.BaseURL).
		Int("endpoints", len(runCfg.Endpoints)).
		Int("warmup", runCfg.WarmupRounds).
		Int("rounds", runCfg.TestingRounds).
		Int("exclude", runCfg.ExcludeMaxOutliers).
		Msg("starting run")

	started := time.Now()
	results, err := bench.NewOrchestrator(options...).Run(ctx, runCfg)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("run interrupted: %w", err)
		}
		console.Failure("Run failed, no results written: %v", err)
		return err
	}

	report := output.NewReport(runID, cfg.Name, runCfg, started, time.Now(), results)
	return saveReport(cmd, console, cfg.Output.Path, format, report)
}

func saveReport(cmd *cobra.Command, console *output.Console, path string, format output.OutputFormat, report *output.Report) error {
	if path == stdoutPath {
		return output.Write(cmd.OutOrStdout(), format, report)
	}

	console.Message("Saving results...")
	if err := output.WriteFile(path, format, report); err != nil {
		console.Failure("Failed to save results: %v", err)
		return err
	}
	console.Table(report.Results)
	console.Success("Results written to %s", path)
	return nil
}

func insecureCallerFactory(cfg bench.RunConfig, id bench.ClientIdentity) (bench.Caller, error) {
	return bench.NewHTTPCaller(cfg.ClientHeader, id, cfg.Timeout, lhttp.WithInsecureSkipVerify()), nil
}
