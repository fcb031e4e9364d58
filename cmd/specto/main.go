package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/spectolabs/specto/internal/common"
	"github.com/spectolabs/specto/internal/verify"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	baseURL      = flag.String("base-url", "", "Target application base URL (overrides config)")
	outputDir    = flag.String("output", "", "Artifact output directory (overrides config)")
	logLevel     = flag.String("log-level", "", "Log level (overrides config)")
	headed       = flag.Bool("headed", false, "Run the browser with a visible window")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	// Panic protection: deferred cleanup below the panic point runs first, so
	// no browser process is leaked before the crash report is written
	defer common.RecoverWithCrashFile()

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Specto version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> files -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner

	// Auto-discover config files if none specified; a bare invocation runs
	// the reference scenario on defaults alone
	if len(configFiles) == 0 {
		configFiles = common.DefaultConfigPaths()
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		// Use temporary logger for startup errors
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, *baseURL, *outputDir, *logLevel, *headed)

	// Crash reports land next to the run's other artifacts
	common.InstallCrashHandler(config.Output.Dir)

	logger := common.InitLogger(config)

	common.PrintBanner(common.LoadVersionFromFile())

	if err := config.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Configuration validation failed")
		os.Exit(1)
	}

	logger.Info().
		Strs("config_files", configFiles).
		Str("base_url", config.Scenario.BaseURL).
		Str("output_dir", config.Output.Dir).
		Str("log_level", config.Logging.Level).
		Msg("Configuration loaded")

	if logFilePath := common.GetLogFilePath(logger); logFilePath != "" {
		logger.Info().Str("log_file", logFilePath).Msg("File logging enabled")
	}

	// An interrupt cancels the run context; the runner's deferred session
	// cleanup still executes before the process exits
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Warn().Str("signal", sig.String()).Msg("Interrupt received, cancelling run")
		cancel()
	}()

	runner := verify.NewRunner(config, logger)
	if err := runner.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Verification failed")
		os.Exit(1)
	}
}
