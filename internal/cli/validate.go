package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/sidediff/pkg/config"
	"github.com/sdejongh/sidediff/pkg/logging"
	"github.com/sdejongh/sidediff/pkg/ratelimit"
	"github.com/sdejongh/sidediff/pkg/storage"
)

// exit terminates the process; replaced in tests
var exit = os.Exit

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyEngineFlags overrides config values with explicitly set command-line flags
func applyEngineFlags(cmd *cobra.Command, f *engineFlags, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("remote") {
		cfg.Remote.URL = f.Remote
	}
	if flags.Changed("format") {
		cfg.Output.Format = f.Format
	}
	if flags.Changed("tab-width") {
		cfg.Compare.TabWidth = f.TabWidth
	}
	if flags.Changed("drain-tails") {
		cfg.Compare.DrainTails = f.DrainTails
	}
	if flags.Changed("runes") && f.Runes {
		cfg.Compare.CharUnit = "rune"
	}
	if flags.Changed("bandwidth") {
		cfg.Remote.BandwidthLimit = f.Bandwidth
	}

	applyGlobalFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// applyGlobalFlags folds --quiet, --verbose and the logging flags into cfg
func applyGlobalFlags(cfg *config.Config) {
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
		cfg.Logging.Level = "error"
	}
	if globalFlags.Verbose {
		cfg.Logging.Level = "debug"
	}
	if globalFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = globalFlags.LogFile
	}
	if globalFlags.LogFormat != "" {
		cfg.Logging.Format = globalFlags.LogFormat
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}
}

// createLogger creates a logger based on configuration
func createLogger(cfg config.LoggingConfig) (logging.Logger, error) {
	if !cfg.Enabled {
		return logging.NewNullLogger(), nil
	}

	format := logging.ParseFormat(cfg.Format)
	level := logging.ParseLevel(cfg.Level)

	if cfg.File == "" {
		return logging.NewWriterLogger(os.Stderr, format, level), nil
	}

	logger, err := logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.File,
		Format:     format,
		Level:      level,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
	})
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// newRemote builds the fetcher for the counterpart host described by cfg
func newRemote(cfg config.RemoteConfig) (*storage.Remote, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("a shared secret is required for remote fetches (set remote.secret or %s)", config.SecretEnv)
	}

	rate, err := ratelimit.ParseRate(cfg.BandwidthLimit)
	if err != nil {
		return nil, err
	}

	return storage.NewRemote(storage.RemoteConfig{
		BaseURL:  cfg.URL,
		Secret:   []byte(cfg.Secret),
		Timeout:  cfg.Timeout,
		Limiter:  ratelimit.NewLimiter(rate),
		MaxBytes: cfg.MaxBytes,
	})
}

// requireDir checks that path exists and is a directory
func requireDir(path, what string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", what, path)
	}
	if err != nil {
		return fmt.Errorf("failed to access %s: %w", what, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %s", what, path)
	}
	return nil
}
