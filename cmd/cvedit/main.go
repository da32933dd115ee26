// Package main provides the entry point for the cvedit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/damusix/cv.alonso.network/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:   "cvedit",
	Short: "CV editor with draft persistence",
	Long: "cvedit edits a CV as a script, a JSON document, or a stylesheet. Work in progress is " +
		"kept as per-mode drafts; applying validates the CV and commits it.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

var (
	configPath string
	storePath  string
	verbose    bool
)

// Resolved in setup before any command runs
var (
	settings config.Config
	logger   = zap.NewNop()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (or $"+config.EnvConfig+")")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Path to the state database (or $"+config.EnvStore+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	settings = cfg

	// The editor owns the terminal, so it only logs to a file.
	toFile := cmd.Name() == "edit"
	if logger, err = newLogger(cfg, toFile); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func newLogger(cfg config.Config, toFile bool) (*zap.Logger, error) {
	if toFile && cfg.LogFile == "" {
		return zap.NewNop(), nil
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if toFile {
		zcfg.OutputPaths = []string{cfg.LogFile}
		zcfg.ErrorOutputPaths = []string{cfg.LogFile}
	}
	return zcfg.Build()
}

// loadSettings merges, highest first: flags, environment, config file,
// built-in defaults.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config

	path := configPath
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	if env := os.Getenv(config.EnvStore); env != "" {
		cfg.StorePath = env
	}
	if cmd.Flags().Changed("store") {
		cfg.StorePath = storePath
	}
	if verbose {
		cfg.Verbose = true
	}

	merged := cfg.MergeWithDefaults(config.Config{StorePath: config.DefaultStorePath()})
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
