package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/prospect-scorer/internal/config"
	"github.com/jonathan/prospect-scorer/internal/logger"
	"github.com/jonathan/prospect-scorer/internal/ranking"
	"github.com/jonathan/prospect-scorer/internal/scoring"
)

var rootCmd = &cobra.Command{
	Use:   "prospect_scorer",
	Short: "Score, rank and explain prospect candidates",
	Long: "prospect_scorer scores retrieved LinkedIn-style candidate snippets against a persona " +
		"derived from an ideal customer profile, ranks them and explains every score.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRuntime,
}

var (
	configPath string
	debugLogs  bool
	jsonLogs   bool
	verbose    bool
)

// Loaded by setupRuntime before any subcommand runs.
var (
	cfg *config.Config
	log *zap.Logger
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to config file (JSON or YAML)")
	flags.BoolVar(&debugLogs, "debug", false, "Enable debug logging")
	flags.BoolVar(&jsonLogs, "json", false, "Emit logs as JSON")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Print a human-readable summary to stderr")
}

// setupRuntime loads configuration, layers the global flags over it and builds the logger.
func setupRuntime(cmd *cobra.Command, _ []string) error {
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("debug") {
		loaded.Log.Debug = debugLogs
	}
	if cmd.Flags().Changed("json") {
		loaded.Log.JSON = jsonLogs
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logger.New(loaded.Log.JSON, loaded.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	cfg = loaded
	log = l
	return nil
}

// newService builds the scoring engine and ranking service from the loaded config.
func newService(metrics *ranking.Metrics) (*ranking.Service, error) {
	engine, err := scoring.NewEngine(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("failed to build scoring engine: %w", err)
	}
	opts := cfg.RankingOptions()
	opts.Logger = log
	opts.Metrics = metrics
	return ranking.NewService(engine, opts), nil
}
