package main

import (
	"fmt"
	"os"

	"balanceboard/internal/gateway/config"
	"balanceboard/internal/observability"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

var (
	configPath string
	provider   string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "balance",
	Short: "balance - SWOT decision coach",
	Long: `balance walks a person through a decision: it turns a vague problem into
concrete options, asks one SWOT question at a time per option, simulates each
outcome and records the final choice.

Configuration comes from .env, an optional YAML file (--config) and the
environment, in that order.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if provider != "" {
			cfg.LLM.Provider = provider
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		logger, err = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Log.Level,
			Development: cfg.Log.Development,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (or set CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider override: gemini or fake")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
