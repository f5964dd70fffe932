package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"loan-advisor/config"
)

var rootCmd = &cobra.Command{
	Use:           "loan-advisor",
	Short:         "Loan default scoring and improvement advisor",
	Long:          "loan-advisor scores loan applications into APPROVE, REVIEW or REJECT bands and suggests concrete changes that lower the probability of default.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultConfigFile, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoreCmd)
}

// loadRuntime reads configuration and builds the logger from the persistent flags.
func loadRuntime(cmd *cobra.Command) (*config.Configuration, *zap.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")

	cfg, err := config.LoadConfiguration(path)
	if err != nil {
		return nil, nil, err
	}
	logger, err := config.NewLogger(cfg.Logging, level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
