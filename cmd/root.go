package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"glucorisk/config"
	"glucorisk/logger"
)

var rootCmd = &cobra.Command{
	Use:           "glucorisk",
	Short:         "Diabetes risk prediction: decision tree model vs medical guidelines",
	Long:          "glucorisk predicts diabetes risk from HbA1c, blood glucose and age with a trained decision tree and compares it with the official medical reference thresholds.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.yaml", "Path to the YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(flowCmd)
	rootCmd.AddCommand(historyCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
}
