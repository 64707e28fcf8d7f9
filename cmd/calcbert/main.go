// Package main contains the calcbert CLI commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/common"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/config"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/fusion"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "calcbert",
		Short: "Hybrid rule + ML bank-transaction categorizer",
		Long: `calcbert classifies free-text bank-transaction descriptions into spending
categories by fusing a deterministic rule engine with a learned text
classifier, and folds user corrections back into the model.`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/calcbert/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(predictCmd())
	rootCmd.AddCommand(feedbackCmd())
	rootCmd.AddCommand(retrainCmd())
	rootCmd.AddCommand(trainCmd())
	rootCmd.AddCommand(aliasesCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, errorStyle.Render(userErr.UserMessage))
			slog.Debug("Command failed", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(filepath.Join(home, ".config", "calcbert"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CALCBERT")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := common.SetupLogger(viper.GetString("logging.level"), viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func setDefaults() {
	dataDir := config.DefaultDataDir()

	viper.SetDefault("database.path", filepath.Join(dataDir, "feedback.db"))
	viper.SetDefault("data.base_dataset", filepath.Join(dataDir, "train.csv"))
	viper.SetDefault("data.alias_map", filepath.Join(dataDir, "maps.json"))
	viper.SetDefault("models.tfidf_dir", filepath.Join(dataDir, "models", "tfidf"))
	viper.SetDefault("models.bayes_dir", filepath.Join(dataDir, "models", "bayes"))
	viper.SetDefault("fusion.rule_threshold", fusion.DefaultRuleThreshold)
	viper.SetDefault("fusion.override_threshold", fusion.DefaultOverrideThreshold)
	viper.SetDefault("retrain.sync", true)
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:8501", "http://127.0.0.1:8501"})
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			slog.Info("calcbert version", "version", version)
		},
	}
}
