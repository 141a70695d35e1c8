package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/antoinelucasfra/curator/internal/config"
	"github.com/antoinelucasfra/curator/internal/describe"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:           "curator",
	Short:         "Maintain a curated link catalog stored as a flat text file",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config and initializes structured logging from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	return cfg, nil
}

func newFetcher(cfg config.Config) *describe.HTTPFetcher {
	return describe.NewHTTPFetcher(
		cfg.Fetch.ParsedTimeout(15*time.Second),
		int64(cfg.Fetch.MaxBodySize),
		cfg.Fetch.UserAgent,
		cfg.Fetch.ParsedDelay(),
	)
}
