package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "clusterscope",
		Short:        "Ethereum address relationship clustering",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	forwardCmd := &cobra.Command{
		Use:   "forward",
		Short: "Discover deposit-address funnels (user -> deposit -> exchange)",
		RunE:  runForward,
	}

	addCommonFlags(forwardCmd)
	forwardCmd.Flags().String("rpc", "", "Ethereum RPC URL for contract checks (falls back to the explorer API)")
	forwardCmd.Flags().Int("max-tx", 10000, "exclude candidates with more transactions than this")
	forwardCmd.Flags().Int("max-senders", 1000, "exclude candidates with more unique senders than this")
	forwardCmd.Flags().Int("workers", 4, "parallel candidate fetches")

	root.AddCommand(forwardCmd)

	backwardCmd := &cobra.Command{
		Use:   "backward",
		Short: "Aggregate exchange funding sources for a target address",
		RunE:  runBackward,
	}

	addCommonFlags(backwardCmd)

	root.AddCommand(backwardCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("address", "", "target ethereum address")
	cmd.Flags().String("etherscan-url", "https://api.etherscan.io/api", "block explorer API URL")
	cmd.Flags().String("api-key", "", "block explorer API key")
	cmd.Flags().String("registry", "", "exchange registry CSV path")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for the exchange registry")
	cmd.Flags().String("cache-dir", "", "directory for cached API responses (empty disables)")
	cmd.Flags().Int("page-size", 1000, "results per API page")
	cmd.Flags().Int("max-retries", 3, "maximum API retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial API retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
