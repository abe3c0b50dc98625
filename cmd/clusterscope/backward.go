package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clusterScope/internal/cache"
	"clusterScope/internal/cluster"
	"clusterScope/internal/config"
	"clusterScope/internal/etherscan"
	"clusterScope/internal/model"
	"clusterScope/internal/report"
)

func runBackward(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBackward(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	address, err := model.NormalizeAddress(cfg.Address)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := loadRegistry(ctx, cfg.Registry, cfg.PGDSN, logger)
	if err != nil {
		return err
	}

	client := etherscan.NewClient(etherscan.Config{
		BaseURL:      cfg.EtherscanURL,
		APIKey:       cfg.APIKey,
		PageSize:     cfg.PageSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	fetcher := cache.WrapFetcher(client, cache.NewStore(cfg.CacheDir), logger)

	logger.Info("backward start",
		zap.String("address", address),
		zap.Int("registry_size", reg.Len()),
	)
	start := time.Now()

	raws, err := fetcher.FetchTransactions(ctx, address)
	if err != nil {
		return fmt.Errorf("fetch target transactions: %w", err)
	}
	txs := cluster.NormalizeRecords(raws, logger)
	model.SortChronological(txs)
	logger.Info("transactions fetched", zap.String("address", address), zap.Int("count", len(txs)))

	sources := cluster.RunBackward(address, txs, reg)

	report.FundingSources(os.Stdout, sources)

	logger.Info("backward complete",
		zap.Int("funding_sources", len(sources)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
