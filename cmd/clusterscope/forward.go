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
	"clusterScope/internal/chain"
	"clusterScope/internal/cluster"
	"clusterScope/internal/config"
	"clusterScope/internal/etherscan"
	"clusterScope/internal/model"
	"clusterScope/internal/registry"
	"clusterScope/internal/report"
)

func runForward(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadForward(cfgFile, cmd.Flags())
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

	var checker cluster.ContractChecker = client
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
		checker = chainClient
	}

	logger.Info("forward start",
		zap.String("address", address),
		zap.Int("registry_size", reg.Len()),
		zap.Int("workers", cfg.Workers),
		zap.Int("max_tx", cfg.MaxTxCount),
		zap.Int("max_senders", cfg.MaxSenders),
	)
	start := time.Now()

	raws, err := fetcher.FetchTransactions(ctx, address)
	if err != nil {
		return fmt.Errorf("fetch target transactions: %w", err)
	}
	txs := cluster.NormalizeRecords(raws, logger)
	model.SortChronological(txs)
	logger.Info("transactions fetched", zap.String("address", address), zap.Int("count", len(txs)))

	analyzer := cluster.NewForward(reg, cluster.Thresholds{
		MaxTxCount:       cfg.MaxTxCount,
		MaxUniqueSenders: cfg.MaxSenders,
	}, fetcher, checker, cfg.Workers, logger)

	clusters, err := analyzer.Run(ctx, address, txs)
	if err != nil {
		return err
	}

	report.Clusters(os.Stdout, clusters)

	logger.Info("forward complete",
		zap.Int("clusters", len(clusters)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func loadRegistry(ctx context.Context, csvPath, pgDSN string, logger *zap.Logger) (*registry.Registry, error) {
	var (
		entries []registry.Entry
		err     error
	)
	switch {
	case csvPath != "":
		entries, err = registry.LoadCSV(csvPath, logger)
	case pgDSN != "":
		entries, err = registry.LoadPostgres(ctx, pgDSN, logger)
	default:
		return nil, fmt.Errorf("either --registry or --pg-dsn is required")
	}
	if err != nil {
		return nil, err
	}

	reg := registry.Build(entries)
	if reg.Len() == 0 {
		return nil, fmt.Errorf("no exchange addresses loaded")
	}
	logger.Info("registry loaded", zap.Int("addresses", reg.Len()))
	return reg, nil
}
