package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ForwardConfig holds configuration for forward clustering.
type ForwardConfig struct {
	Address      string
	EtherscanURL string
	APIKey       string
	RPCURL       string
	Registry     string
	PGDSN        string
	CacheDir     string
	PageSize     int
	MaxRetries   int
	RetryBackoff time.Duration
	MaxTxCount   int
	MaxSenders   int
	Workers      int
	LogLevel     string
}

// LoadForward merges config file, environment variables, and flags into
// ForwardConfig.
func LoadForward(cfgFile string, flags *pflag.FlagSet) (ForwardConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ForwardConfig{}, err
	}

	cfg := ForwardConfig{
		Address:      v.GetString("address"),
		EtherscanURL: v.GetString("etherscan-url"),
		APIKey:       v.GetString("api-key"),
		RPCURL:       v.GetString("rpc"),
		Registry:     v.GetString("registry"),
		PGDSN:        v.GetString("pg-dsn"),
		CacheDir:     v.GetString("cache-dir"),
		PageSize:     v.GetInt("page-size"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		MaxTxCount:   v.GetInt("max-tx"),
		MaxSenders:   v.GetInt("max-senders"),
		Workers:      v.GetInt("workers"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("CLUSTERSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("etherscan-url", "https://api.etherscan.io/api")
	v.SetDefault("page-size", 1000)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("max-tx", 10000)
	v.SetDefault("max-senders", 1000)
	v.SetDefault("workers", 4)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}
