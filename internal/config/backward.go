package config

import (
	"time"

	"github.com/spf13/pflag"
)

// BackwardConfig holds configuration for backward clustering.
type BackwardConfig struct {
	Address      string
	EtherscanURL string
	APIKey       string
	Registry     string
	PGDSN        string
	CacheDir     string
	PageSize     int
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadBackward merges config file, environment variables, and flags into
// BackwardConfig.
func LoadBackward(cfgFile string, flags *pflag.FlagSet) (BackwardConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return BackwardConfig{}, err
	}

	cfg := BackwardConfig{
		Address:      v.GetString("address"),
		EtherscanURL: v.GetString("etherscan-url"),
		APIKey:       v.GetString("api-key"),
		Registry:     v.GetString("registry"),
		PGDSN:        v.GetString("pg-dsn"),
		CacheDir:     v.GetString("cache-dir"),
		PageSize:     v.GetInt("page-size"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}
