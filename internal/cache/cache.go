// Package cache persists raw API responses on disk so repeated analyses of
// the same addresses do not re-hit the explorer API.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"clusterScope/internal/model"
)

// Store is a per-address file cache of raw transaction lists. A Store with
// an empty dir is disabled: loads always miss, saves are no-ops.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Enabled reports whether the store persists anything.
func (s *Store) Enabled() bool {
	return s != nil && s.dir != ""
}

// cacheRecord is the on-disk shape of one transaction record. It carries
// the fetcher-set internal flag, which RawTransaction keeps out of its wire
// shape, so a cache hit returns records identical to a fresh fetch.
type cacheRecord struct {
	model.RawTransaction
	Internal bool `json:"internal"`
}

// Load returns the cached transaction list for address, if present.
func (s *Store) Load(address string) ([]model.RawTransaction, bool, error) {
	if !s.Enabled() {
		return nil, false, nil
	}

	data, err := os.ReadFile(s.path(address))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	var stored []cacheRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, false, fmt.Errorf("parse cache entry: %w", err)
	}

	records := make([]model.RawTransaction, len(stored))
	for i, rec := range stored {
		records[i] = rec.RawTransaction
		records[i].Internal = rec.Internal
	}
	return records, true, nil
}

// Save writes the transaction list for address atomically.
func (s *Store) Save(address string, records []model.RawTransaction) error {
	if !s.Enabled() {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	stored := make([]cacheRecord, len(records))
	for i, rec := range records {
		stored[i] = cacheRecord{RawTransaction: rec, Internal: rec.Internal}
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	path := s.path(address)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write cache tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename cache entry: %w", err)
	}

	return nil
}

func (s *Store) path(address string) string {
	return filepath.Join(s.dir, strings.ToLower(address)+".json")
}

// Fetcher matches the transaction-fetch collaborator contract.
type Fetcher interface {
	FetchTransactions(ctx context.Context, address string) ([]model.RawTransaction, error)
}

// CachedFetcher consults the store before delegating to the wrapped fetcher
// and saves fresh results on the way out.
type CachedFetcher struct {
	inner  Fetcher
	store  *Store
	logger *zap.Logger
}

// WrapFetcher wraps inner with the store. With a disabled store the wrapper
// is pass-through.
func WrapFetcher(inner Fetcher, store *Store, logger *zap.Logger) *CachedFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFetcher{inner: inner, store: store, logger: logger}
}

// FetchTransactions implements Fetcher.
func (f *CachedFetcher) FetchTransactions(ctx context.Context, address string) ([]model.RawTransaction, error) {
	records, hit, err := f.store.Load(address)
	if err != nil {
		f.logger.Warn("cache load failed", zap.String("address", address), zap.Error(err))
	}
	if hit {
		return records, nil
	}

	records, err = f.inner.FetchTransactions(ctx, address)
	if err != nil {
		return nil, err
	}

	if err := f.store.Save(address, records); err != nil {
		f.logger.Warn("cache save failed", zap.String("address", address), zap.Error(err))
	}
	return records, nil
}
