// Package cluster implements the address relationship clustering engine:
// forward clustering (multi-sender deposit funnels into exchanges) and
// backward clustering (exchange funding-source aggregation). The engine is
// a pure computation over fetched data; retries and I/O live with its
// collaborators.
package cluster

import (
	"context"
	"math/big"

	"go.uber.org/zap"

	"clusterScope/internal/model"
	"clusterScope/internal/registry"
)

// TxFetcher fetches the union of normal and internal transfer records for
// an address. Implementations own their retry policy; a terminal failure
// is reported as *model.FetchError.
type TxFetcher interface {
	FetchTransactions(ctx context.Context, address string) ([]model.RawTransaction, error)
}

// ContractChecker reports whether an address has deployed code. Failures
// are reported as *model.LookupError and treated as "unknown" by the
// engine.
type ContractChecker interface {
	IsContract(ctx context.Context, address string) (bool, error)
}

// Thresholds are the operator-tunable activity ceilings above which a
// candidate deposit address is considered service-like and excluded.
type Thresholds struct {
	MaxTxCount       int
	MaxUniqueSenders int
}

// DefaultThresholds mirrors the limits the tool has historically run with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxTxCount:       10_000,
		MaxUniqueSenders: 1000,
	}
}

// ClusterMember is one distinct sender into a deposit address, with its
// aggregate contribution to that deposit address only.
type ClusterMember struct {
	Sender    string
	TxCount   int
	TotalSent *big.Int
}

// Cluster is a deposit address confirmed as a multi-sender funnel into a
// known exchange. Size is always >= 2 and equals len(Members); member
// order is first appearance as a sender in the deposit's transaction list.
type Cluster struct {
	DepositAddress string
	Exchange       registry.Entry
	Members        []ClusterMember
	Size           int
}

// FundingSource aggregates a target address's inflows from one exchange
// address. Transactions are chronological; FirstSeen <= LastSeen.
type FundingSource struct {
	Exchange      registry.Entry
	TxCount       int
	TotalReceived *big.Int
	FirstSeen     int64
	LastSeen      int64
	Transactions  []model.Transaction
}

// NormalizeRecords converts raw records into Transactions, dropping
// malformed ones with a warning.
func NormalizeRecords(raws []model.RawTransaction, logger *zap.Logger) []model.Transaction {
	if logger == nil {
		logger = zap.NewNop()
	}
	txs := make([]model.Transaction, 0, len(raws))
	for _, raw := range raws {
		tx, err := model.Normalize(raw)
		if err != nil {
			logger.Warn("drop malformed record", zap.Error(err))
			continue
		}
		txs = append(txs, tx)
	}
	return txs
}
