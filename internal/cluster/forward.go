package cluster

import (
	"context"
	"errors"
	"math/big"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"clusterScope/internal/model"
	"clusterScope/internal/registry"
)

// Forward discovers deposit-address funnels: candidate addresses the user
// has sent to, which receive from two or more distinct senders and forward
// on to a registered exchange.
type Forward struct {
	reg        *registry.Registry
	thresholds Thresholds
	fetcher    TxFetcher
	checker    ContractChecker
	workers    int
	logger     *zap.Logger
}

// NewForward builds a forward analyzer. workers bounds the parallel
// candidate fetches; values below 1 mean sequential.
func NewForward(reg *registry.Registry, thresholds Thresholds, fetcher TxFetcher, checker ContractChecker, workers int, logger *zap.Logger) *Forward {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forward{
		reg:        reg,
		thresholds: thresholds,
		fetcher:    fetcher,
		checker:    checker,
		workers:    workers,
		logger:     logger,
	}
}

// candidateResult carries one candidate's fetched data back to the ordered
// reduce step.
type candidateResult struct {
	address    string
	isContract bool
	records    []model.RawTransaction
	fetchErr   error
}

// Run analyzes userAddress's transactions and returns the discovered
// clusters in candidate discovery order. A per-candidate fetch failure
// skips that candidate only; the run fails only on context cancellation.
func (f *Forward) Run(ctx context.Context, userAddress string, txs []model.Transaction) ([]Cluster, error) {
	candidates := f.candidates(userAddress, txs)
	if len(candidates) == 0 {
		f.logger.Info("no candidate deposit addresses", zap.String("user", userAddress))
		return nil, nil
	}

	f.logger.Info("candidates discovered",
		zap.String("user", userAddress),
		zap.Int("count", len(candidates)),
	)

	results := make([]candidateResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, candidate := range candidates {
		i, candidate := i, candidate
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = f.inspect(gctx, candidate)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Ordered reduce: classification and cluster building follow candidate
	// discovery order regardless of fetch completion order.
	var clusters []Cluster
	for _, result := range results {
		if result.fetchErr != nil {
			f.logger.Warn("candidate skipped after fetch failure",
				zap.String("candidate", result.address),
				zap.Error(result.fetchErr),
			)
			continue
		}

		cluster, ok := f.buildCluster(result)
		if !ok {
			continue
		}
		f.logger.Info("cluster found",
			zap.String("deposit", cluster.DepositAddress),
			zap.String("exchange", cluster.Exchange.Address),
			zap.Int("size", cluster.Size),
		)
		clusters = append(clusters, cluster)
	}

	return clusters, nil
}

// candidates returns the user's distinct recipients in first-appearance
// order, excluding registered exchanges. Sending directly to an exchange is
// not a funnel.
func (f *Forward) candidates(userAddress string, txs []model.Transaction) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tx := range txs {
		if tx.From != userAddress || tx.To == "" {
			continue
		}
		if f.reg.Contains(tx.To) {
			continue
		}
		if _, ok := seen[tx.To]; ok {
			continue
		}
		seen[tx.To] = struct{}{}
		out = append(out, tx.To)
	}
	return out
}

// inspect gathers one candidate's contract status and transaction list. It
// never fails the run: lookup failures downgrade to "unknown" and fetch
// failures are recorded for the reduce step to skip.
func (f *Forward) inspect(ctx context.Context, candidate string) candidateResult {
	result := candidateResult{address: candidate}

	isContract, err := f.checker.IsContract(ctx, candidate)
	if err != nil {
		var lookupErr *model.LookupError
		if !errors.As(err, &lookupErr) {
			lookupErr = &model.LookupError{Address: candidate, Err: err}
		}
		f.logger.Warn("contract lookup failed, status unknown",
			zap.String("candidate", candidate),
			zap.Error(lookupErr),
		)
		isContract = false
	}
	result.isContract = isContract

	records, err := f.fetcher.FetchTransactions(ctx, candidate)
	if err != nil {
		result.fetchErr = err
		return result
	}
	result.records = records
	return result
}

// buildCluster applies the exclusion gate and the funnel rules to one
// candidate. Returns false when no cluster is emitted.
func (f *Forward) buildCluster(result candidateResult) (Cluster, bool) {
	deposit := result.address
	txs := NormalizeRecords(result.records, f.logger)
	model.SortChronological(txs)

	activity := model.Summarize(deposit, txs)
	if ShouldExclude(activity, result.isContract, f.reg, f.thresholds) {
		f.logger.Debug("candidate excluded",
			zap.String("candidate", deposit),
			zap.Bool("is_contract", result.isContract),
			zap.Int("tx_count", activity.TxCount),
			zap.Int("unique_senders", len(activity.UniqueSenders)),
		)
		return Cluster{}, false
	}

	// Distinct depositors in first-appearance order, exchanges and the
	// deposit address itself excluded.
	stats := make(map[string]*ClusterMember)
	var order []string
	for _, tx := range txs {
		if tx.To != deposit || tx.From == deposit || f.reg.Contains(tx.From) {
			continue
		}
		member, ok := stats[tx.From]
		if !ok {
			member = &ClusterMember{Sender: tx.From, TotalSent: new(big.Int)}
			stats[tx.From] = member
			order = append(order, tx.From)
		}
		member.TxCount++
		member.TotalSent.Add(member.TotalSent, tx.Value)
	}

	exchange, forwarded := f.forwardedExchange(deposit, txs)
	if !forwarded || len(order) < 2 {
		return Cluster{}, false
	}

	members := make([]ClusterMember, 0, len(order))
	for _, sender := range order {
		members = append(members, *stats[sender])
	}

	return Cluster{
		DepositAddress: deposit,
		Exchange:       exchange,
		Members:        members,
		Size:           len(members),
	}, true
}

// forwardedExchange returns the first registered exchange the deposit
// address has sent to, if any.
func (f *Forward) forwardedExchange(deposit string, txs []model.Transaction) (registry.Entry, bool) {
	for _, tx := range txs {
		if tx.From != deposit || tx.To == "" {
			continue
		}
		if entry, ok := f.reg.Lookup(tx.To); ok {
			return entry, true
		}
	}
	return registry.Entry{}, false
}
