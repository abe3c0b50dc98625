package model

import "math/big"

// ActivitySummary captures how busy an address is, derived on demand from
// its transaction list. Used to tell personal deposit funnels apart from
// service-like addresses.
type ActivitySummary struct {
	Address       string
	TxCount       int
	UniqueSenders map[string]struct{}
	TotalReceived *big.Int
}

// Summarize computes the activity summary of addr over txs.
func Summarize(addr string, txs []Transaction) ActivitySummary {
	summary := ActivitySummary{
		Address:       addr,
		TxCount:       len(txs),
		UniqueSenders: make(map[string]struct{}),
		TotalReceived: new(big.Int),
	}
	for _, tx := range txs {
		if tx.To != addr {
			continue
		}
		if tx.From != addr {
			summary.UniqueSenders[tx.From] = struct{}{}
		}
		summary.TotalReceived.Add(summary.TotalReceived, tx.Value)
	}
	return summary
}
