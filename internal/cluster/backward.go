package cluster

import (
	"math/big"
	"sort"

	"clusterScope/internal/model"
	"clusterScope/internal/registry"
)

// RunBackward aggregates target's inflows that originate from registered
// exchange addresses into per-exchange funding sources, largest first.
//
// Grouping is per exchange address, not per label: one exchange may run
// several labeled hot wallets that must not be conflated. Ordering is by
// total received descending, address ascending on ties, so identical
// inputs always yield identical output.
func RunBackward(target string, txs []model.Transaction, reg *registry.Registry) []FundingSource {
	groups := make(map[string]*FundingSource)

	for _, tx := range txs {
		if tx.To != target {
			continue
		}
		entry, ok := reg.Lookup(tx.From)
		if !ok {
			continue
		}

		source, ok := groups[entry.Address]
		if !ok {
			source = &FundingSource{
				Exchange:      entry,
				TotalReceived: new(big.Int),
				FirstSeen:     tx.Timestamp,
				LastSeen:      tx.Timestamp,
			}
			groups[entry.Address] = source
		}

		source.TxCount++
		source.TotalReceived.Add(source.TotalReceived, tx.Value)
		if tx.Timestamp < source.FirstSeen {
			source.FirstSeen = tx.Timestamp
		}
		if tx.Timestamp > source.LastSeen {
			source.LastSeen = tx.Timestamp
		}
		source.Transactions = append(source.Transactions, tx)
	}

	out := make([]FundingSource, 0, len(groups))
	for _, source := range groups {
		model.SortChronological(source.Transactions)
		out = append(out, *source)
	}

	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].TotalReceived.Cmp(out[j].TotalReceived); cmp != 0 {
			return cmp > 0
		}
		return out[i].Exchange.Address < out[j].Exchange.Address
	})

	return out
}
