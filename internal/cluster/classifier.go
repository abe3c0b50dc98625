package cluster

import (
	"clusterScope/internal/model"
	"clusterScope/internal/registry"
)

// ShouldExclude decides whether a candidate deposit address is disqualified
// from clustering. Any one rule triggering excludes the address:
//   - a contract that is not a registered exchange is not a personal funnel
//   - activity above either threshold makes it service-like
//
// The rules apply only to candidate deposit addresses, never to the
// analyzed target itself. When the contract status is unknown (lookup
// failure) callers pass isContract=false so a transient failure cannot
// suppress valid clusters on its own.
func ShouldExclude(activity model.ActivitySummary, isContract bool, reg *registry.Registry, thresholds Thresholds) bool {
	if isContract && !reg.Contains(activity.Address) {
		return true
	}
	if thresholds.MaxTxCount > 0 && activity.TxCount > thresholds.MaxTxCount {
		return true
	}
	if thresholds.MaxUniqueSenders > 0 && len(activity.UniqueSenders) > thresholds.MaxUniqueSenders {
		return true
	}
	return false
}
