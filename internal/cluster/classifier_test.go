package cluster

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"clusterScope/internal/model"
	"clusterScope/internal/registry"
)

func testAddr(n int) string {
	return fmt.Sprintf("0x%040x", n)
}

func activityWith(addr string, txCount, uniqueSenders int) model.ActivitySummary {
	senders := make(map[string]struct{}, uniqueSenders)
	for i := 0; i < uniqueSenders; i++ {
		senders[testAddr(1000+i)] = struct{}{}
	}
	return model.ActivitySummary{
		Address:       addr,
		TxCount:       txCount,
		UniqueSenders: senders,
		TotalReceived: big.NewInt(0),
	}
}

func TestShouldExclude(t *testing.T) {
	exchange := testAddr(77)
	reg := registry.Build([]registry.Entry{{Address: exchange, Label: "Binance"}})
	thresholds := Thresholds{MaxTxCount: 100, MaxUniqueSenders: 20}

	cases := []struct {
		name       string
		activity   model.ActivitySummary
		isContract bool
		want       bool
	}{
		{"quiet personal address", activityWith(testAddr(1), 10, 3), false, false},
		{"non-exchange contract", activityWith(testAddr(1), 10, 3), true, true},
		{"exchange contract kept by contract rule", activityWith(exchange, 10, 3), true, false},
		{"over tx threshold", activityWith(testAddr(1), 101, 3), false, true},
		{"at tx threshold", activityWith(testAddr(1), 100, 3), false, false},
		{"over sender threshold", activityWith(testAddr(1), 10, 21), false, true},
		{"at sender threshold", activityWith(testAddr(1), 10, 20), false, false},
		{"exchange contract over threshold still excluded", activityWith(exchange, 101, 3), true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ShouldExclude(tc.activity, tc.isContract, reg, thresholds)
			assert.Equal(t, tc.want, got)
		})
	}
}

// Thresholds are operator-tunable, not constants: the same activity flips
// between kept and excluded as the ceilings move.
func TestShouldExcludeThresholdsAreParameters(t *testing.T) {
	reg := registry.Build(nil)
	activity := activityWith(testAddr(1), 500, 50)

	assert.True(t, ShouldExclude(activity, false, reg, Thresholds{MaxTxCount: 100, MaxUniqueSenders: 20}))
	assert.False(t, ShouldExclude(activity, false, reg, Thresholds{MaxTxCount: 1000, MaxUniqueSenders: 100}))
}
