package report

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"clusterScope/internal/cluster"
	"clusterScope/internal/registry"
)

func TestFormatEth(t *testing.T) {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, "1.5000", FormatEth(wei))
	assert.Equal(t, "0.0000", FormatEth(big.NewInt(0)))
	assert.Equal(t, "0.0000", FormatEth(nil))
}

func TestActivityBar(t *testing.T) {
	empty := ActivityBar(nil, 12)
	assert.Len(t, []rune(empty), 16)
	assert.NotContains(t, empty, "■")

	single := ActivityBar([]int64{100}, 12)
	assert.Contains(t, single, "■")

	spread := ActivityBar([]int64{0, 50, 1200}, 12)
	assert.Contains(t, spread, "■")
	assert.Len(t, []rune(spread), 16)
}

func TestClustersEmpty(t *testing.T) {
	var buf bytes.Buffer
	Clusters(&buf, nil)
	assert.Contains(t, buf.String(), "No deposit clusters found")
}

func TestClustersOutput(t *testing.T) {
	var buf bytes.Buffer
	Clusters(&buf, []cluster.Cluster{
		{
			DepositAddress: "0x0000000000000000000000000000000000000002",
			Exchange:       registry.Entry{Address: "0x0000000000000000000000000000000000000005", Label: "Binance"},
			Members: []cluster.ClusterMember{
				{Sender: "0x0000000000000000000000000000000000000001", TxCount: 2, TotalSent: big.NewInt(250)},
				{Sender: "0x0000000000000000000000000000000000000003", TxCount: 1, TotalSent: big.NewInt(100)},
			},
			Size: 2,
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Cluster #1 (size: 2)")
	assert.Contains(t, out, "Binance")
	assert.Contains(t, out, "0x0000000000000000000000000000000000000002")
}

func TestFundingSourcesOutput(t *testing.T) {
	var buf bytes.Buffer
	FundingSources(&buf, []cluster.FundingSource{
		{
			Exchange:      registry.Entry{Address: "0x0000000000000000000000000000000000000005", Label: "Kraken"},
			TxCount:       2,
			TotalReceived: big.NewInt(2_000_000_000_000_000_000),
			FirstSeen:     1700000000,
			LastSeen:      1700086400,
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Kraken")
	assert.Contains(t, out, "Transactions: 2")
	assert.Contains(t, out, "Total amount: 2.0000 ETH")
	assert.Contains(t, out, "Time span:    1 day(s)")
}

func TestFundingSourcesEmpty(t *testing.T) {
	var buf bytes.Buffer
	FundingSources(&buf, nil)
	assert.Contains(t, buf.String(), "No funding sources")
}
