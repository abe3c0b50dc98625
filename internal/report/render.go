// Package report renders analysis results for terminal output. Ordering is
// owned by the engine; this package only formats.
package report

import (
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/params"

	"clusterScope/internal/cluster"
)

const (
	maxClustersShown = 10
	maxMembersShown  = 10
	activitySlots    = 12
	separator        = "════════════════════════════════════════════════════════════"
	divider          = "────────────────────────────────────────"
)

// Clusters writes the forward-clustering result.
func Clusters(w io.Writer, clusters []cluster.Cluster) {
	if len(clusters) == 0 {
		fmt.Fprintln(w, "No deposit clusters found")
		return
	}

	fmt.Fprintf(w, "Found %d cluster(s)", len(clusters))
	if len(clusters) > maxClustersShown {
		fmt.Fprintf(w, " (showing top %d)", maxClustersShown)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, separator)

	shown := clusters
	if len(shown) > maxClustersShown {
		shown = shown[:maxClustersShown]
	}

	for i, c := range shown {
		fmt.Fprintf(w, "\nCluster #%d (size: %d)\n", i+1, c.Size)
		fmt.Fprintf(w, "Deposit:  %s\n", c.DepositAddress)
		fmt.Fprintf(w, "Exchange: %s (%s)\n", c.Exchange.Label, c.Exchange.Address)
		fmt.Fprintln(w, "\nRelated addresses (transactions | total ETH):")

		members := c.Members
		if len(members) > maxMembersShown {
			members = members[:maxMembersShown]
		}
		for j, member := range members {
			fmt.Fprintf(w, "  %d. %s | tx: %d | ETH: %s\n", j+1, member.Sender, member.TxCount, FormatEth(member.TotalSent))
		}
		if rest := len(c.Members) - len(members); rest > 0 {
			fmt.Fprintf(w, "  ... and %d more\n", rest)
		}
		fmt.Fprintln(w, divider)
	}
}

// FundingSources writes the backward-clustering result.
func FundingSources(w io.Writer, sources []cluster.FundingSource) {
	if len(sources) == 0 {
		fmt.Fprintln(w, "No funding sources from known exchange addresses found")
		return
	}

	fmt.Fprintln(w, "Funding sources:")
	fmt.Fprintln(w, separator)

	for i, source := range sources {
		fmt.Fprintf(w, "\n%d. %s (%s)\n", i+1, source.Exchange.Label, source.Exchange.Address)
		fmt.Fprintf(w, "   Transactions: %d\n", source.TxCount)
		fmt.Fprintf(w, "   First seen:   %s\n", formatDate(source.FirstSeen))
		fmt.Fprintf(w, "   Last seen:    %s\n", formatDate(source.LastSeen))
		fmt.Fprintf(w, "   Avg amount:   %s ETH\n", FormatEth(average(source.TotalReceived, source.TxCount)))
		fmt.Fprintf(w, "   Total amount: %s ETH\n", FormatEth(source.TotalReceived))
		fmt.Fprintf(w, "   Time span:    %d day(s)\n", daySpan(source.FirstSeen, source.LastSeen))

		timestamps := make([]int64, 0, len(source.Transactions))
		for _, tx := range source.Transactions {
			timestamps = append(timestamps, tx.Timestamp)
		}
		fmt.Fprintf(w, "   Activity:     %s\n", ActivityBar(timestamps, activitySlots))
	}
}

// FormatEth renders a wei amount as ETH with four decimals.
func FormatEth(wei *big.Int) string {
	if wei == nil {
		return "0.0000"
	}
	eth := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(params.Ether))
	return eth.Text('f', 4)
}

// ActivityBar buckets chronological timestamps into slots and marks the
// active ones, giving a coarse timeline of when the source was used.
func ActivityBar(timestamps []int64, slots int) string {
	if slots <= 0 {
		slots = activitySlots
	}
	if len(timestamps) == 0 {
		return "| " + strings.Repeat(" ", slots) + " |"
	}

	start := timestamps[0]
	end := timestamps[len(timestamps)-1]
	if start == end {
		return "| ■" + strings.Repeat(" ", slots-1) + " |"
	}

	bucketSize := float64(end-start) / float64(slots)
	buckets := make([]int, slots)
	for _, ts := range timestamps {
		idx := int(float64(ts-start) / bucketSize)
		if idx >= slots {
			idx = slots - 1
		}
		buckets[idx]++
	}

	var b strings.Builder
	b.WriteString("| ")
	for _, count := range buckets {
		if count > 0 {
			b.WriteString("■")
		} else {
			b.WriteString(" ")
		}
	}
	b.WriteString(" |")
	return b.String()
}

func average(total *big.Int, count int) *big.Int {
	if total == nil || count <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Quo(total, big.NewInt(int64(count)))
}

func daySpan(first, last int64) int64 {
	if last <= first {
		return 0
	}
	return (last - first) / int64(24*time.Hour/time.Second)
}

func formatDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}
