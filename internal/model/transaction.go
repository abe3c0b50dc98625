package model

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
)

// RawTransaction is one account transaction record as returned by an
// Etherscan-style API. All numeric fields arrive as decimal strings.
type RawTransaction struct {
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	IsError     string `json:"isError"`

	// Internal marks records from the internal-transfer listing. Set by the
	// fetcher, not part of the wire shape.
	Internal bool `json:"-"`
}

// Transaction is the normalized, immutable transfer record the analyzers
// operate on. Value is wei; To is empty for contract creation.
type Transaction struct {
	Hash      string
	From      string
	To        string
	Value     *big.Int
	Timestamp int64
	Internal  bool
}

// MalformedRecordError reports a raw record that failed normalization. The
// record is dropped; analysis continues.
type MalformedRecordError struct {
	Hash   string
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed transaction record %s: %s: %s", e.Hash, e.Field, e.Reason)
}

// Normalize converts a raw API record into a Transaction. From must be a
// valid address; To may be empty (contract creation) but must be valid when
// present; Value must be a non-negative integer; TimeStamp must parse.
func Normalize(raw RawTransaction) (Transaction, error) {
	from, err := NormalizeAddress(raw.From)
	if err != nil {
		return Transaction{}, &MalformedRecordError{Hash: raw.Hash, Field: "from", Reason: raw.From}
	}

	to := ""
	if raw.To != "" {
		to, err = NormalizeAddress(raw.To)
		if err != nil {
			return Transaction{}, &MalformedRecordError{Hash: raw.Hash, Field: "to", Reason: raw.To}
		}
	}

	value, ok := new(big.Int).SetString(raw.Value, 10)
	if !ok || value.Sign() < 0 {
		return Transaction{}, &MalformedRecordError{Hash: raw.Hash, Field: "value", Reason: raw.Value}
	}

	ts, err := strconv.ParseInt(raw.TimeStamp, 10, 64)
	if err != nil {
		return Transaction{}, &MalformedRecordError{Hash: raw.Hash, Field: "timeStamp", Reason: raw.TimeStamp}
	}

	return Transaction{
		Hash:      raw.Hash,
		From:      from,
		To:        to,
		Value:     value,
		Timestamp: ts,
		Internal:  raw.Internal,
	}, nil
}

// SortChronological orders transactions by timestamp ascending, hash as the
// tie-break so identical inputs always produce identical output.
func SortChronological(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Timestamp != txs[j].Timestamp {
			return txs[i].Timestamp < txs[j].Timestamp
		}
		return txs[i].Hash < txs[j].Hash
	})
}
