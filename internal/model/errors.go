package model

import "fmt"

// FetchError reports that the transaction fetch collaborator exhausted its
// retries for one address. The affected candidacy is skipped; the analysis
// as a whole continues.
type FetchError struct {
	Address string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch transactions for %s: %v", e.Address, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// LookupError reports a failed contract-detection lookup. The engine treats
// the contract status as unknown and falls back to activity thresholds.
type LookupError struct {
	Address string
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("contract lookup for %s: %v", e.Address, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
