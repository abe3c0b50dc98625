package model

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// InvalidAddressError reports a target address that fails format validation.
type InvalidAddressError struct {
	Input string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid ethereum address: %q", e.Input)
}

// NormalizeAddress validates input as a 0x-prefixed 20-byte hex address and
// returns its canonical lowercase form.
func NormalizeAddress(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		return "", &InvalidAddressError{Input: input}
	}
	if !common.IsHexAddress(trimmed) {
		return "", &InvalidAddressError{Input: input}
	}
	return strings.ToLower(common.HexToAddress(trimmed).Hex()), nil
}

// IsValidAddress reports whether input parses as an ethereum address.
func IsValidAddress(input string) bool {
	_, err := NormalizeAddress(input)
	return err == nil
}
