package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address is a lowercase 0x-prefixed hex account address. Ledger rows and
// indexer queries key on this form.
type Address string

// ParseAddress validates a 20-byte hex address in any casing and returns its
// canonical lowercase form.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return "", fmt.Errorf("invalid address %q: missing 0x prefix", s)
	}
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("invalid address %q", s)
	}
	return Address(strings.ToLower(common.HexToAddress(s).Hex())), nil
}

// AddressFrom converts a go-ethereum address.
func AddressFrom(a common.Address) Address {
	return Address(strings.ToLower(a.Hex()))
}

func (a Address) String() string {
	return string(a)
}
