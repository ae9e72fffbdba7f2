package domain

import (
	"fmt"
	"strconv"
)

// ChainID identifies an EVM network (1 = mainnet, 5 = goerli, ...).
type ChainID int64

// Well-known chains used as defaults.
const (
	ChainMainnet ChainID = 1
	ChainGoerli  ChainID = 5
)

// ParseChainID parses a decimal chain id. Zero and negative ids are rejected.
func ParseChainID(s string) (ChainID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid chain id %q: must be positive", s)
	}
	return ChainID(n), nil
}

func (c ChainID) String() string {
	return strconv.FormatInt(int64(c), 10)
}

// Chains is the allow-list: exactly one primary (production) chain on which
// real invites are minted and one test chain that gets a sentinel code.
type Chains struct {
	Primary ChainID
	Test    ChainID
}

// Supported reports whether id is on the allow-list.
func (c Chains) Supported(id ChainID) bool {
	return id == c.Primary || id == c.Test
}

// IsPrimary reports whether id is the production chain.
func (c Chains) IsPrimary(id ChainID) bool {
	return id == c.Primary
}

// IsTest reports whether id is the test chain.
func (c Chains) IsTest(id ChainID) bool {
	return id == c.Test
}

// All returns the allowed chains, primary first.
func (c Chains) All() []ChainID {
	return []ChainID{c.Primary, c.Test}
}
