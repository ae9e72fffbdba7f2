package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseDomainName_Invariants validates the request-name invariant:
// "names are non-empty, end in the suffix, and are already canonical".
func TestParseDomainName_Invariants(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong suffix", "alice.com"},
		{"uppercase", "Alice.eth"},
		{"suffix only", ".eth"},
		{"leading space", " alice.eth"},
		{"trailing newline", "alice.eth\n"},
		{"inner space", "ali ce.eth"},
	} {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			_, err := ParseDomainName(tc.input, ".eth")
			require.Error(t, err)
		})
	}

	t.Run("accepts canonical name", func(t *testing.T) {
		n, err := ParseDomainName("alice.eth", ".eth")
		require.NoError(t, err)
		assert.Equal(t, DomainName("alice.eth"), n)
	})
}

func TestDomainName_IsSecondLevel(t *testing.T) {
	assert.True(t, DomainName("alice.eth").IsSecondLevel(".eth"))
	assert.False(t, DomainName("pay.alice.eth").IsSecondLevel(".eth"))
	assert.False(t, DomainName(".eth").IsSecondLevel(".eth"))
}

func TestParseAddress(t *testing.T) {
	t.Run("lowercases checksummed input", func(t *testing.T) {
		a, err := ParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
		require.NoError(t, err)
		assert.Equal(t, Address("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"), a)
	})

	t.Run("rejects short and unprefixed input", func(t *testing.T) {
		_, err := ParseAddress("0x1234")
		require.Error(t, err)
		_, err = ParseAddress("5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
		require.Error(t, err)
	})
}

func TestChains(t *testing.T) {
	chains := Chains{Primary: ChainMainnet, Test: ChainGoerli}

	assert.True(t, chains.Supported(1))
	assert.True(t, chains.Supported(5))
	assert.False(t, chains.Supported(137))
	assert.True(t, chains.IsPrimary(1))
	assert.False(t, chains.IsPrimary(5))
	assert.True(t, chains.IsTest(5))
	assert.Equal(t, []ChainID{1, 5}, chains.All())
}

func TestParseChainID(t *testing.T) {
	id, err := ParseChainID("5")
	require.NoError(t, err)
	assert.Equal(t, ChainGoerli, id)

	_, err = ParseChainID("0")
	require.Error(t, err)
	_, err = ParseChainID("mainnet")
	require.Error(t, err)
}
