package quotes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnownCryptoID_CaseInsensitive(t *testing.T) {
	// Stored symbols are not guaranteed to be upper case; the mapping must
	// not depend on the caller's casing.
	for _, symbol := range []string{"BTC", "btc", "Btc"} {
		id, ok := KnownCryptoID(symbol)
		assert.True(t, ok, "symbol %q", symbol)
		assert.Equal(t, "bitcoin", id)
	}

	_, ok := KnownCryptoID("MSFT")
	assert.False(t, ok)
}
