package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/models"
)

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"EUR", "EUR"},
		{"eur", "EUR"},
		{"CASH_EUR_REVOLUT", "EUR"},
		{"add some GBP please", "GBP"},
		{"SET THE USD BALANCE", "USD"},
		{"no currency here", ""},
		{"XYZ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCurrency(tt.input), "input %q", tt.input)
	}
}

func cashPositions() []models.Position {
	return []models.Position{
		{ID: "p1", Symbol: "CASH_EUR_REVOLUT", Type: models.AssetCash, Amount: 1000, AccountID: "a1"},
		{ID: "p2", Symbol: "CASH_EUR_N26", Type: models.AssetCash, Amount: 500, AccountID: "a2"},
		{ID: "p3", Symbol: "CASH_GBP_REVOLUT", Type: models.AssetCash, Amount: 200, AccountID: "a1"},
		{ID: "p4", Symbol: "BTC", Type: models.AssetCrypto, Amount: 1},
	}
}

func TestResolveCashPosition_ExactlyOneRule(t *testing.T) {
	positions := cashPositions()

	// Two EUR balances without an account hint: ambiguous, nil.
	assert.Nil(t, ResolveCashPosition(positions, "EUR", ""))

	// Account hint narrows to one.
	got := ResolveCashPosition(positions, "EUR", "a1")
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.ID)

	// Single GBP balance resolves without a hint.
	got = ResolveCashPosition(positions, "GBP", "")
	require.NotNil(t, got)
	assert.Equal(t, "p3", got.ID)

	// Unknown currency and non-cash symbols resolve to nothing.
	assert.Nil(t, ResolveCashPosition(positions, "JPY", ""))
	assert.Nil(t, ResolveCashPosition(positions, "", ""))
}
