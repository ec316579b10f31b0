package action

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/models"
	"folio/internal/tools"
)

func testSnapshot() *models.Snapshot {
	now := time.Now()
	return &models.Snapshot{
		Accounts: []models.Account{
			{ID: "acc-rev", Name: "Revolut", Connection: models.Connection{DataSource: models.SourceManual}, CreatedAt: now},
			{ID: "acc-ibkr", Name: "IBKR", Connection: models.Connection{DataSource: models.SourceManual}, CreatedAt: now},
		},
		Positions: []models.Position{
			{ID: "pos-btc", Symbol: "BTC", Type: models.AssetCrypto, AssetClass: models.ClassCrypto, Amount: 0.5, CostBasis: 20000},
			{ID: "pos-eth", Symbol: "ETH", Type: models.AssetCrypto, AssetClass: models.ClassCrypto, Amount: 4, CostBasis: 8000},
			{ID: "pos-goog", Symbol: "GOOGL", Type: models.AssetStock, AssetClass: models.ClassEquity, Amount: 10, CostBasis: 1500, AccountID: "acc-ibkr"},
			{ID: "pos-cash", Symbol: "CASH_EUR_REVOLUT", Name: "Euro (EUR)", Type: models.AssetCash, AssetClass: models.ClassCash, Amount: 1000, AccountID: "acc-rev"},
		},
		Prices: map[string]float64{"BTC": 64000, "ETH": 3200, "GOOGL": 170},
	}
}

func TestToolCallToAction_NonConfirmableIsNil(t *testing.T) {
	snap := testSnapshot()
	assert.Nil(t, ToolCallToAction(snap, tools.ToolPortfolioSummary, map[string]interface{}{}, nil))
	assert.Nil(t, ToolCallToAction(snap, tools.ToolAddWallet, map[string]interface{}{"address": "0xabc"}, nil))
}

func TestToolCallToAction_BuyWithTotalCost(t *testing.T) {
	snap := testSnapshot()
	a := ToolCallToAction(snap, tools.ToolBuy, map[string]interface{}{
		"symbol":    "MSFT",
		"amount":    122.85,
		"price":     407.0,
		"totalCost": 50000.0,
	}, nil)

	require.NotNil(t, a)
	assert.Equal(t, KindBuy, a.Kind)
	assert.Equal(t, "MSFT", a.Symbol)
	assert.InDelta(t, 122.85, a.Amount, 1e-9)
	assert.InDelta(t, 407.0, a.Price, 1e-9)
	assert.Contains(t, a.Summary, "Buy 122.85 MSFT")
	assert.Contains(t, a.Summary, "$407.00")
}

func TestToolCallToAction_SetPrice(t *testing.T) {
	snap := testSnapshot()
	a := ToolCallToAction(snap, tools.ToolSetPrice, map[string]interface{}{
		"symbol": "BTC",
		"price":  65000.0,
	}, nil)

	require.NotNil(t, a)
	assert.Equal(t, KindSetPrice, a.Kind)
	assert.InDelta(t, 65000.0, a.NewPrice, 1e-9)
	assert.Equal(t, "Set BTC price to $65,000.00", a.Summary)
}

func TestToolCallToAction_SellResolvesUniquePosition(t *testing.T) {
	snap := testSnapshot()
	a := ToolCallToAction(snap, tools.ToolSellPartial, map[string]interface{}{
		"symbol":      "ETH",
		"sellPercent": 50.0,
	}, nil)

	require.NotNil(t, a)
	assert.Equal(t, "pos-eth", a.MatchedPositionID)
	// Price inferred from the stored price when absent.
	assert.InDelta(t, 3200.0, a.Price, 1e-9)
	assert.Contains(t, a.Summary, "Sell 50% of ETH")
}

func TestToolCallToAction_SymbolAlias(t *testing.T) {
	snap := testSnapshot()
	a := ToolCallToAction(snap, tools.ToolSellAll, map[string]interface{}{"symbol": "GOOG"}, nil)

	require.NotNil(t, a)
	assert.Equal(t, "GOOGL", a.Symbol)
	assert.Equal(t, "pos-goog", a.MatchedPositionID)
}

func TestToolCallToAction_AmbiguousLeavesMatchEmpty(t *testing.T) {
	snap := testSnapshot()
	// Two manual BTC positions: no tier narrows to exactly one.
	snap.Positions = append(snap.Positions, models.Position{
		ID: "pos-btc2", Symbol: "BTC", Type: models.AssetCrypto, AssetClass: models.ClassCrypto, Amount: 0.1,
	})

	a := ToolCallToAction(snap, tools.ToolSellAll, map[string]interface{}{"symbol": "BTC"}, nil)
	require.NotNil(t, a)
	assert.Empty(t, a.MatchedPositionID)
	assert.NotEmpty(t, a.Warnings)
	assert.Less(t, a.Confidence, 1.0)
}

func TestToolCallToAction_UpdateCashRedirects(t *testing.T) {
	snap := testSnapshot()
	a := ToolCallToAction(snap, tools.ToolUpdateCash, map[string]interface{}{
		"currency": "EUR",
		"amount":   12000.0,
		"account":  "Revolut",
	}, nil)

	require.NotNil(t, a)
	assert.Equal(t, KindUpdatePosition, a.Kind)
	assert.Equal(t, models.AssetCash, a.AssetType)
	assert.Equal(t, "pos-cash", a.MatchedPositionID)
	assert.Equal(t, "acc-rev", a.MatchedAccountID)
	assert.Equal(t, "CASH_EUR_REVOLUT", a.Symbol)
}

func TestToolCallToAction_AddCashNeedsUniqueTarget(t *testing.T) {
	snap := testSnapshot()
	snap.Positions = append(snap.Positions, models.Position{
		ID: "pos-cash2", Symbol: "CASH_EUR_N26", Type: models.AssetCash, AssetClass: models.ClassCash, Amount: 500, AccountID: "acc-ibkr",
	})

	// Two EUR balances and no account hint: stay unresolved.
	a := ToolCallToAction(snap, tools.ToolAddCash, map[string]interface{}{
		"currency": "EUR",
		"amount":   5000.0,
	}, nil)
	require.NotNil(t, a)
	assert.Empty(t, a.MatchedPositionID)

	// Naming the account disambiguates.
	a = ToolCallToAction(snap, tools.ToolAddCash, map[string]interface{}{
		"currency": "EUR",
		"amount":   5000.0,
		"account":  "Revolut",
	}, nil)
	require.NotNil(t, a)
	assert.Equal(t, "pos-cash", a.MatchedPositionID)
	assert.Contains(t, a.Summary, "Add $5,000.00")
}

func TestFindPositionBySymbol_PunctuationInsensitive(t *testing.T) {
	snap := &models.Snapshot{Positions: []models.Position{
		{ID: "p1", Symbol: "BRK-B", Type: models.AssetStock},
	}}
	matches := FindPositionBySymbol(snap, "BRK.B")
	require.Len(t, matches, 1)
	assert.Equal(t, "p1", matches[0].ID)
}
