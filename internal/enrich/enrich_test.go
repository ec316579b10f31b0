package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/config"
	apperrors "folio/internal/errors"
	"folio/internal/models"
	"folio/internal/resolve"
)

// fakeEquities serves a fixed price per symbol for any date.
type fakeEquities struct {
	prices map[string]float64
	calls  int
}

func (f *fakeEquities) Quote(_ context.Context, symbol, date string) (float64, error) {
	f.calls++
	if p, ok := f.prices[symbol]; ok {
		return p, nil
	}
	return 0, apperrors.NewQuoteError("equities", symbol, date, apperrors.ErrPriceUnavailable)
}

func (f *fakeEquities) DailyClose(ctx context.Context, symbol, date string) (float64, error) {
	return f.Quote(ctx, symbol, date)
}

func testQuotesConfig() config.QuotesConfig {
	return config.QuotesConfig{
		Timeout:              time.Second,
		SuspiciousLowRatio:   0.3,
		SuspiciousHighRatio:  3.0,
		SuspiciousWindowDays: 7,
	}
}

func newTestEnricher(eq *fakeEquities) *Enricher {
	resolver := NewQuoteResolver(eq, eq, nil, testQuotesConfig(), zerolog.Nop())
	return NewEnricher(resolver, resolve.DefaultSymbolMatchConfig(), zerolog.Nop())
}

func TestEnrichBuy_DerivesPriceFromTotalCostAndAmount(t *testing.T) {
	e := newTestEnricher(&fakeEquities{})
	snap := &models.Snapshot{}

	args, warnings := e.EnrichBuy(context.Background(), snap, map[string]interface{}{
		"symbol":    "msft",
		"amount":    123.61,
		"totalCost": 50000.0,
	}, "bought 123.61 MSFT for $50k")

	assert.Empty(t, warnings)
	assert.Equal(t, "MSFT", args["symbol"])
	require.Contains(t, args, "price")
	assert.InDelta(t, 50000.0/123.61, args["price"].(float64), 0.01)
}

func TestEnrichBuy_DerivesAmountFromTotalCostAndQuote(t *testing.T) {
	e := newTestEnricher(&fakeEquities{prices: map[string]float64{"MSFT": 407}})
	snap := &models.Snapshot{}

	args, warnings := e.EnrichBuy(context.Background(), snap, map[string]interface{}{
		"symbol":    "MSFT",
		"totalCost": "$50k",
	}, "buy $50k of MSFT")

	assert.Empty(t, warnings)
	require.Contains(t, args, "price")
	assert.InDelta(t, 407.0, args["price"].(float64), 1e-9)
	require.Contains(t, args, "amount")
	assert.InDelta(t, 50000.0/407.0, args["amount"].(float64), 0.01)
	assert.InDelta(t, 50000.0, args["totalCost"].(float64), 1e-9)
	// The equities path answered, so the new position is a stock.
	assert.Equal(t, "stock", args["assetType"])
}

func TestEnrichBuy_AssetTypeFromExistingPosition(t *testing.T) {
	e := newTestEnricher(&fakeEquities{})
	snap := &models.Snapshot{
		Positions: []models.Position{
			{ID: "p1", Symbol: "ETH", Type: models.AssetCrypto, Amount: 4},
		},
		Prices: map[string]float64{"ETH": 3200},
	}

	args, _ := e.EnrichBuy(context.Background(), snap, map[string]interface{}{
		"symbol": "ETH",
		"amount": 1.0,
	}, "bought 1 more ETH")

	assert.Equal(t, "crypto", args["assetType"])
}

func TestEnrichBuy_UnresolvedPriceStaysAbsent(t *testing.T) {
	e := newTestEnricher(&fakeEquities{})
	snap := &models.Snapshot{}

	args, warnings := e.EnrichBuy(context.Background(), snap, map[string]interface{}{
		"symbol": "OBSCURE",
		"amount": 10.0,
	}, "buy 10 OBSCURE")

	assert.NotContains(t, args, "price")
	assert.Contains(t, warnings, "price could not be resolved")
}

func TestEnrichSell_GuessesSymbolFromText(t *testing.T) {
	e := newTestEnricher(&fakeEquities{})
	snap := &models.Snapshot{
		Positions: []models.Position{
			{ID: "p1", Symbol: "ETH", Type: models.AssetCrypto, Amount: 4, CostBasis: 8000},
		},
		Prices: map[string]float64{"ETH": 3200},
	}

	args, warnings := e.EnrichSell(context.Background(), snap, map[string]interface{}{
		"sellPercent": 50.0,
	}, "sold half my ETH yesterday")

	assert.Empty(t, warnings)
	assert.Equal(t, "ETH", args["symbol"])
	assert.Equal(t, "crypto", args["assetType"])
	assert.InDelta(t, 50.0, args["sellPercent"].(float64), 1e-9)
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	assert.Equal(t, yesterday, args["date"])
}

func TestEnrichSell_CostBasisFallbackWarns(t *testing.T) {
	e := newTestEnricher(&fakeEquities{})
	snap := &models.Snapshot{
		Positions: []models.Position{
			{ID: "p1", Symbol: "OLD", Type: models.AssetManual, Amount: 100, CostBasis: 2500},
		},
	}

	args, warnings := e.EnrichSell(context.Background(), snap, map[string]interface{}{
		"symbol": "OLD",
		"amount": 10.0,
	}, "sell 10 OLD")

	require.Contains(t, args, "price")
	assert.InDelta(t, 25.0, args["price"].(float64), 1e-9)
	assert.Contains(t, warnings, "price estimated from cost basis")
}

func TestResolvePrice_SuspiciousQuoteRejected(t *testing.T) {
	// Stored reference 100, provider claims 500 for a date inside the
	// guard window: the fetched quote is dropped and the stale stored price
	// wins as last resort.
	eq := &fakeEquities{prices: map[string]float64{"ACME": 500}}
	resolver := NewQuoteResolver(eq, eq, nil, testQuotesConfig(), zerolog.Nop())
	snap := &models.Snapshot{Prices: map[string]float64{"ACME": 100}}

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	got, _ := resolver.ResolvePrice(context.Background(), snap, "ACME", yesterday, models.AssetStock)

	require.NotNil(t, got)
	assert.InDelta(t, 100.0, *got, 1e-9)
	assert.Greater(t, eq.calls, 0)
}

// fakeCrypto serves one fixed price for live and historical lookups.
type fakeCrypto struct{ price float64 }

func (f fakeCrypto) Price(context.Context, string) (float64, error) { return f.price, nil }
func (f fakeCrypto) HistoricalPrice(context.Context, string, string) (float64, error) {
	return f.price, nil
}

func TestResolvePrice_CryptoQuoteNotGuarded(t *testing.T) {
	// The suspicious-price check covers equities providers only; crypto is
	// volatile enough that a 5x move against the stored reference is real.
	resolver := NewQuoteResolver(nil, nil, fakeCrypto{price: 500}, testQuotesConfig(), zerolog.Nop())
	snap := &models.Snapshot{Prices: map[string]float64{"ETH": 100}}

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	got, resolvedType := resolver.ResolvePrice(context.Background(), snap, "ETH", yesterday, models.AssetCrypto)

	require.NotNil(t, got)
	assert.InDelta(t, 500.0, *got, 1e-9)
	assert.Equal(t, models.AssetCrypto, resolvedType)
}

func TestResolvePrice_SaneQuoteAccepted(t *testing.T) {
	eq := &fakeEquities{prices: map[string]float64{"ACME": 110}}
	resolver := NewQuoteResolver(eq, eq, nil, testQuotesConfig(), zerolog.Nop())
	snap := &models.Snapshot{Prices: map[string]float64{"ACME": 100}}

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	got, resolvedType := resolver.ResolvePrice(context.Background(), snap, "ACME", yesterday, "")

	require.NotNil(t, got)
	assert.InDelta(t, 110.0, *got, 1e-9)
	assert.Equal(t, models.AssetStock, resolvedType)
}

func TestResolvePrice_StoredPricePreferredToday(t *testing.T) {
	eq := &fakeEquities{prices: map[string]float64{"ACME": 110}}
	resolver := NewQuoteResolver(eq, eq, nil, testQuotesConfig(), zerolog.Nop())
	snap := &models.Snapshot{Prices: map[string]float64{"ACME": 100}}

	got, _ := resolver.ResolvePrice(context.Background(), snap, "ACME", "", models.AssetStock)

	require.NotNil(t, got)
	assert.InDelta(t, 100.0, *got, 1e-9)
	assert.Zero(t, eq.calls)
}

func TestResolvePrice_CashIsAlwaysOne(t *testing.T) {
	resolver := NewQuoteResolver(nil, nil, nil, testQuotesConfig(), zerolog.Nop())
	got, resolvedType := resolver.ResolvePrice(context.Background(), &models.Snapshot{}, "CASH_EUR_REVOLUT", "", models.AssetCash)
	require.NotNil(t, got)
	assert.Equal(t, 1.0, *got)
	assert.Equal(t, models.AssetCash, resolvedType)
}
