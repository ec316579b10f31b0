// Package quotes provides external price-quote providers. Every provider
// sits in a user-facing request path, so calls carry a short timeout and a
// failure degrades to the caller's next fallback tier instead of retrying.
package quotes

import (
	"context"
	"strings"
)

// EquitiesProvider fetches stock/ETF quotes. date is YYYY-MM-DD; an empty or
// current date means the latest quote.
type EquitiesProvider interface {
	Quote(ctx context.Context, symbol, date string) (float64, error)
}

// HistoricalProvider fetches an equities daily close for a specific date.
// Used as the fallback tier when the primary equities quote is unavailable.
type HistoricalProvider interface {
	DailyClose(ctx context.Context, symbol, date string) (float64, error)
}

// CryptoProvider fetches crypto prices: a live endpoint for today and a
// date-indexed history endpoint for past dates.
type CryptoProvider interface {
	Price(ctx context.Context, symbol string) (float64, error)
	HistoricalPrice(ctx context.Context, symbol, date string) (float64, error)
}

// knownCryptoIDs maps common ticker symbols to provider asset IDs. A symbol
// absent from this map is treated as having no crypto mapping, which lets the
// enricher skip the crypto fallback for ticker-shaped equity symbols.
var knownCryptoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"XRP":   "ripple",
	"LTC":   "litecoin",
	"DOGE":  "dogecoin",
	"BNB":   "binancecoin",
	"USDT":  "tether",
	"USDC":  "usd-coin",
	"DAI":   "dai",
	"ARB":   "arbitrum",
	"OP":    "optimism",
	"AAVE":  "aave",
}

// KnownCryptoID returns the provider asset ID for a ticker symbol, if one is
// known. Lookup is case-insensitive so stored lower-case symbols still map.
func KnownCryptoID(symbol string) (string, bool) {
	id, ok := knownCryptoIDs[strings.ToUpper(symbol)]
	return id, ok
}
