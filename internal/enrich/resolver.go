package enrich

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"folio/internal/config"
	"folio/internal/models"
	"folio/internal/quotes"
)

// QuoteResolver resolves a price for a symbol on a date, trying stored
// portfolio prices and external providers in order. Every external call is
// bounded by the configured timeout and a failure moves to the next tier; the
// resolver itself never returns an error, only a price or nothing.
type QuoteResolver struct {
	equities   quotes.EquitiesProvider
	historical quotes.HistoricalProvider
	crypto     quotes.CryptoProvider
	cfg        config.QuotesConfig
	logger     zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewQuoteResolver creates a resolver. Any provider may be nil; its tier is
// skipped.
func NewQuoteResolver(equities quotes.EquitiesProvider, historical quotes.HistoricalProvider, crypto quotes.CryptoProvider, cfg config.QuotesConfig, logger zerolog.Logger) *QuoteResolver {
	return &QuoteResolver{
		equities:   equities,
		historical: historical,
		crypto:     crypto,
		cfg:        cfg,
		logger:     logger.With().Str("component", "quote_resolver").Logger(),
		now:        time.Now,
	}
}

// ResolvePrice returns the best available price for symbol on date (or nil)
// together with the asset type that produced it: the hint, the type of an
// existing position holding the symbol, or the provider path that answered
// (equities vs crypto). Cash is always 1. Stored portfolio prices are
// preferred for same-day lookups since they are already fresh and cost no
// network round trip.
func (r *QuoteResolver) ResolvePrice(ctx context.Context, snap *models.Snapshot, symbol, date string, typeHint models.AssetType) (*float64, models.AssetType) {
	if symbol == "" {
		return nil, ""
	}
	if typeHint == models.AssetCash {
		one := 1.0
		return &one, models.AssetCash
	}

	resolved := typeHint
	if resolved == "" {
		if matches := snap.PositionsBySymbol(symbol); len(matches) > 0 {
			resolved = matches[0].Type
		}
	}

	today := r.now().Format("2006-01-02")
	isToday := date == "" || date == today

	if isToday {
		if p, ok := snap.PriceFor(symbol); ok && p > 0 {
			return &p, resolved
		}
	}

	if p, pathType := r.fetch(ctx, snap, symbol, date, isToday, resolved); p != nil {
		if resolved == "" {
			resolved = pathType
		}
		return p, resolved
	}

	// Last resort for historical dates: the stored price is stale but still
	// better than nothing when every provider failed.
	if p, ok := snap.PriceFor(symbol); ok && p > 0 {
		return &p, resolved
	}
	return nil, resolved
}

func (r *QuoteResolver) fetch(ctx context.Context, snap *models.Snapshot, symbol, date string, isToday bool, typeHint models.AssetType) (*float64, models.AssetType) {
	_, isCrypto := quotes.KnownCryptoID(symbol)
	tryCrypto := typeHint == models.AssetCrypto || (typeHint == "" && isCrypto)

	if tryCrypto {
		return r.cryptoPrice(ctx, symbol, date, isToday), models.AssetCrypto
	}

	if p := r.equityPrice(ctx, snap, symbol, date); p != nil {
		return p, models.AssetStock
	}
	// Ticker-shaped symbols without a crypto mapping never reach the crypto
	// provider; a 404 there is pure wasted latency.
	if typeHint == "" && isCrypto {
		return r.cryptoPrice(ctx, symbol, date, isToday), models.AssetCrypto
	}
	return nil, ""
}

func (r *QuoteResolver) equityPrice(ctx context.Context, snap *models.Snapshot, symbol, date string) *float64 {
	if r.equities != nil {
		if p := r.call(ctx, snap, symbol, date, true, func(c context.Context) (float64, error) {
			return r.equities.Quote(c, symbol, date)
		}); p != nil {
			return p
		}
	}
	if r.historical != nil && date != "" {
		if p := r.call(ctx, snap, symbol, date, true, func(c context.Context) (float64, error) {
			return r.historical.DailyClose(c, symbol, date)
		}); p != nil {
			return p
		}
	}
	return nil
}

func (r *QuoteResolver) cryptoPrice(ctx context.Context, symbol, date string, isToday bool) *float64 {
	if r.crypto == nil {
		return nil
	}
	if isToday {
		return r.call(ctx, nil, symbol, date, false, func(c context.Context) (float64, error) {
			return r.crypto.Price(c, symbol)
		})
	}
	return r.call(ctx, nil, symbol, date, false, func(c context.Context) (float64, error) {
		return r.crypto.HistoricalPrice(c, symbol, date)
	})
}

// call runs one provider tier under the configured timeout. guarded tiers
// (equities quotes) additionally pass through the suspicious-price check.
func (r *QuoteResolver) call(ctx context.Context, snap *models.Snapshot, symbol, date string, guarded bool, fn func(context.Context) (float64, error)) *float64 {
	timeout := r.cfg.Timeout
	if timeout <= 0 {
		timeout = 1200 * time.Millisecond
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	price, err := fn(cctx)
	if err != nil {
		r.logger.Debug().Err(err).Str("symbol", symbol).Str("date", date).Msg("quote tier failed")
		return nil
	}
	if price <= 0 {
		return nil
	}
	if guarded && r.suspicious(snap, symbol, date, price) {
		r.logger.Warn().Str("symbol", symbol).Str("date", date).Float64("price", price).Msg("quote rejected as suspicious")
		return nil
	}
	return &price
}

// suspicious rejects a fetched quote that disagrees wildly with the stored
// reference price for a recent date. Providers occasionally return prices for
// the wrong share class or a split-unadjusted series; writing one of those
// into the cost basis silently corrupts P&L, so a recent quote outside the
// configured ratio band is dropped in favor of the next tier.
func (r *QuoteResolver) suspicious(snap *models.Snapshot, symbol, date string, price float64) bool {
	ref, ok := snap.PriceFor(symbol)
	if !ok || ref <= 0 {
		return false
	}

	windowDays := r.cfg.SuspiciousWindowDays
	if date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return false
		}
		if r.now().Sub(day) > time.Duration(windowDays)*24*time.Hour {
			return false
		}
	}

	ratio := price / ref
	return ratio < r.cfg.SuspiciousLowRatio || ratio > r.cfg.SuspiciousHighRatio
}
