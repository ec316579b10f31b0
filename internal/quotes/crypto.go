package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "folio/internal/errors"
)

// CryptoClient fetches crypto prices from a CoinGecko-compatible endpoint:
// /simple/price for live prices and /coins/{id}/history for dated ones.
type CryptoClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewCryptoClient creates a crypto quote client. timeout bounds each request
// end to end.
func NewCryptoClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *CryptoClient {
	return &CryptoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("provider", "crypto").Logger(),
	}
}

// Price returns the live USD price for a crypto ticker symbol.
func (c *CryptoClient) Price(ctx context.Context, symbol string) (float64, error) {
	id, ok := KnownCryptoID(strings.ToUpper(symbol))
	if !ok {
		return 0, apperrors.NewQuoteError("crypto", symbol, "", apperrors.ErrPriceUnavailable)
	}

	params := url.Values{}
	params.Set("ids", id)
	params.Set("vs_currencies", "usd")

	var payload map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := c.get(ctx, "/simple/price", params, &payload); err != nil {
		return 0, apperrors.NewQuoteError("crypto", symbol, "", err)
	}

	entry, ok := payload[id]
	if !ok || entry.USD <= 0 {
		return 0, apperrors.NewQuoteError("crypto", symbol, "", apperrors.ErrPriceUnavailable)
	}

	c.logger.Debug().Str("symbol", symbol).Float64("price", entry.USD).Msg("live price")
	return entry.USD, nil
}

// HistoricalPrice returns the USD price for a crypto ticker symbol on date
// (YYYY-MM-DD).
func (c *CryptoClient) HistoricalPrice(ctx context.Context, symbol, date string) (float64, error) {
	id, ok := KnownCryptoID(strings.ToUpper(symbol))
	if !ok {
		return 0, apperrors.NewQuoteError("crypto", symbol, date, apperrors.ErrPriceUnavailable)
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, apperrors.NewQuoteError("crypto", symbol, date, err)
	}

	// The history endpoint wants DD-MM-YYYY.
	params := url.Values{}
	params.Set("date", day.Format("02-01-2006"))

	var payload struct {
		MarketData struct {
			CurrentPrice struct {
				USD float64 `json:"usd"`
			} `json:"current_price"`
		} `json:"market_data"`
	}
	if err := c.get(ctx, "/coins/"+id+"/history", params, &payload); err != nil {
		return 0, apperrors.NewQuoteError("crypto", symbol, date, err)
	}

	price := payload.MarketData.CurrentPrice.USD
	if price <= 0 {
		return 0, apperrors.NewQuoteError("crypto", symbol, date, apperrors.ErrPriceUnavailable)
	}

	c.logger.Debug().Str("symbol", symbol).Str("date", date).Float64("price", price).Msg("historical price")
	return price, nil
}

func (c *CryptoClient) get(ctx context.Context, path string, params url.Values, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
