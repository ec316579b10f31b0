package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "folio/internal/errors"
)

// EquitiesClient fetches stock and ETF quotes from an Alpha Vantage-compatible
// endpoint. Current quotes use GLOBAL_QUOTE; dated quotes use the daily time
// series and read the close for that day.
type EquitiesClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewEquitiesClient creates an equities quote client. timeout bounds each
// request end to end.
func NewEquitiesClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) *EquitiesClient {
	return &EquitiesClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("provider", "equities").Logger(),
	}
}

// Quote returns the price for symbol. A past date routes to the daily close;
// an empty or current date returns the latest global quote.
func (c *EquitiesClient) Quote(ctx context.Context, symbol, date string) (float64, error) {
	today := time.Now().Format("2006-01-02")
	if date != "" && date != today {
		return c.DailyClose(ctx, symbol, date)
	}

	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	var payload struct {
		GlobalQuote struct {
			Price string `json:"05. price"`
		} `json:"Global Quote"`
	}
	if err := c.get(ctx, params, &payload); err != nil {
		return 0, apperrors.NewQuoteError("equities", symbol, "", err)
	}

	price, err := strconv.ParseFloat(payload.GlobalQuote.Price, 64)
	if err != nil || price <= 0 {
		return 0, apperrors.NewQuoteError("equities", symbol, "", apperrors.ErrPriceUnavailable)
	}

	c.logger.Debug().Str("symbol", symbol).Float64("price", price).Msg("global quote")
	return price, nil
}

// DailyClose returns the daily close for symbol on date (YYYY-MM-DD). Markets
// close on weekends and holidays, so the lookup walks back up to five days to
// the most recent prior trading day.
func (c *EquitiesClient) DailyClose(ctx context.Context, symbol, date string) (float64, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", "compact")
	params.Set("apikey", c.apiKey)

	var payload struct {
		Series map[string]struct {
			Close string `json:"4. close"`
		} `json:"Time Series (Daily)"`
	}
	if err := c.get(ctx, params, &payload); err != nil {
		return 0, apperrors.NewQuoteError("equities", symbol, date, err)
	}
	if len(payload.Series) == 0 {
		return 0, apperrors.NewQuoteError("equities", symbol, date, apperrors.ErrPriceUnavailable)
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, apperrors.NewQuoteError("equities", symbol, date, err)
	}
	for i := 0; i < 5; i++ {
		key := day.AddDate(0, 0, -i).Format("2006-01-02")
		entry, ok := payload.Series[key]
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(entry.Close, 64)
		if err != nil || price <= 0 {
			continue
		}
		c.logger.Debug().Str("symbol", symbol).Str("date", key).Float64("close", price).Msg("daily close")
		return price, nil
	}

	return 0, apperrors.NewQuoteError("equities", symbol, date, apperrors.ErrPriceUnavailable)
}

func (c *EquitiesClient) get(ctx context.Context, params url.Values, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
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
