package resolve

import (
	"regexp"
	"strings"

	"folio/internal/models"
)

var (
	cashFragmentRe = regexp.MustCompile(`CASH_([A-Z]{3})`)
	bareCodeRe     = regexp.MustCompile(`\b([A-Z]{3})\b`)
)

// isoCurrencies gates the bare-token fallback. Free text is full of
// 3-letter words ("add", "the", "all"), so a token only counts as a currency
// when it is an actual ISO 4217 code.
var isoCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "CHF": true, "JPY": true,
	"CAD": true, "AUD": true, "NZD": true, "SEK": true, "NOK": true,
	"DKK": true, "PLN": true, "CZK": true, "HUF": true, "TRY": true,
	"INR": true, "CNY": true, "HKD": true, "SGD": true, "BRL": true,
	"MXN": true, "KRW": true, "ZAR": true, "ILS": true, "AED": true,
	"SAR": true, "RON": true, "BGN": true, "ISK": true, "THB": true,
	"MYR": true, "IDR": true, "PHP": true, "TWD": true, "VND": true,
	"CLP": true, "COP": true, "PEN": true, "ARS": true,
}

// NormalizeCurrency extracts an ISO 4217 currency code from any of the
// accepted input shapes: a bare 3-letter code, a CASH_<CCY>_... symbol
// fragment, or free text containing either. The CASH_ pattern is tried first
// so "CASH_EUR_REVOLUT" yields EUR, not CAS-adjacent noise; bare tokens are
// then validated against the known-code set so "add some GBP please" yields
// GBP, not ADD. Returns "" when nothing currency-shaped is found.
func NormalizeCurrency(input string) string {
	upper := strings.ToUpper(strings.TrimSpace(input))
	if upper == "" {
		return ""
	}
	if m := cashFragmentRe.FindStringSubmatch(upper); m != nil {
		return m[1]
	}
	for _, m := range bareCodeRe.FindAllStringSubmatch(upper, -1) {
		if isoCurrencies[m[1]] {
			return m[1]
		}
	}
	return ""
}

// ResolveCashPosition finds the unique cash position for a currency,
// optionally restricted to an account. Zero or multiple candidates return
// nil: a cash mutation applied to the wrong account is a financial
// correctness bug, so ambiguity blocks instead of defaulting.
func ResolveCashPosition(positions []models.Position, currencyLike, accountID string) *models.Position {
	currency := NormalizeCurrency(currencyLike)
	if currency == "" {
		return nil
	}

	var matches []models.Position
	for _, p := range positions {
		if !p.IsCash() {
			continue
		}
		if p.Currency() != currency {
			continue
		}
		if accountID != "" && p.AccountID != accountID {
			continue
		}
		matches = append(matches, p)
	}

	if len(matches) != 1 {
		return nil
	}
	m := matches[0]
	return &m
}
