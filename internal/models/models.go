// Package models provides domain models for the portfolio application.
package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssetType represents the type of a portfolio holding.
type AssetType string

const (
	AssetCrypto AssetType = "crypto"
	AssetStock  AssetType = "stock"
	AssetETF    AssetType = "etf"
	AssetCash   AssetType = "cash"
	AssetManual AssetType = "manual"
)

// AssetClass is a coarser taxonomy used for grouping and exposure views.
type AssetClass string

const (
	ClassCrypto AssetClass = "crypto"
	ClassEquity AssetClass = "equity"
	ClassCash   AssetClass = "cash"
	ClassMetals AssetClass = "metals"
	ClassOther  AssetClass = "other"
)

// DataSource identifies where an account's data comes from.
type DataSource string

const (
	SourceManual   DataSource = "manual"
	SourceDebank   DataSource = "debank"
	SourceHelius   DataSource = "helius"
	SourceKraken   DataSource = "kraken"
	SourceCoinbase DataSource = "coinbase"
)

// Position is a single portfolio holding. Multiple positions may share a
// symbol when the same asset is held across accounts; resolution code must
// disambiguate by account or report the ambiguity instead of guessing.
type Position struct {
	ID           string     `json:"id"`
	Symbol       string     `json:"symbol"`
	Name         string     `json:"name,omitempty"`
	Amount       float64    `json:"amount"`
	IsDebt       bool       `json:"isDebt,omitempty"`
	Type         AssetType  `json:"type"`
	AssetClass   AssetClass `json:"assetClass,omitempty"`
	CostBasis    float64    `json:"costBasis,omitempty"` // total cost in quote currency, 0 = unknown
	PurchaseDate string     `json:"purchaseDate,omitempty"`
	AccountID    string     `json:"accountId,omitempty"` // empty = manually entered, not linked
	AddedAt      time.Time  `json:"addedAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

var (
	cashSymbolRe     = regexp.MustCompile(`^CASH_([A-Z]{3})(?:_|$)`)
	cashNameSuffixRe = regexp.MustCompile(`\(([A-Z]{3})\)\s*$`)
)

// Currency extracts the ISO currency code of a cash position. It tries the
// CASH_<CCY>_<suffix> symbol pattern first, then a "(<CCY>)" suffix in the
// display name. Returns "" when neither encoding is present.
func (p Position) Currency() string {
	if m := cashSymbolRe.FindStringSubmatch(strings.ToUpper(p.Symbol)); m != nil {
		return m[1]
	}
	if m := cashNameSuffixRe.FindStringSubmatch(strings.ToUpper(p.Name)); m != nil {
		return m[1]
	}
	return ""
}

// IsCash reports whether the position is a cash balance.
func (p Position) IsCash() bool {
	return p.Type == AssetCash
}

// Connection describes how an account is synced.
type Connection struct {
	DataSource DataSource `json:"dataSource"`
	Address    string     `json:"address,omitempty"`
	Chains     []string   `json:"chains,omitempty"`
}

// Account is a connection to a data source (wallet, exchange, or a manual
// bucket the user maintains by hand).
type Account struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Connection Connection `json:"connection"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// IsManual reports whether the account is manually managed. Cash mutations
// only resolve against manual accounts.
func (a Account) IsManual() bool {
	return a.Connection.DataSource == SourceManual
}

// TransactionType is the kind of ledger entry.
type TransactionType string

const (
	TxBuy  TransactionType = "buy"
	TxSell TransactionType = "sell"
)

// Transaction is an immutable ledger entry recording a committed buy or sell.
// Entries are only appended, never mutated or deleted by normal flow.
type Transaction struct {
	ID                   string          `json:"id"`
	Type                 TransactionType `json:"type"`
	Symbol               string          `json:"symbol"`
	Amount               float64         `json:"amount"`
	PricePerUnit         float64         `json:"pricePerUnit"`
	TotalValue           float64         `json:"totalValue"`
	CostBasisAtExecution float64         `json:"costBasisAtExecution,omitempty"`
	RealizedPnL          float64         `json:"realizedPnL,omitempty"`
	PositionID           string          `json:"positionId,omitempty"`
	Date                 string          `json:"date"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// Settings holds user-facing toggles and parameters.
type Settings struct {
	HideBalances bool    `json:"hideBalances,omitempty"`
	HideDust     bool    `json:"hideDust,omitempty"`
	RiskFreeRate float64 `json:"riskFreeRate,omitempty"`
}

// Snapshot is the full portfolio document. Reads get a consistent deep copy;
// writes go through the store's Mutate primitive only.
type Snapshot struct {
	Positions    []Position         `json:"positions"`
	Accounts     []Account          `json:"accounts"`
	Prices       map[string]float64 `json:"prices,omitempty"`       // market prices by symbol
	CustomPrices map[string]float64 `json:"customPrices,omitempty"` // user overrides by symbol
	Transactions []Transaction      `json:"transactions,omitempty"`
	Settings     Settings           `json:"settings"`
}

// PriceFor returns the stored price for a symbol, preferring a user override
// over the market price. Lookup is case-insensitive.
func (s *Snapshot) PriceFor(symbol string) (float64, bool) {
	if p, ok := lookupPrice(s.CustomPrices, symbol); ok {
		return p, true
	}
	return lookupPrice(s.Prices, symbol)
}

// CustomPriceFor returns the user override price only.
func (s *Snapshot) CustomPriceFor(symbol string) (float64, bool) {
	return lookupPrice(s.CustomPrices, symbol)
}

// MarketPriceFor returns the market price only, ignoring overrides.
func (s *Snapshot) MarketPriceFor(symbol string) (float64, bool) {
	return lookupPrice(s.Prices, symbol)
}

func lookupPrice(prices map[string]float64, symbol string) (float64, bool) {
	if len(prices) == 0 {
		return 0, false
	}
	if p, ok := prices[symbol]; ok {
		return p, true
	}
	upper := strings.ToUpper(symbol)
	for k, p := range prices {
		if strings.ToUpper(k) == upper {
			return p, true
		}
	}
	return 0, false
}

// PositionsBySymbol returns all positions whose symbol equals the given one,
// case-insensitively.
func (s *Snapshot) PositionsBySymbol(symbol string) []Position {
	upper := strings.ToUpper(symbol)
	var out []Position
	for _, p := range s.Positions {
		if strings.ToUpper(p.Symbol) == upper {
			out = append(out, p)
		}
	}
	return out
}

// PositionByID returns the position with the given id, or nil.
func (s *Snapshot) PositionByID(id string) *Position {
	for i := range s.Positions {
		if s.Positions[i].ID == id {
			return &s.Positions[i]
		}
	}
	return nil
}

// AccountByID returns the account with the given id, or nil.
func (s *Snapshot) AccountByID(id string) *Account {
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			return &s.Accounts[i]
		}
	}
	return nil
}

// SymbolCatalog returns the distinct symbols present in the portfolio,
// preserving the stored casing of the first occurrence.
func (s *Snapshot) SymbolCatalog() []string {
	seen := make(map[string]bool, len(s.Positions))
	var out []string
	for _, p := range s.Positions {
		upper := strings.ToUpper(p.Symbol)
		if !seen[upper] {
			seen[upper] = true
			out = append(out, p.Symbol)
		}
	}
	return out
}

// NewID returns a fresh unique identifier.
func NewID() string {
	return uuid.NewString()
}
