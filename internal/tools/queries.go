package tools

import (
	"sort"
	"strings"

	"folio/internal/models"
	"folio/internal/resolve"
)

type positionView struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name,omitempty"`
	Amount    float64 `json:"amount"`
	Type      string  `json:"type"`
	Value     float64 `json:"value,omitempty"`
	CostBasis float64 `json:"costBasis,omitempty"`
	Account   string  `json:"account,omitempty"`
	IsDebt    bool    `json:"isDebt,omitempty"`
}

func (e *Executor) portfolioSummary() (string, error) {
	snap := e.store.Read()

	var total, debt float64
	cash := map[string]float64{}
	type holding struct {
		Symbol string  `json:"symbol"`
		Value  float64 `json:"value"`
	}
	var holdings []holding

	for _, p := range snap.Positions {
		value := p.Amount
		if !p.IsCash() {
			price, ok := snap.PriceFor(p.Symbol)
			if !ok {
				continue
			}
			value = p.Amount * price
		}
		if p.IsDebt {
			debt += value
			total -= value
			continue
		}
		total += value
		if p.IsCash() {
			cash[p.Currency()] += p.Amount
		} else {
			holdings = append(holdings, holding{Symbol: p.Symbol, Value: value})
		}
	}

	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Value > holdings[j].Value })
	if len(holdings) > 5 {
		holdings = holdings[:5]
	}

	return toolResult(map[string]interface{}{
		"totalValue":   total,
		"debt":         debt,
		"positions":    len(snap.Positions),
		"accounts":     len(snap.Accounts),
		"cashBalances": cash,
		"topHoldings":  holdings,
	})
}

func (e *Executor) listPositions(params map[string]interface{}) (string, error) {
	snap := e.store.Read()

	symbol := strings.ToUpper(getStringParam(params, "symbol", ""))
	assetType := getStringParam(params, "assetType", "")
	accountName := getStringParam(params, "account", "")

	accountID := ""
	if accountName != "" {
		m := resolve.ResolveAccount(snap.Accounts, accountName, resolve.AccountResolveOptions{})
		if m.Status != resolve.AccountMatched {
			return toolError("no account matches %q", accountName)
		}
		accountID = m.Account.ID
	}

	var out []positionView
	for _, p := range snap.Positions {
		if symbol != "" && strings.ToUpper(p.Symbol) != symbol {
			continue
		}
		if assetType != "" && string(p.Type) != assetType {
			continue
		}
		if accountID != "" && p.AccountID != accountID {
			continue
		}
		view := positionView{
			ID:        p.ID,
			Symbol:    p.Symbol,
			Name:      p.Name,
			Amount:    p.Amount,
			Type:      string(p.Type),
			CostBasis: p.CostBasis,
			IsDebt:    p.IsDebt,
		}
		if price, ok := snap.PriceFor(p.Symbol); ok {
			view.Value = p.Amount * price
		} else if p.IsCash() {
			view.Value = p.Amount
		}
		if acc := snap.AccountByID(p.AccountID); acc != nil {
			view.Account = acc.Name
		}
		out = append(out, view)
	}

	return toolResult(map[string]interface{}{"positions": out, "count": len(out)})
}

func (e *Executor) getPrice(params map[string]interface{}) (string, error) {
	snap := e.store.Read()
	symbol := strings.ToUpper(getStringParam(params, "symbol", ""))
	if symbol == "" {
		return toolError("symbol is required")
	}

	result := map[string]interface{}{"symbol": symbol}
	price, ok := snap.PriceFor(symbol)
	if !ok {
		return toolError("no price stored for %s", symbol)
	}
	result["price"] = price
	if custom, ok := snap.CustomPriceFor(symbol); ok {
		result["customPrice"] = custom
	}
	if market, ok := snap.MarketPriceFor(symbol); ok {
		result["marketPrice"] = market
	}
	return toolResult(result)
}

func (e *Executor) listTransactions(params map[string]interface{}) (string, error) {
	snap := e.store.Read()
	symbol := strings.ToUpper(getStringParam(params, "symbol", ""))
	limit := getIntParam(params, "limit", 20)

	txs := make([]models.Transaction, 0, len(snap.Transactions))
	for _, tx := range snap.Transactions {
		if symbol != "" && strings.ToUpper(tx.Symbol) != symbol {
			continue
		}
		txs = append(txs, tx)
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}

	return toolResult(map[string]interface{}{"transactions": txs, "count": len(txs)})
}
