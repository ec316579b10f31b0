// Package action maps enriched tool calls onto confirmable portfolio
// actions. A PositionAction is what the user sees before saying yes: the
// resolved position, the final numbers, and a one-line summary of what will
// happen.
package action

import (
	"fmt"
	"strings"

	"folio/internal/models"
	"folio/internal/resolve"
	"folio/internal/tools"
	"folio/pkg/utils"
)

// Kind is the confirmable action family.
type Kind string

const (
	KindBuy            Kind = "buy"
	KindSellPartial    Kind = "sell_partial"
	KindSellAll        Kind = "sell_all"
	KindRemove         Kind = "remove"
	KindUpdatePosition Kind = "update_position"
	KindSetPrice       Kind = "set_price"
	KindAddCash        Kind = "add_cash"
)

// PositionAction is a staged mutation awaiting user confirmation. Zero-valued
// numeric fields mean "not part of this action". An empty MatchedPositionID
// on a position-targeting action means resolution failed or was ambiguous;
// the executor refuses to run it.
type PositionAction struct {
	Kind              Kind                   `json:"kind"`
	Tool              string                 `json:"tool"`
	Symbol            string                 `json:"symbol,omitempty"`
	AssetType         models.AssetType       `json:"assetType,omitempty"`
	Amount            float64                `json:"amount,omitempty"`
	Price             float64                `json:"price,omitempty"`
	TotalCost         float64                `json:"totalCost,omitempty"`
	SellPercent       float64                `json:"sellPercent,omitempty"`
	NewPrice          float64                `json:"newPrice,omitempty"`
	Date              string                 `json:"date,omitempty"`
	MatchedPositionID string                 `json:"matchedPositionId,omitempty"`
	MatchedAccountID  string                 `json:"matchedAccountId,omitempty"`
	Confidence        float64                `json:"confidence"`
	Summary           string                 `json:"summary"`
	Warnings          []string               `json:"warnings,omitempty"`
	Args              map[string]interface{} `json:"args,omitempty"`
}

// symbolAliases maps between common ticker spellings of the same asset.
var symbolAliases = map[string]string{
	"GOOG":  "GOOGL",
	"GOOGL": "GOOG",
	"FB":    "META",
	"META":  "FB",
	"BRK.B": "BRK-B",
	"BRK-B": "BRK.B",
}

// canonicalSymbol strips punctuation so "BRK.B" and "BRK-B" compare equal.
func canonicalSymbol(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r == '.' || r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FindPositionBySymbol returns the positions holding a symbol, trying exact
// match, then the alias table, then punctuation-insensitive comparison.
func FindPositionBySymbol(snap *models.Snapshot, symbol string) []models.Position {
	if symbol == "" {
		return nil
	}
	if matches := snap.PositionsBySymbol(symbol); len(matches) > 0 {
		return matches
	}
	if alias, ok := symbolAliases[strings.ToUpper(symbol)]; ok {
		if matches := snap.PositionsBySymbol(alias); len(matches) > 0 {
			return matches
		}
	}
	canon := canonicalSymbol(symbol)
	var out []models.Position
	for _, p := range snap.Positions {
		if canonicalSymbol(p.Symbol) == canon {
			out = append(out, p)
		}
	}
	return out
}

// accountArgKeys are the argument names models use for an account reference.
var accountArgKeys = []string{
	"account", "accountName", "account_name", "accountId", "account_id",
	"bankAccount", "bank_account", "destinationAccount", "destination", "to",
	"from", "wallet",
}

// AccountNameFromArgs extracts the first account-referencing argument.
func AccountNameFromArgs(args map[string]interface{}) string {
	for _, key := range accountArgKeys {
		if v, ok := args[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// ToolCallToAction maps a confirmable tool call onto a PositionAction.
// Returns nil for tools outside the confirmable set. update_cash is folded
// into update_position with a forced cash asset type.
func ToolCallToAction(snap *models.Snapshot, toolName string, args map[string]interface{}, warnings []string) *PositionAction {
	if !tools.Confirmable[toolName] {
		return nil
	}

	a := &PositionAction{
		Tool:       toolName,
		Symbol:     strings.TrimSpace(argString(args, "symbol")),
		AssetType:  assetTypeFromArgs(args),
		Date:       argString(args, "date"),
		Confidence: 1.0,
		Warnings:   append([]string(nil), warnings...),
		Args:       args,
	}
	a.Amount = argNumber(args, "amount")
	a.Price = argNumber(args, "price")
	a.TotalCost = argNumber(args, "totalCost")
	a.SellPercent = argNumber(args, "sellPercent")
	a.NewPrice = argNumber(args, "newPrice")
	if a.NewPrice == 0 {
		a.NewPrice = argNumber(args, "price")
	}

	switch toolName {
	case tools.ToolBuy:
		a.Kind = KindBuy
	case tools.ToolSellPartial:
		a.Kind = KindSellPartial
	case tools.ToolSellAll:
		a.Kind = KindSellAll
	case tools.ToolRemovePosition:
		a.Kind = KindRemove
	case tools.ToolUpdatePosition:
		a.Kind = KindUpdatePosition
	case tools.ToolSetPrice:
		a.Kind = KindSetPrice
	case tools.ToolAddCash:
		a.Kind = KindAddCash
	case tools.ToolUpdateCash:
		a.Kind = KindUpdatePosition
		a.AssetType = models.AssetCash
	}

	resolveAction(snap, a, args)
	a.Summary = summarize(a)
	return a
}

func resolveAction(snap *models.Snapshot, a *PositionAction, args map[string]interface{}) {
	accountName := AccountNameFromArgs(args)

	switch a.Kind {
	case KindAddCash:
		resolveCashTarget(snap, a, accountName)
		return
	case KindUpdatePosition:
		if a.AssetType == models.AssetCash || (resolve.NormalizeCurrency(a.Symbol) != "" && len(FindPositionBySymbol(snap, a.Symbol)) == 0) {
			// Balance updates phrased against a currency route to the cash
			// position even when the model picked update_position.
			if resolveCashTarget(snap, a, accountName) {
				return
			}
		}
		resolvePositionTarget(snap, a, accountName)
	case KindSellPartial, KindSellAll, KindRemove:
		resolvePositionTarget(snap, a, accountName)
		inferSellPrice(snap, a)
	case KindSetPrice:
		// Price overrides do not require an existing position.
		if matches := FindPositionBySymbol(snap, a.Symbol); len(matches) > 0 {
			a.Symbol = matches[0].Symbol
		}
	case KindBuy:
		if accountName != "" {
			if m := resolve.ResolveAccount(snap.Accounts, accountName, resolve.AccountResolveOptions{}); m.Status == resolve.AccountMatched {
				a.MatchedAccountID = m.Account.ID
			}
		}
	}
}

func resolveCashTarget(snap *models.Snapshot, a *PositionAction, accountName string) bool {
	currency := resolve.NormalizeCurrency(a.Symbol)
	if currency == "" {
		currency = resolve.NormalizeCurrency(argString(a.Args, "currency"))
	}
	if currency == "" {
		a.Confidence = 0.5
		a.Warnings = append(a.Warnings, "no currency recognized")
		return false
	}

	accountID := ""
	if accountName != "" {
		m := resolve.ResolveAccount(snap.Accounts, accountName, resolve.AccountResolveOptions{ManualOnly: true})
		switch m.Status {
		case resolve.AccountMatched:
			accountID = m.Account.ID
			a.MatchedAccountID = m.Account.ID
		case resolve.AccountAmbiguous:
			a.Confidence = 0.5
			a.Warnings = append(a.Warnings, fmt.Sprintf("account %q is ambiguous between %s", accountName, strings.Join(m.Candidates, ", ")))
			return false
		case resolve.AccountUnmatched:
			a.Confidence = 0.5
			a.Warnings = append(a.Warnings, fmt.Sprintf("no manual account matches %q", accountName))
			return false
		}
	}

	pos := resolve.ResolveCashPosition(snap.Positions, currency, accountID)
	if pos == nil {
		a.Confidence = 0.5
		a.Warnings = append(a.Warnings, fmt.Sprintf("no unique %s cash position found", currency))
		return false
	}
	a.MatchedPositionID = pos.ID
	a.Symbol = pos.Symbol
	a.AssetType = models.AssetCash
	if a.MatchedAccountID == "" {
		a.MatchedAccountID = pos.AccountID
	}
	return true
}

// resolvePositionTarget picks the position an action applies to. With several
// positions sharing the symbol the ladder prefers, in order: the named
// account's position, an account-linked equity or metals position, any
// account-linked position, then a manual one. A tier is only decisive when it
// narrows to exactly one; otherwise the match stays empty and the executor
// refuses to guess.
func resolvePositionTarget(snap *models.Snapshot, a *PositionAction, accountName string) {
	matches := FindPositionBySymbol(snap, a.Symbol)
	if len(matches) == 0 {
		a.Confidence = 0.4
		a.Warnings = append(a.Warnings, fmt.Sprintf("no position found for %q", a.Symbol))
		return
	}
	a.Symbol = matches[0].Symbol
	if len(matches) == 1 {
		a.MatchedPositionID = matches[0].ID
		a.MatchedAccountID = matches[0].AccountID
		return
	}

	if accountName != "" {
		m := resolve.ResolveAccount(snap.Accounts, accountName, resolve.AccountResolveOptions{})
		if m.Status == resolve.AccountMatched {
			if one := uniqueIn(matches, func(p models.Position) bool { return p.AccountID == m.Account.ID }); one != nil {
				a.MatchedPositionID = one.ID
				a.MatchedAccountID = one.AccountID
				return
			}
		}
	}

	tiers := []func(models.Position) bool{
		func(p models.Position) bool {
			return p.AccountID != "" && (p.AssetClass == models.ClassEquity || p.AssetClass == models.ClassMetals)
		},
		func(p models.Position) bool { return p.AccountID != "" },
		func(p models.Position) bool { return p.AccountID == "" },
	}
	for _, tier := range tiers {
		if one := uniqueIn(matches, tier); one != nil {
			a.MatchedPositionID = one.ID
			a.MatchedAccountID = one.AccountID
			a.Confidence = 0.8
			return
		}
	}

	names := make([]string, 0, len(matches))
	for _, p := range matches {
		label := p.Symbol
		if acc := snap.AccountByID(p.AccountID); acc != nil {
			label = p.Symbol + " (" + acc.Name + ")"
		}
		names = append(names, label)
	}
	a.Confidence = 0.5
	a.Warnings = append(a.Warnings, fmt.Sprintf("%s is held in multiple places: %s", a.Symbol, strings.Join(names, ", ")))
}

func uniqueIn(positions []models.Position, keep func(models.Position) bool) *models.Position {
	var found *models.Position
	for i := range positions {
		if keep(positions[i]) {
			if found != nil {
				return nil
			}
			found = &positions[i]
		}
	}
	return found
}

// inferSellPrice fills a missing sell price from stored prices, trying the
// matched symbol first and the originally requested one second.
func inferSellPrice(snap *models.Snapshot, a *PositionAction) {
	if a.Price > 0 {
		return
	}
	for _, sym := range []string{a.Symbol, argString(a.Args, "symbol")} {
		if sym == "" {
			continue
		}
		if p, ok := snap.PriceFor(sym); ok && p > 0 {
			a.Price = p
			return
		}
	}
}

func summarize(a *PositionAction) string {
	switch a.Kind {
	case KindBuy:
		switch {
		case a.Amount > 0 && a.Price > 0:
			return fmt.Sprintf("Buy %s %s at %s (%s total)",
				utils.FormatAmount(a.Amount), a.Symbol, utils.FormatMoney(a.Price), utils.FormatMoney(a.Amount*a.Price))
		case a.TotalCost > 0:
			return fmt.Sprintf("Buy %s worth of %s", utils.FormatMoney(a.TotalCost), a.Symbol)
		default:
			return fmt.Sprintf("Buy %s", a.Symbol)
		}
	case KindSellPartial:
		note := sellPriceNote(a)
		if a.SellPercent > 0 {
			return fmt.Sprintf("Sell %s of %s%s", utils.FormatPercent(a.SellPercent/100), a.Symbol, note)
		}
		if a.Amount > 0 {
			return fmt.Sprintf("Sell %s %s%s", utils.FormatAmount(a.Amount), a.Symbol, note)
		}
		return fmt.Sprintf("Sell %s%s", a.Symbol, note)
	case KindSellAll:
		return fmt.Sprintf("Sell entire %s position%s", a.Symbol, sellPriceNote(a))
	case KindRemove:
		return fmt.Sprintf("Remove %s from the portfolio", a.Symbol)
	case KindUpdatePosition:
		if a.AssetType == models.AssetCash && a.Amount > 0 {
			return fmt.Sprintf("Set %s balance to %s", a.Symbol, utils.FormatMoney(a.Amount))
		}
		return fmt.Sprintf("Update %s", a.Symbol)
	case KindSetPrice:
		return fmt.Sprintf("Set %s price to %s", a.Symbol, utils.FormatMoney(a.NewPrice))
	case KindAddCash:
		return fmt.Sprintf("Add %s to %s", utils.FormatMoney(a.Amount), a.Symbol)
	}
	return string(a.Kind)
}

func sellPriceNote(a *PositionAction) string {
	if a.Price <= 0 {
		return ""
	}
	note := fmt.Sprintf(" at %s", utils.FormatMoney(a.Price))
	for _, w := range a.Warnings {
		if w == "price estimated from cost basis" {
			return note + " (price estimated from cost basis)"
		}
	}
	return note
}

func argString(args map[string]interface{}, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func argNumber(args map[string]interface{}, key string) float64 {
	if n := asNumber(args[key]); n != nil {
		return *n
	}
	return 0
}

func asNumber(v interface{}) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case float32:
		f := float64(t)
		return &f
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	}
	return nil
}

func assetTypeFromArgs(args map[string]interface{}) models.AssetType {
	switch strings.ToLower(argString(args, "assetType")) {
	case "crypto":
		return models.AssetCrypto
	case "stock":
		return models.AssetStock
	case "etf":
		return models.AssetETF
	case "cash":
		return models.AssetCash
	case "manual":
		return models.AssetManual
	}
	return ""
}
