package enrich

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"folio/internal/models"
	"folio/internal/resolve"
)

// Enricher rewrites tool-call arguments into an executable form: corrected
// symbols, coerced numbers, normalized dates, and a resolved price. It copies
// the argument map and never mutates the caller's.
type Enricher struct {
	resolver  *QuoteResolver
	symbolCfg resolve.SymbolMatchConfig
	logger    zerolog.Logger
}

// NewEnricher creates an enricher.
func NewEnricher(resolver *QuoteResolver, symbolCfg resolve.SymbolMatchConfig, logger zerolog.Logger) *Enricher {
	return &Enricher{
		resolver:  resolver,
		symbolCfg: symbolCfg,
		logger:    logger.With().Str("component", "enricher").Logger(),
	}
}

func getString(args map[string]interface{}, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func copyArgs(args map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(args)+4)
	for k, v := range args {
		out[k] = v
	}
	return out
}

func assetTypeHint(args map[string]interface{}) models.AssetType {
	switch strings.ToLower(getString(args, "assetType")) {
	case "crypto":
		return models.AssetCrypto
	case "stock":
		return models.AssetStock
	case "etf":
		return models.AssetETF
	case "cash":
		return models.AssetCash
	}
	return ""
}

// resolveAssetType takes the explicit argument first, then the type of an
// existing position holding the symbol.
func resolveAssetType(snap *models.Snapshot, args map[string]interface{}, symbol string) models.AssetType {
	if hint := assetTypeHint(args); hint != "" {
		return hint
	}
	if symbol == "" {
		return ""
	}
	if matches := snap.PositionsBySymbol(symbol); len(matches) > 0 {
		return matches[0].Type
	}
	return ""
}

// EnrichBuy completes a buy: it derives whichever of amount, price, and
// totalCost is missing, quoting the market when only the spend is known
// ("buy $50k of MSFT"), and fills the asset type from the explicit argument,
// an existing position with the same symbol, or the provider path that
// quoted the price. A price it cannot derive stays absent and the executor
// rejects the buy explicitly rather than recording a zero cost basis.
func (e *Enricher) EnrichBuy(ctx context.Context, snap *models.Snapshot, args map[string]interface{}, userText string) (map[string]interface{}, []string) {
	out := copyArgs(args)
	var warnings []string

	symbol := strings.ToUpper(getString(args, "symbol"))
	if symbol != "" {
		out["symbol"] = symbol
	}
	atype := resolveAssetType(snap, args, symbol)

	date := ExtractDateFromText(userText, getString(args, "date"))
	out["date"] = date

	amount := AsPositiveNumber(args["amount"])
	price := AsPositiveNumber(args["price"])
	totalCost := AsPositiveNumber(args["totalCost"])

	if price == nil && amount != nil && totalCost != nil {
		p := round8(*totalCost / *amount)
		price = &p
	}
	if price == nil && symbol != "" {
		var quoted models.AssetType
		price, quoted = e.resolver.ResolvePrice(ctx, snap, symbol, date, atype)
		if atype == "" {
			atype = quoted
		}
	}
	if amount == nil && totalCost != nil && price != nil {
		a := round8(*totalCost / *price)
		amount = &a
	}
	if totalCost == nil && amount != nil && price != nil {
		t := round8(*amount * *price)
		totalCost = &t
	}

	if amount != nil {
		out["amount"] = *amount
	}
	if price != nil {
		out["price"] = *price
	} else {
		delete(out, "price")
		warnings = append(warnings, "price could not be resolved")
	}
	if totalCost != nil {
		out["totalCost"] = *totalCost
	}
	if atype != "" {
		out["assetType"] = string(atype)
	}

	return out, warnings
}

// EnrichSell completes a sell: the symbol comes from the argument or is
// guessed from the user's own words, then fuzzy-corrected against the
// portfolio. The asset type comes from the matching position. The price
// falls back from the argument to a market quote to the position's average
// cost, flagging the estimate when it does.
func (e *Enricher) EnrichSell(ctx context.Context, snap *models.Snapshot, args map[string]interface{}, userText string) (map[string]interface{}, []string) {
	out := copyArgs(args)
	var warnings []string

	catalog := snap.SymbolCatalog()
	symbol := getString(args, "symbol")
	if symbol == "" {
		symbol = resolve.GuessSymbolFromText(catalog, userText, e.symbolCfg)
	} else {
		symbol = resolve.ResolveClosestSymbol(catalog, symbol, e.symbolCfg)
	}
	if symbol != "" {
		out["symbol"] = symbol
	}
	atype := resolveAssetType(snap, args, symbol)
	if atype != "" {
		out["assetType"] = string(atype)
	}

	date := ExtractDateFromText(userText, getString(args, "date"))
	out["date"] = date

	if pct := AsPositiveNumber(args["sellPercent"]); pct != nil {
		out["sellPercent"] = *pct
	}
	if amount := AsPositiveNumber(args["amount"]); amount != nil {
		out["amount"] = *amount
	}

	price := AsPositiveNumber(args["price"])
	if price == nil && symbol != "" {
		price, _ = e.resolver.ResolvePrice(ctx, snap, symbol, date, atype)
	}
	if price == nil && symbol != "" {
		if p, ok := costBasisPrice(snap, symbol); ok {
			price = &p
			warnings = append(warnings, "price estimated from cost basis")
		}
	}
	if price != nil {
		out["price"] = *price
	} else {
		delete(out, "price")
		warnings = append(warnings, "price could not be resolved")
	}

	return out, warnings
}

// costBasisPrice derives a per-unit price from the average cost of the
// positions holding the symbol.
func costBasisPrice(snap *models.Snapshot, symbol string) (float64, bool) {
	var totalCost, totalAmount float64
	for _, p := range snap.PositionsBySymbol(symbol) {
		if p.CostBasis > 0 && p.Amount > 0 {
			totalCost += p.CostBasis
			totalAmount += p.Amount
		}
	}
	if totalAmount <= 0 || totalCost <= 0 {
		return 0, false
	}
	return round8(totalCost / totalAmount), true
}

// EnrichUpdate fuzzy-corrects the symbol and coerces numeric fields for an
// update_position call.
func (e *Enricher) EnrichUpdate(snap *models.Snapshot, args map[string]interface{}) map[string]interface{} {
	out := copyArgs(args)
	if symbol := getString(args, "symbol"); symbol != "" {
		out["symbol"] = resolve.ResolveClosestSymbol(snap.SymbolCatalog(), symbol, e.symbolCfg)
	}
	for _, key := range []string{"amount", "costBasis", "price"} {
		if n := AsPositiveNumber(args[key]); n != nil {
			out[key] = *n
		}
	}
	return out
}

// EnrichRemove fuzzy-corrects the symbol for a remove_position call.
func (e *Enricher) EnrichRemove(snap *models.Snapshot, args map[string]interface{}) map[string]interface{} {
	out := copyArgs(args)
	if symbol := getString(args, "symbol"); symbol != "" {
		out["symbol"] = resolve.ResolveClosestSymbol(snap.SymbolCatalog(), symbol, e.symbolCfg)
	}
	return out
}

// EnrichSetPrice normalizes the symbol and coerces the override price.
func (e *Enricher) EnrichSetPrice(snap *models.Snapshot, args map[string]interface{}) map[string]interface{} {
	out := copyArgs(args)
	if symbol := getString(args, "symbol"); symbol != "" {
		out["symbol"] = resolve.ResolveClosestSymbol(snap.SymbolCatalog(), symbol, e.symbolCfg)
	}
	for _, key := range []string{"price", "newPrice"} {
		if n := AsPositiveNumber(args[key]); n != nil {
			out[key] = *n
		}
	}
	return out
}
