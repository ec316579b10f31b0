// Package intent classifies raw user text into a command intent and a
// narrowed slice of candidate tool IDs. Narrowing the tool set offered to the
// language model measurably improves its tool-choice accuracy and latency; it
// is an optimization, not a gate — callers fall back to the full catalog when
// classification yields nothing or the model's first response is empty.
package intent

import (
	"regexp"
	"strings"

	"folio/internal/tools"
)

// Intent is a coarse classification of what the user asked for.
type Intent string

const (
	IntentBuy             Intent = "buy"
	IntentSellPartial     Intent = "sell_partial"
	IntentSellAll         Intent = "sell_all"
	IntentAddCash         Intent = "add_cash"
	IntentUpdateCash      Intent = "update_cash"
	IntentAddWallet       Intent = "add_wallet"
	IntentRemoveWallet    Intent = "remove_wallet"
	IntentRemovePosition  Intent = "remove_position"
	IntentSetPrice        Intent = "set_price"
	IntentUpdatePosition  Intent = "update_position"
	IntentToggle          Intent = "toggle"
	IntentSetRiskFreeRate Intent = "set_risk_free_rate"
	IntentNavigate        Intent = "navigate"
	IntentQuery           Intent = "query"
	IntentUnknown         Intent = "unknown"
)

// Classification is the classifier output. An empty ToolIDs slice signals the
// caller to offer the full tool catalog.
type Classification struct {
	Intent  Intent
	ToolIDs []string
}

// rule is one entry of the ordered cascade. First match wins, so the slice
// order encodes precedence: wallet removal must outrank the generic remove
// rule, cash top-ups must outrank the buy rule.
type rule struct {
	match   func(text string) bool
	intent  Intent
	toolIDs []string
}

var (
	addVerbRe    = regexp.MustCompile(`\b(add|added|adding|deposit|deposited|top(?:ped)? up)\b`)
	removeVerbRe = regexp.MustCompile(`\b(remove|removed|delete|deleted|untrack|forget)\b`)
	buyRe        = regexp.MustCompile(`\b(buy|bought|buying|purchase|purchased)\b`)
	sellRe       = regexp.MustCompile(`\b(sell|sold|selling)\b`)
	sellAllRe    = regexp.MustCompile(`\b(all|everything|entire)\b`)
	walletRe     = regexp.MustCompile(`\b(wallet|address)\b`)
	balanceSetRe = regexp.MustCompile(`\b(set|update|change|correct)\b.*\bbalance\b|\bbalance\b.*\b(is|to)\b`)
	priceSetRe   = regexp.MustCompile(`\b(set|update|change|override)\b.*\bprice\b`)
	updateRe     = regexp.MustCompile(`\b(update|change|correct|adjust|edit)\b`)
	toggleRe     = regexp.MustCompile(`\b(hide|show|unhide)\b.*\b(balance|balances|dust)\b`)
	riskFreeRe   = regexp.MustCompile(`\brisk[ -]?free\b`)
	navigateRe   = regexp.MustCompile(`\b(go to|open|navigate|take me)\b`)
	questionRe   = regexp.MustCompile(`^(what|how|which|when|where|who|why|am|is|are|do|does|did|can|could|should)\b`)
	queryWordRe  = regexp.MustCompile(`\b(show|list|top|summary|exposure|performance|allocation|leverage|debt|risk|perp)\b`)
	currencyRe   = regexp.MustCompile(`\b(usd|eur|gbp|chf|jpy|cad|aud|nzd|sek|nok|dkk|pln|czk|huf|try|inr|cny|hkd|sgd|brl|mxn)\b`)
	cashWordRe   = regexp.MustCompile(`\bcash\b`)
)

var rules = []rule{
	{
		match:   func(t string) bool { return walletRe.MatchString(t) && addVerbRe.MatchString(t) },
		intent:  IntentAddWallet,
		toolIDs: []string{tools.ToolAddWallet},
	},
	{
		// Checked before the generic remove rule: "remove wallet 0xabc" must
		// never classify as removing a position.
		match:   func(t string) bool { return walletRe.MatchString(t) && removeVerbRe.MatchString(t) },
		intent:  IntentRemoveWallet,
		toolIDs: []string{tools.ToolRemoveWallet},
	},
	{
		match: func(t string) bool {
			return addVerbRe.MatchString(t) && (cashWordRe.MatchString(t) || currencyRe.MatchString(t))
		},
		intent:  IntentAddCash,
		toolIDs: []string{tools.ToolAddCash},
	},
	{
		match:   func(t string) bool { return balanceSetRe.MatchString(t) },
		intent:  IntentUpdateCash,
		toolIDs: []string{tools.ToolUpdateCash, tools.ToolAddCash},
	},
	{
		// "buy cash" is a top-up, handled by the add_cash rule above.
		match:   func(t string) bool { return buyRe.MatchString(t) && !cashWordRe.MatchString(t) },
		intent:  IntentBuy,
		toolIDs: []string{tools.ToolBuy},
	},
	{
		match:   func(t string) bool { return sellRe.MatchString(t) && sellAllRe.MatchString(t) },
		intent:  IntentSellAll,
		toolIDs: []string{tools.ToolSellAll, tools.ToolSellPartial},
	},
	{
		match:   func(t string) bool { return sellRe.MatchString(t) },
		intent:  IntentSellPartial,
		toolIDs: []string{tools.ToolSellPartial, tools.ToolSellAll},
	},
	{
		match:   func(t string) bool { return removeVerbRe.MatchString(t) },
		intent:  IntentRemovePosition,
		toolIDs: []string{tools.ToolRemovePosition},
	},
	{
		match:   func(t string) bool { return priceSetRe.MatchString(t) },
		intent:  IntentSetPrice,
		toolIDs: []string{tools.ToolSetPrice},
	},
	{
		match:   func(t string) bool { return riskFreeRe.MatchString(t) },
		intent:  IntentSetRiskFreeRate,
		toolIDs: []string{tools.ToolSetRiskFreeRate},
	},
	{
		match:   func(t string) bool { return toggleRe.MatchString(t) },
		intent:  IntentToggle,
		toolIDs: []string{tools.ToolToggleSetting},
	},
	{
		match:   func(t string) bool { return updateRe.MatchString(t) },
		intent:  IntentUpdatePosition,
		toolIDs: []string{tools.ToolUpdatePosition, tools.ToolUpdateCash},
	},
	{
		match:   func(t string) bool { return navigateRe.MatchString(t) },
		intent:  IntentNavigate,
		toolIDs: []string{tools.ToolNavigate},
	},
	{
		match: func(t string) bool {
			return questionRe.MatchString(t) || queryWordRe.MatchString(t) || strings.HasSuffix(t, "?")
		},
		intent:  IntentQuery,
		toolIDs: tools.QueryTools(),
	},
}

// Classify maps raw user text to an intent and candidate tool IDs. Pure and
// stateless; the cascade is evaluated top to bottom with first-match-wins
// semantics.
func Classify(text string) Classification {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return Classification{Intent: IntentUnknown}
	}
	for _, r := range rules {
		if r.match(t) {
			return Classification{Intent: r.intent, ToolIDs: r.toolIDs}
		}
	}
	return Classification{Intent: IntentUnknown}
}
