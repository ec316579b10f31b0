// Package tools defines the tool surface offered to the language model and
// the executor that dispatches resolved tool calls against the store.
package tools

// Query tool names. Query tools read a snapshot and shape a response; they
// never mutate.
const (
	ToolPortfolioSummary = "portfolio_summary"
	ToolListPositions    = "list_positions"
	ToolGetPrice         = "get_price"
	ToolListTransactions = "list_transactions"
)

// Mutation tool names.
const (
	ToolBuy             = "buy_position"
	ToolSellPartial     = "sell_partial"
	ToolSellAll         = "sell_all"
	ToolRemovePosition  = "remove_position"
	ToolUpdatePosition  = "update_position"
	ToolSetPrice        = "set_price"
	ToolAddCash         = "add_cash"
	ToolUpdateCash      = "update_cash" // legacy alias for cash balance updates
	ToolAddWallet       = "add_wallet"
	ToolRemoveWallet    = "remove_wallet"
	ToolToggleSetting   = "toggle_setting"
	ToolSetRiskFreeRate = "set_risk_free_rate"
	ToolNavigate        = "navigate"
)

// QueryTools lists every read-only tool.
func QueryTools() []string {
	return []string{ToolPortfolioSummary, ToolListPositions, ToolGetPrice, ToolListTransactions}
}

// AllTools lists the full tool catalog, offered when intent classification
// cannot narrow the set.
func AllTools() []string {
	return []string{
		ToolPortfolioSummary, ToolListPositions, ToolGetPrice, ToolListTransactions,
		ToolBuy, ToolSellPartial, ToolSellAll, ToolRemovePosition, ToolUpdatePosition,
		ToolSetPrice, ToolAddCash, ToolUpdateCash, ToolAddWallet, ToolRemoveWallet,
		ToolToggleSetting, ToolSetRiskFreeRate, ToolNavigate,
	}
}

// Confirmable is the closed set of mutation tools that must be staged for
// explicit user confirmation before committing. Every other mutation tool is
// considered low-risk/reversible and executes immediately.
var Confirmable = map[string]bool{
	ToolBuy:            true,
	ToolSellPartial:    true,
	ToolSellAll:        true,
	ToolRemovePosition: true,
	ToolUpdatePosition: true,
	ToolSetPrice:       true,
	ToolAddCash:        true,
	ToolUpdateCash:     true,
}

// IsMutation reports whether the tool name belongs to the mutation family.
func IsMutation(name string) bool {
	switch name {
	case ToolBuy, ToolSellPartial, ToolSellAll, ToolRemovePosition, ToolUpdatePosition,
		ToolSetPrice, ToolAddCash, ToolUpdateCash, ToolAddWallet, ToolRemoveWallet,
		ToolToggleSetting, ToolSetRiskFreeRate:
		return true
	}
	return false
}
