package tools

import (
	"encoding/json"

	"github.com/sashabaranov/go-openai"
)

// Definitions returns the full tool catalog as OpenAI function definitions.
func Definitions() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolPortfolioSummary,
				Description: "Get a summary of the portfolio: total value, positions count, cash balances, and top holdings.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {}
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolListPositions,
				Description: "List portfolio positions, optionally filtered by symbol, asset type, or account name.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Filter to one symbol (e.g., BTC, MSFT)"
						},
						"assetType": {
							"type": "string",
							"enum": ["crypto", "stock", "etf", "cash", "manual"],
							"description": "Filter by asset type"
						},
						"account": {
							"type": "string",
							"description": "Filter by account name"
						}
					}
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolGetPrice,
				Description: "Get the current stored price for a symbol, including any user override.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Asset symbol"
						}
					},
					"required": ["symbol"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolListTransactions,
				Description: "List recorded buy/sell transactions, newest first, optionally filtered by symbol.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Filter to one symbol"
						},
						"limit": {
							"type": "integer",
							"description": "Maximum entries to return",
							"default": 20
						}
					}
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolBuy,
				Description: "Record buying an asset. Provide whichever of amount, price, and totalCost the user stated; missing values are derived.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Asset symbol (e.g., BTC, MSFT)"
						},
						"assetType": {
							"type": "string",
							"enum": ["crypto", "stock", "etf", "manual"],
							"description": "Asset type"
						},
						"amount": {
							"type": "number",
							"description": "Units bought"
						},
						"price": {
							"type": "number",
							"description": "Price per unit in USD"
						},
						"totalCost": {
							"type": "number",
							"description": "Total spend in USD (e.g., 50000 for 'buy $50k of MSFT')"
						},
						"date": {
							"type": "string",
							"description": "Purchase date YYYY-MM-DD, or 'yesterday'"
						},
						"account": {
							"type": "string",
							"description": "Account name if the user named one"
						}
					},
					"required": ["symbol"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolSellPartial,
				Description: "Record selling part of a position. Prefer sellPercent when the user speaks in fractions ('sold half').",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Asset symbol"
						},
						"sellPercent": {
							"type": "number",
							"description": "Percent of the position to sell (50 for half)"
						},
						"amount": {
							"type": "number",
							"description": "Units sold, if the user stated units"
						},
						"price": {
							"type": "number",
							"description": "Sale price per unit in USD"
						},
						"date": {
							"type": "string",
							"description": "Sale date YYYY-MM-DD, or 'yesterday'"
						},
						"account": {
							"type": "string",
							"description": "Account name if the user named one"
						}
					},
					"required": ["symbol"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolSellAll,
				Description: "Record selling an entire position.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Asset symbol"
						},
						"price": {
							"type": "number",
							"description": "Sale price per unit in USD"
						},
						"date": {
							"type": "string",
							"description": "Sale date YYYY-MM-DD, or 'yesterday'"
						},
						"account": {
							"type": "string",
							"description": "Account name if the user named one"
						}
					},
					"required": ["symbol"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolRemovePosition,
				Description: "Remove a position from tracking without recording a sale.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Asset symbol"
						},
						"account": {
							"type": "string",
							"description": "Account name if the user named one"
						}
					},
					"required": ["symbol"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolUpdatePosition,
				Description: "Update fields of an existing position: amount, cost basis, or name.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Asset symbol"
						},
						"amount": {
							"type": "number",
							"description": "New amount held"
						},
						"costBasis": {
							"type": "number",
							"description": "New total cost basis in USD"
						},
						"name": {
							"type": "string",
							"description": "New display name"
						},
						"account": {
							"type": "string",
							"description": "Account name if the user named one"
						}
					},
					"required": ["symbol"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolSetPrice,
				Description: "Set a manual price override for a symbol, taking precedence over market prices.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Asset symbol"
						},
						"price": {
							"type": "number",
							"description": "Override price per unit in USD"
						}
					},
					"required": ["symbol", "price"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolAddCash,
				Description: "Add money to an existing cash balance ('add 5000 EUR to Revolut').",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"currency": {
							"type": "string",
							"description": "ISO currency code (EUR, USD, GBP)"
						},
						"amount": {
							"type": "number",
							"description": "Amount to add"
						},
						"account": {
							"type": "string",
							"description": "Account holding the cash balance"
						}
					},
					"required": ["currency", "amount"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolUpdateCash,
				Description: "Set a cash balance to an absolute value ('my Revolut EUR balance is 12000').",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"currency": {
							"type": "string",
							"description": "ISO currency code (EUR, USD, GBP)"
						},
						"amount": {
							"type": "number",
							"description": "New balance"
						},
						"account": {
							"type": "string",
							"description": "Account holding the cash balance"
						}
					},
					"required": ["currency", "amount"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolAddWallet,
				Description: "Start tracking an on-chain wallet or exchange account.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"address": {
							"type": "string",
							"description": "Wallet address"
						},
						"name": {
							"type": "string",
							"description": "Display name for the account"
						},
						"dataSource": {
							"type": "string",
							"enum": ["debank", "helius", "kraken", "coinbase", "manual"],
							"description": "Data source for syncing"
						},
						"chains": {
							"type": "array",
							"items": {"type": "string"},
							"description": "Chains to track (e.g., eth, arb)"
						}
					},
					"required": ["address"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolRemoveWallet,
				Description: "Stop tracking a wallet or account and remove its positions.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"address": {
							"type": "string",
							"description": "Wallet address"
						},
						"name": {
							"type": "string",
							"description": "Account display name, when the user referenced it by name"
						}
					}
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolToggleSetting,
				Description: "Toggle a display setting on or off.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"setting": {
							"type": "string",
							"enum": ["hideBalances", "hideDust"],
							"description": "Setting to toggle"
						},
						"value": {
							"type": "boolean",
							"description": "Explicit value; omitted means flip"
						}
					},
					"required": ["setting"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolSetRiskFreeRate,
				Description: "Set the risk-free rate used in performance calculations.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"rate": {
							"type": "number",
							"description": "Annual rate as a decimal (0.045 for 4.5%)"
						}
					},
					"required": ["rate"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolNavigate,
				Description: "Navigate the user to a view of the app.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"view": {
							"type": "string",
							"enum": ["portfolio", "transactions", "performance", "settings"],
							"description": "Destination view"
						}
					},
					"required": ["view"]
				}`),
			},
		},
	}
}

// Narrow filters the catalog down to the given tool names, preserving catalog
// order. An empty or fully-unknown filter returns the complete catalog so a
// misclassification can never hide tools from the model.
func Narrow(toolIDs []string) []openai.Tool {
	all := Definitions()
	if len(toolIDs) == 0 {
		return all
	}
	wanted := make(map[string]bool, len(toolIDs))
	for _, id := range toolIDs {
		wanted[id] = true
	}
	var out []openai.Tool
	for _, t := range all {
		if t.Function != nil && wanted[t.Function.Name] {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}
