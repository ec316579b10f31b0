package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	apperrors "folio/internal/errors"
	"folio/internal/store"
)

// Executor dispatches resolved tool calls against the store. Query tools read
// a snapshot; mutation tools go through Mutate so each call commits atomically
// or not at all. Domain failures are returned as a JSON {"error": ...} body
// with a nil error so the conversation loop can feed them back to the model;
// the error return is reserved for malformed calls.
type Executor struct {
	store  store.Store
	logger zerolog.Logger
}

// NewExecutor creates a tool executor.
func NewExecutor(st store.Store, logger zerolog.Logger) *Executor {
	return &Executor{
		store:  st,
		logger: logger.With().Str("component", "executor").Logger(),
	}
}

// Execute runs one tool call and returns the result as a JSON string.
func (e *Executor) Execute(ctx context.Context, toolName string, args json.RawMessage) (string, error) {
	params := map[string]interface{}{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return "", fmt.Errorf("parsing tool arguments: %w", err)
		}
	}

	e.logger.Debug().Str("tool", toolName).Interface("args", params).Msg("executing tool")

	switch toolName {
	case ToolPortfolioSummary:
		return e.portfolioSummary()
	case ToolListPositions:
		return e.listPositions(params)
	case ToolGetPrice:
		return e.getPrice(params)
	case ToolListTransactions:
		return e.listTransactions(params)
	case ToolBuy:
		return e.buy(params)
	case ToolSellPartial:
		return e.sell(params, false)
	case ToolSellAll:
		return e.sell(params, true)
	case ToolRemovePosition:
		return e.removePosition(params)
	case ToolUpdatePosition, ToolUpdateCash:
		return e.updatePosition(params)
	case ToolSetPrice:
		return e.setPrice(params)
	case ToolAddCash:
		return e.addCash(params)
	case ToolAddWallet:
		return e.addWallet(params)
	case ToolRemoveWallet:
		return e.removeWallet(params)
	case ToolToggleSetting:
		return e.toggleSetting(params)
	case ToolSetRiskFreeRate:
		return e.setRiskFreeRate(params)
	case ToolNavigate:
		return e.navigate(params)
	default:
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnknownTool, toolName)
	}
}

func toolError(format string, args ...interface{}) (string, error) {
	body, _ := json.Marshal(map[string]string{"error": fmt.Sprintf(format, args...)})
	return string(body), nil
}

func toolResult(v interface{}) (string, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding tool result: %w", err)
	}
	return string(body), nil
}

func getStringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return defaultVal
}

func getFloatParam(params map[string]interface{}, key string, defaultVal float64) float64 {
	if v, ok := params[key].(float64); ok {
		return v
	}
	return defaultVal
}

func getIntParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	return defaultVal
}

func getBoolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return defaultVal
}
