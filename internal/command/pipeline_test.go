package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/models"
	"folio/internal/tools"
)

func pipelineSnapshot() *models.Snapshot {
	now := time.Now()
	return &models.Snapshot{
		Accounts: []models.Account{
			{ID: "acc-rev", Name: "Revolut", Connection: models.Connection{DataSource: models.SourceManual}, CreatedAt: now},
		},
		Positions: []models.Position{
			{ID: "pos-eth", Symbol: "ETH", Type: models.AssetCrypto, Amount: 4},
			{ID: "pos-cash", Symbol: "CASH_EUR_REVOLUT", Type: models.AssetCash, Amount: 1000, AccountID: "acc-rev"},
		},
	}
}

func TestBuildCommandFrame_QuantityShapes(t *testing.T) {
	// Buys carry notional when the spend is known.
	frame := BuildCommandFrame(tools.ToolBuy, map[string]interface{}{
		"symbol": "msft", "totalCost": 50000.0,
	}, "buy $50k of MSFT")
	assert.Equal(t, FrameMutation, frame.Kind)
	assert.Equal(t, "MSFT", frame.Target.Symbol)
	assert.InDelta(t, 50000.0, frame.Quantity.Notional, 1e-9)
	assert.Zero(t, frame.Quantity.Units)

	// Partial sells prefer percent over units.
	frame = BuildCommandFrame(tools.ToolSellPartial, map[string]interface{}{
		"symbol": "ETH", "sellPercent": 50.0, "amount": 2.0,
	}, "sold half my ETH")
	assert.InDelta(t, 50.0, frame.Quantity.Percent, 1e-9)
	assert.Zero(t, frame.Quantity.Units)

	// Full sells carry no quantity.
	frame = BuildCommandFrame(tools.ToolSellAll, map[string]interface{}{
		"symbol": "ETH", "amount": 4.0,
	}, "sell all my ETH")
	assert.Zero(t, frame.Quantity.Units)
	assert.Zero(t, frame.Quantity.Percent)
}

func TestBuildCommandFrame_ModeInference(t *testing.T) {
	assert.Equal(t, ModeDelta, BuildCommandFrame(tools.ToolAddCash, map[string]interface{}{}, "add 5000 EUR").Mode)
	assert.Equal(t, ModeAbsolute, BuildCommandFrame(tools.ToolUpdateCash, map[string]interface{}{}, "my balance is 12000").Mode)
	assert.Equal(t, ModeDelta, BuildCommandFrame(tools.ToolUpdateCash, map[string]interface{}{}, "I deposited another 500").Mode)
	assert.Empty(t, BuildCommandFrame(tools.ToolBuy, map[string]interface{}{}, "buy BTC").Mode)
}

func TestBuildCommandFrame_AccountKeyAliases(t *testing.T) {
	for _, key := range []string{"account", "accountName", "bankAccount", "destination", "to"} {
		frame := BuildCommandFrame(tools.ToolAddCash, map[string]interface{}{key: "Revolut"}, "")
		assert.Equal(t, "Revolut", frame.Target.AccountName, "key %q", key)
	}
}

func TestResolveCommandTarget_CashCommand(t *testing.T) {
	snap := pipelineSnapshot()
	frame := BuildCommandFrame(tools.ToolAddCash, map[string]interface{}{
		"currency": "EUR", "amount": 5000.0, "account": "Revolut",
	}, "add 5000 EUR to Revolut")

	res := ResolveCommandTarget(frame, snap)
	require.Equal(t, ResolutionMatched, res.Status)
	assert.Equal(t, "acc-rev", res.Target.AccountID)
	assert.Equal(t, "pos-cash", res.Target.PositionID)
	assert.Equal(t, "CASH_EUR_REVOLUT", res.Target.Symbol)
}

func TestResolveCommandTarget_PositionRequiredEscalates(t *testing.T) {
	snap := pipelineSnapshot()

	frame := BuildCommandFrame(tools.ToolSellAll, map[string]interface{}{"symbol": "DOGE"}, "sell all my DOGE")
	res := ResolveCommandTarget(frame, snap)
	assert.Equal(t, ResolutionUnresolved, res.Status)

	// A buy for an unknown symbol is fine; it creates the position.
	frame = BuildCommandFrame(tools.ToolBuy, map[string]interface{}{"symbol": "DOGE", "amount": 100.0}, "buy 100 DOGE")
	res = ResolveCommandTarget(frame, snap)
	assert.Equal(t, ResolutionMatched, res.Status)
}

func TestResolveCommandTarget_AmbiguousPosition(t *testing.T) {
	snap := pipelineSnapshot()
	snap.Positions = append(snap.Positions, models.Position{ID: "pos-eth2", Symbol: "ETH", Type: models.AssetCrypto, Amount: 1})

	frame := BuildCommandFrame(tools.ToolSellAll, map[string]interface{}{"symbol": "ETH"}, "sell all my ETH")
	res := ResolveCommandTarget(frame, snap)
	assert.Equal(t, ResolutionAmbiguous, res.Status)
	assert.Len(t, res.Candidates, 2)
}

func TestBuildExecutionPlan_ResolvedTargetWins(t *testing.T) {
	snap := pipelineSnapshot()
	frame := BuildCommandFrame(tools.ToolSellPartial, map[string]interface{}{
		"symbol": "ETH", "sellPercent": 50.0,
	}, "sold half my ETH")
	res := ResolveCommandTarget(frame, snap)
	require.Equal(t, ResolutionMatched, res.Status)

	plan := BuildExecutionPlan(frame, res)
	assert.Equal(t, PlanReady, plan.Status)
	assert.Equal(t, "ETH", plan.ResolvedArgs["symbol"])
	assert.Equal(t, "pos-eth", plan.ResolvedArgs["positionId"])
	assert.InDelta(t, 50.0, plan.ResolvedArgs["sellPercent"].(float64), 1e-9)
}

func TestBuildExecutionPlan_ClarificationOnMiss(t *testing.T) {
	snap := pipelineSnapshot()
	frame := BuildCommandFrame(tools.ToolSellAll, map[string]interface{}{"symbol": "DOGE"}, "sell all my DOGE")
	plan := BuildExecutionPlan(frame, ResolveCommandTarget(frame, snap))

	assert.Equal(t, PlanNeedsClarification, plan.Status)
	assert.NotEmpty(t, plan.Warnings)
}
