package assist

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/action"
	"folio/internal/command"
	"folio/internal/config"
	"folio/internal/enrich"
	"folio/internal/models"
	"folio/internal/resolve"
	"folio/internal/store"
	"folio/internal/tools"
)

// scriptedClient returns canned responses in order and records every request.
type scriptedClient struct {
	responses []openai.ChatCompletionResponse
	requests  []openai.ChatCompletionRequest
}

func (s *scriptedClient) Chat(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		return openai.ChatCompletionResponse{}, assert.AnError
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func toolCallResponse(name, args string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					ID:       "call-1",
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: name, Arguments: args},
				}},
			}},
		},
	}
}

func sessionSnapshot() *models.Snapshot {
	now := time.Now()
	return &models.Snapshot{
		Accounts: []models.Account{
			{ID: "acc-rev", Name: "Revolut", Connection: models.Connection{DataSource: models.SourceManual}, CreatedAt: now},
		},
		Positions: []models.Position{
			{ID: "pos-eth", Symbol: "ETH", Type: models.AssetCrypto, Amount: 4, CostBasis: 8000, AddedAt: now, UpdatedAt: now},
			{ID: "pos-cash", Symbol: "CASH_EUR_REVOLUT", Type: models.AssetCash, Amount: 1000, AccountID: "acc-rev", AddedAt: now, UpdatedAt: now},
		},
		Prices: map[string]float64{"ETH": 3200},
	}
}

// stubEquities answers every quote with one fixed price.
type stubEquities struct{ price float64 }

func (s stubEquities) Quote(context.Context, string, string) (float64, error)      { return s.price, nil }
func (s stubEquities) DailyClose(context.Context, string, string) (float64, error) { return s.price, nil }

func newTestSession(client ChatClient) (*Session, *store.MemoryStore) {
	resolver := enrich.NewQuoteResolver(nil, nil, nil, config.Default().Quotes, zerolog.Nop())
	return newTestSessionWithResolver(client, resolver)
}

func newTestSessionWithResolver(client ChatClient, resolver *enrich.QuoteResolver) (*Session, *store.MemoryStore) {
	st := store.NewMemoryStore(sessionSnapshot())
	executor := tools.NewExecutor(st, zerolog.Nop())
	enricher := enrich.NewEnricher(resolver, resolve.DefaultSymbolMatchConfig(), zerolog.Nop())
	cfg := config.AssistConfig{Model: "test-model", MaxToolRounds: 4}
	return NewSession(client, st, executor, enricher, cfg, zerolog.Nop()), st
}

func TestAsk_SellHalfStagesPendingAction(t *testing.T) {
	// The model omits the symbol; enrichment recovers it from the user's
	// words and fills the price from the stored quote.
	client := &scriptedClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(tools.ToolSellPartial, `{"sellPercent": 50}`),
	}}
	session, st := newTestSession(client)

	result, err := session.Ask(context.Background(), "sold half my ETH yesterday")
	require.NoError(t, err)
	require.NotNil(t, result.PendingAction)

	pending := result.PendingAction
	assert.Equal(t, action.KindSellPartial, pending.Kind)
	assert.Equal(t, "ETH", pending.Symbol)
	assert.InDelta(t, 50.0, pending.SellPercent, 1e-9)
	assert.InDelta(t, 3200.0, pending.Price, 1e-9)
	assert.Equal(t, "pos-eth", pending.MatchedPositionID)
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	assert.Equal(t, yesterday, pending.Date)
	require.NotNil(t, result.Plan)
	assert.Equal(t, command.PlanReady, result.Plan.Status)

	// Nothing executed yet: the position is untouched.
	pos := st.Read().PositionByID("pos-eth")
	require.NotNil(t, pos)
	assert.InDelta(t, 4.0, pos.Amount, 1e-9)

	// The narrowed tool set still contained both sell tools.
	require.Len(t, client.requests, 1)
	var names []string
	for _, tool := range client.requests[0].Tools {
		names = append(names, tool.Function.Name)
	}
	assert.Contains(t, names, tools.ToolSellPartial)
	assert.Contains(t, names, tools.ToolSellAll)
}

func TestAsk_AddCashResolvesAccountAndPosition(t *testing.T) {
	client := &scriptedClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(tools.ToolAddCash, `{"currency": "EUR", "amount": 5000, "account": "Revolut"}`),
	}}
	session, _ := newTestSession(client)

	result, err := session.Ask(context.Background(), "add 5000 EUR to Revolut")
	require.NoError(t, err)
	require.NotNil(t, result.PendingAction)

	pending := result.PendingAction
	assert.Equal(t, action.KindAddCash, pending.Kind)
	assert.Equal(t, "pos-cash", pending.MatchedPositionID)
	assert.Equal(t, "acc-rev", pending.MatchedAccountID)
	assert.InDelta(t, 5000.0, pending.Amount, 1e-9)
	assert.Contains(t, result.Text, "Confirm:")
}

func TestAsk_QueryToolsExecuteInline(t *testing.T) {
	client := &scriptedClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(tools.ToolPortfolioSummary, `{}`),
		textResponse("You hold 2 positions worth about $13,800."),
	}}
	session, _ := newTestSession(client)

	result, err := session.Ask(context.Background(), "what is my portfolio worth?")
	require.NoError(t, err)
	assert.Nil(t, result.PendingAction)
	assert.Equal(t, "You hold 2 positions worth about $13,800.", result.Text)
	require.Len(t, result.ToolLog, 1)
	assert.Equal(t, tools.ToolPortfolioSummary, result.ToolLog[0].Tool)

	// The tool result was fed back as a tool-role message.
	require.Len(t, client.requests, 2)
	last := client.requests[1].Messages[len(client.requests[1].Messages)-1]
	assert.Equal(t, openai.ChatMessageRoleTool, last.Role)
}

func TestAsk_EmptyResponseRetriesWithFullCatalog(t *testing.T) {
	client := &scriptedClient{responses: []openai.ChatCompletionResponse{
		textResponse(""),
		textResponse("Here you go."),
	}}
	session, _ := newTestSession(client)

	result, err := session.Ask(context.Background(), "sell everything")
	require.NoError(t, err)
	assert.Equal(t, "Here you go.", result.Text)

	require.Len(t, client.requests, 2)
	assert.Less(t, len(client.requests[0].Tools), len(client.requests[1].Tools))
	assert.Len(t, client.requests[1].Tools, len(tools.AllTools()))
}

func TestAsk_BuyDerivesAmountPriceAndType(t *testing.T) {
	// "bought $50k worth of MSFT": only the spend is known. The quote fills
	// the price, the amount follows, and the equities path marks the new
	// position as a stock.
	client := &scriptedClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(tools.ToolBuy, `{"symbol": "MSFT", "totalCost": 50000}`),
	}}
	eq := stubEquities{price: 407}
	resolver := enrich.NewQuoteResolver(eq, eq, nil, config.Default().Quotes, zerolog.Nop())
	session, _ := newTestSessionWithResolver(client, resolver)

	result, err := session.Ask(context.Background(), "bought $50k worth of MSFT")
	require.NoError(t, err)
	require.NotNil(t, result.PendingAction)

	pending := result.PendingAction
	assert.Equal(t, action.KindBuy, pending.Kind)
	assert.Equal(t, "MSFT", pending.Symbol)
	assert.Equal(t, models.AssetStock, pending.AssetType)
	assert.InDelta(t, 407.0, pending.Price, 1e-9)
	assert.InDelta(t, 50000.0/407.0, pending.Amount, 0.01)
	assert.InDelta(t, 50000.0, pending.TotalCost, 1e-9)
}

func TestAsk_RoundLimitReturnsPartialResult(t *testing.T) {
	// The model keeps calling query tools and never produces a final answer;
	// the loop stops at the round budget and hands back the tool log.
	client := &scriptedClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(tools.ToolPortfolioSummary, `{}`),
		toolCallResponse(tools.ToolPortfolioSummary, `{}`),
	}}
	session, _ := newTestSession(client)
	session.cfg.MaxToolRounds = 2

	result, err := session.Ask(context.Background(), "what is my portfolio worth?")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.ToolLog, 2)
	assert.NotEmpty(t, result.Text)
	assert.Nil(t, result.PendingAction)
}

func TestAsk_AmbiguityAsksForClarification(t *testing.T) {
	client := &scriptedClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(tools.ToolAddCash, `{"currency": "GBP", "amount": 100}`),
	}}
	session, _ := newTestSession(client)

	// No GBP cash position exists.
	result, err := session.Ask(context.Background(), "add 100 GBP")
	require.NoError(t, err)
	require.NotNil(t, result.Plan)
	assert.Equal(t, command.PlanNeedsClarification, result.Plan.Status)
	assert.Contains(t, result.Text, "clarification")
}
