package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"folio/internal/action"
	"folio/internal/command"
	"folio/internal/config"
	"folio/internal/enrich"
	"folio/internal/intent"
	"folio/internal/store"
	"folio/internal/tools"
)

const systemPrompt = `You are a portfolio assistant. You manage the user's personal
portfolio through the provided tools. Use tools to answer questions about
positions, prices, and transactions. For buys, sells, balance changes, and
removals, call the matching tool with every value the user stated; missing
values are derived later. Amounts like "$50k" mean 50000 dollars. Do not
invent prices. Answer concisely.`

// ToolCallRecord is one executed tool call, kept for display and debugging.
type ToolCallRecord struct {
	Tool   string `json:"tool"`
	Args   string `json:"args"`
	Result string `json:"result"`
}

// Result is the outcome of one Ask: either a textual answer (with any query
// tools already executed) or a staged PendingAction awaiting confirmation.
type Result struct {
	Text          string                 `json:"text,omitempty"`
	PendingAction *action.PositionAction `json:"pendingAction,omitempty"`
	Plan          *command.ExecutionPlan `json:"plan,omitempty"`
	ToolLog       []ToolCallRecord       `json:"toolLog,omitempty"`
}

// Session drives the conversation loop for one user.
type Session struct {
	client   ChatClient
	store    store.Store
	executor *tools.Executor
	enricher *enrich.Enricher
	cfg      config.AssistConfig
	logger   zerolog.Logger
}

// NewSession creates a session.
func NewSession(client ChatClient, st store.Store, executor *tools.Executor, enricher *enrich.Enricher, cfg config.AssistConfig, logger zerolog.Logger) *Session {
	return &Session{
		client:   client,
		store:    st,
		executor: executor,
		enricher: enricher,
		cfg:      cfg,
		logger:   logger.With().Str("component", "session").Logger(),
	}
}

// Ask processes one natural-language command. Query tools execute inline and
// feed their results back to the model; the first confirmable mutation is
// enriched, resolved, and returned as a PendingAction without executing.
func (s *Session) Ask(ctx context.Context, text string) (*Result, error) {
	classification := intent.Classify(text)
	toolSet := tools.Narrow(classification.ToolIDs)
	s.logger.Debug().Str("intent", string(classification.Intent)).Int("tools", len(toolSet)).Msg("classified")

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: text},
	}

	result := &Result{}
	maxRounds := s.cfg.MaxToolRounds
	if maxRounds < 1 {
		maxRounds = 6
	}
	retriedWithFullSet := false

	for round := 0; round < maxRounds; round++ {
		resp, err := s.client.Chat(ctx, openai.ChatCompletionRequest{
			Model:    s.cfg.Model,
			Messages: messages,
			Tools:    toolSet,
		})
		if err != nil {
			return nil, err
		}
		choice := resp.Choices[0]

		if len(choice.Message.ToolCalls) == 0 {
			content := strings.TrimSpace(choice.Message.Content)
			// Small models sometimes return nothing when the narrowed set
			// lacked the tool they wanted; one retry with the full catalog.
			if content == "" && !retriedWithFullSet && len(toolSet) < len(tools.AllTools()) {
				retriedWithFullSet = true
				toolSet = tools.Narrow(nil)
				continue
			}
			if content == "" {
				content = "I could not work out what to do with that."
			}
			result.Text = content
			return result, nil
		}

		messages = append(messages, choice.Message)

		for _, tc := range choice.Message.ToolCalls {
			name := tc.Function.Name
			rawArgs := json.RawMessage(tc.Function.Arguments)

			if tools.Confirmable[name] {
				pending, plan := s.stage(ctx, name, rawArgs, text)
				result.PendingAction = pending
				result.Plan = plan
				result.Text = confirmationText(pending, plan)
				return result, nil
			}

			out, err := s.executor.Execute(ctx, name, rawArgs)
			if err != nil {
				out = fmt.Sprintf(`{"error": %q}`, err.Error())
			}
			result.ToolLog = append(result.ToolLog, ToolCallRecord{Tool: name, Args: tc.Function.Arguments, Result: out})
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    out,
				ToolCallID: tc.ID,
			})
		}
	}

	// The round budget ran out before the model settled on an answer. The
	// executed tool calls are still useful, so hand back what we have.
	s.logger.Warn().Int("rounds", maxRounds).Msg("tool round limit reached")
	result.Text = fmt.Sprintf("I stopped after %d tool calls without a final answer; the results so far are included.", maxRounds)
	return result, nil
}

// stage enriches a confirmable tool call and runs it through the frame,
// resolve, plan pipeline, producing the PendingAction the user must approve.
func (s *Session) stage(ctx context.Context, toolName string, rawArgs json.RawMessage, userText string) (*action.PositionAction, *command.ExecutionPlan) {
	args := map[string]interface{}{}
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			s.logger.Warn().Err(err).Str("tool", toolName).Msg("unparseable tool arguments")
		}
	}

	snap := s.store.Read()
	var warnings []string
	switch toolName {
	case tools.ToolBuy:
		args, warnings = s.enricher.EnrichBuy(ctx, snap, args, userText)
	case tools.ToolSellPartial, tools.ToolSellAll:
		args, warnings = s.enricher.EnrichSell(ctx, snap, args, userText)
	case tools.ToolUpdatePosition, tools.ToolUpdateCash:
		args = s.enricher.EnrichUpdate(snap, args)
	case tools.ToolRemovePosition:
		args = s.enricher.EnrichRemove(snap, args)
	case tools.ToolSetPrice:
		args = s.enricher.EnrichSetPrice(snap, args)
	case tools.ToolAddCash:
		if n := enrich.AsPositiveNumber(args["amount"]); n != nil {
			args["amount"] = *n
		}
	}

	frame := command.BuildCommandFrame(toolName, args, userText)
	resolution := command.ResolveCommandTarget(frame, snap)
	plan := command.BuildExecutionPlan(frame, resolution)

	pending := action.ToolCallToAction(snap, toolName, plan.ResolvedArgs, append(warnings, plan.Warnings...))
	return pending, &plan
}

func confirmationText(pending *action.PositionAction, plan *command.ExecutionPlan) string {
	if pending == nil {
		return "Nothing to confirm."
	}
	if plan != nil && plan.Status != command.PlanReady {
		lines := append([]string{"I need clarification before doing that:"}, pending.Warnings...)
		return strings.Join(lines, "\n  - ")
	}
	return "Confirm: " + pending.Summary
}
