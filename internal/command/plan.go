package command

import (
	"fmt"
	"strings"

	"folio/internal/action"
	"folio/internal/models"
	"folio/internal/resolve"
	"folio/internal/tools"
)

// ResolutionStatus is the outcome of binding a frame's target to the
// portfolio.
type ResolutionStatus string

const (
	ResolutionMatched    ResolutionStatus = "matched"
	ResolutionAmbiguous  ResolutionStatus = "ambiguous"
	ResolutionUnresolved ResolutionStatus = "unresolved"
)

// ResolutionResult is the bound target plus the overall status.
type ResolutionResult struct {
	Status     ResolutionStatus
	Target     CommandTarget
	Candidates []string
	Warnings   []string
}

// PlanStatus tells the executor what to do with a plan.
type PlanStatus string

const (
	PlanReady              PlanStatus = "ready"
	PlanNeedsClarification PlanStatus = "needs_clarification"
	PlanBlocked            PlanStatus = "blocked"
)

// ExecutionPlan is the artifact the executor or confirmation surface
// consumes: the final arguments with resolved target fields merged in, and a
// readiness status.
type ExecutionPlan struct {
	Status       PlanStatus             `json:"status"`
	CommandID    string                 `json:"commandId"`
	ResolvedArgs map[string]interface{} `json:"resolvedArgs"`
	Warnings     []string               `json:"warnings,omitempty"`
}

// positionRequired lists the commands that cannot proceed without an existing
// position: a sell or removal against nothing is always a user-facing error,
// never a silent no-op.
var positionRequired = map[string]bool{
	tools.ToolSellPartial:    true,
	tools.ToolSellAll:        true,
	tools.ToolRemovePosition: true,
	tools.ToolUpdatePosition: true,
}

// ResolveCommandTarget binds the frame's target hints to real accounts and
// positions. Cash commands resolve accounts manual-only; commands that
// require an existing position escalate a miss or tie to the overall status.
func ResolveCommandTarget(frame CommandFrame, snap *models.Snapshot) ResolutionResult {
	res := ResolutionResult{Status: ResolutionMatched, Target: frame.Target}

	if frame.Target.AccountName != "" {
		opts := resolve.AccountResolveOptions{ManualOnly: isCashCommand(frame.CommandID)}
		m := resolve.ResolveAccount(snap.Accounts, frame.Target.AccountName, opts)
		switch m.Status {
		case resolve.AccountMatched:
			res.Target.AccountID = m.Account.ID
		case resolve.AccountAmbiguous:
			res.Status = ResolutionAmbiguous
			res.Candidates = m.Candidates
			res.Warnings = append(res.Warnings, fmt.Sprintf("account %q is ambiguous between %s", frame.Target.AccountName, strings.Join(m.Candidates, ", ")))
			return res
		case resolve.AccountUnmatched:
			res.Status = ResolutionUnresolved
			res.Warnings = append(res.Warnings, fmt.Sprintf("no account matches %q", frame.Target.AccountName))
			return res
		}
	}

	if frame.Target.Currency != "" && isCashCommand(frame.CommandID) {
		pos := resolve.ResolveCashPosition(snap.Positions, frame.Target.Currency, res.Target.AccountID)
		if pos == nil {
			res.Status = ResolutionUnresolved
			res.Warnings = append(res.Warnings, fmt.Sprintf("no unique %s cash position found", frame.Target.Currency))
			return res
		}
		res.Target.PositionID = pos.ID
		res.Target.Symbol = pos.Symbol
		return res
	}

	if frame.Target.Symbol != "" {
		matches := action.FindPositionBySymbol(snap, frame.Target.Symbol)
		switch {
		case len(matches) == 1:
			res.Target.PositionID = matches[0].ID
			res.Target.Symbol = matches[0].Symbol
			if res.Target.AccountID == "" {
				res.Target.AccountID = matches[0].AccountID
			}
		case len(matches) > 1:
			if one := matchInAccount(matches, res.Target.AccountID); one != nil {
				res.Target.PositionID = one.ID
				res.Target.Symbol = one.Symbol
				break
			}
			if positionRequired[frame.CommandID] {
				res.Status = ResolutionAmbiguous
				for _, p := range matches {
					res.Candidates = append(res.Candidates, p.ID)
				}
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s is held in multiple positions", frame.Target.Symbol))
			}
		default:
			if positionRequired[frame.CommandID] {
				res.Status = ResolutionUnresolved
				res.Warnings = append(res.Warnings, fmt.Sprintf("no position found for %q", frame.Target.Symbol))
			}
		}
	}

	return res
}

func matchInAccount(positions []models.Position, accountID string) *models.Position {
	if accountID == "" {
		return nil
	}
	var found *models.Position
	for i := range positions {
		if positions[i].AccountID == accountID {
			if found != nil {
				return nil
			}
			found = &positions[i]
		}
	}
	return found
}

// BuildExecutionPlan merges the resolution back into the frame's arguments.
// The plan is ready only on a full match; resolved target fields win over the
// raw input on key collision.
func BuildExecutionPlan(frame CommandFrame, res ResolutionResult) ExecutionPlan {
	plan := ExecutionPlan{
		CommandID:    frame.CommandID,
		ResolvedArgs: make(map[string]interface{}, len(frame.Args)+4),
		Warnings:     append(append([]string(nil), frame.Warnings...), res.Warnings...),
	}
	for k, v := range frame.Args {
		plan.ResolvedArgs[k] = v
	}
	if res.Target.Symbol != "" {
		plan.ResolvedArgs["symbol"] = res.Target.Symbol
	}
	if res.Target.AccountID != "" {
		plan.ResolvedArgs["accountId"] = res.Target.AccountID
	}
	if res.Target.PositionID != "" {
		plan.ResolvedArgs["positionId"] = res.Target.PositionID
	}
	if frame.Date != "" {
		plan.ResolvedArgs["date"] = frame.Date
	}

	if res.Status == ResolutionMatched {
		plan.Status = PlanReady
	} else {
		plan.Status = PlanNeedsClarification
	}
	return plan
}
