// Package command implements the frame, resolve, plan pipeline that turns a
// raw tool call into an execution plan. Framing normalizes the arguments into
// a typed structure, resolution binds the target to real portfolio entities,
// and planning decides whether the command is ready to run or needs the user
// to clarify.
package command

import (
	"regexp"
	"strings"

	"folio/internal/action"
	"folio/internal/enrich"
	"folio/internal/resolve"
	"folio/internal/tools"
)

// FrameKind is the coarse command family.
type FrameKind string

const (
	FrameMutation   FrameKind = "mutation"
	FrameQuery      FrameKind = "query"
	FrameNavigation FrameKind = "navigation"
)

// Mode distinguishes a delta change ("add 500") from an absolute one ("set
// balance to 500"). Only meaningful for cash balance commands.
type Mode string

const (
	ModeDelta    Mode = "delta"
	ModeAbsolute Mode = "absolute"
)

// CommandTarget carries the hints identifying what the command applies to.
type CommandTarget struct {
	Symbol      string `json:"symbol,omitempty"`
	AccountName string `json:"accountName,omitempty"`
	AccountID   string `json:"accountId,omitempty"`
	Currency    string `json:"currency,omitempty"`
	PositionID  string `json:"positionId,omitempty"`
}

// CommandQuantity expresses how much the command moves. The fields are
// alternative shapes, not a tuple: buys carry notional or units, partial
// sells prefer percent, full sells carry nothing.
type CommandQuantity struct {
	Units    float64 `json:"units,omitempty"`
	Notional float64 `json:"notional,omitempty"`
	Percent  float64 `json:"percent,omitempty"`
}

// CommandFrame is the normalized representation of one user command, built
// once from the tool call and threaded through resolution and planning.
type CommandFrame struct {
	CommandID string                 `json:"commandId"`
	Kind      FrameKind              `json:"kind"`
	Mode      Mode                   `json:"mode,omitempty"`
	Target    CommandTarget          `json:"target"`
	Quantity  CommandQuantity        `json:"quantity"`
	Date      string                 `json:"date,omitempty"`
	Args      map[string]interface{} `json:"args"`
	UserText  string                 `json:"-"`
	Warnings  []string               `json:"warnings,omitempty"`
}

var deltaVerbRe = regexp.MustCompile(`\b(add|added|deposit|deposited|increase|top(?:ped)? up)\b`)

// BuildCommandFrame normalizes a tool call into a frame. commandID is the
// tool name; userText is the original utterance, used for mode inference on
// commands where the arguments alone cannot distinguish delta from absolute.
func BuildCommandFrame(commandID string, args map[string]interface{}, userText string) CommandFrame {
	frame := CommandFrame{
		CommandID: commandID,
		Kind:      frameKind(commandID),
		Args:      args,
		UserText:  userText,
	}

	frame.Target.Symbol = strings.ToUpper(strings.TrimSpace(stringArg(args, "symbol")))
	frame.Target.AccountName = action.AccountNameFromArgs(args)
	frame.Target.PositionID = stringArg(args, "positionId")
	if c := resolve.NormalizeCurrency(stringArg(args, "currency")); c != "" {
		frame.Target.Currency = c
	} else if c := resolve.NormalizeCurrency(frame.Target.Symbol); c != "" && isCashCommand(commandID) {
		frame.Target.Currency = c
	}

	if d := stringArg(args, "date"); d != "" || userText != "" {
		frame.Date = enrich.ExtractDateFromText(userText, d)
	}

	frame.Quantity = quantityFor(commandID, args)
	frame.Mode = modeFor(commandID, userText)
	return frame
}

func frameKind(commandID string) FrameKind {
	switch commandID {
	case tools.ToolNavigate:
		return FrameNavigation
	}
	if tools.IsMutation(commandID) {
		return FrameMutation
	}
	return FrameQuery
}

func isCashCommand(commandID string) bool {
	return commandID == tools.ToolAddCash || commandID == tools.ToolUpdateCash
}

// quantityFor picks the quantity shape per command: buys prefer notional when
// the spend is known, partial sells prefer percent, full sells carry no
// quantity at all.
func quantityFor(commandID string, args map[string]interface{}) CommandQuantity {
	var q CommandQuantity
	units := enrich.AsPositiveNumber(args["amount"])
	notional := enrich.AsPositiveNumber(args["totalCost"])
	percent := enrich.AsPositiveNumber(args["sellPercent"])

	switch commandID {
	case tools.ToolBuy:
		if notional != nil {
			q.Notional = *notional
		}
		if units != nil {
			q.Units = *units
		}
	case tools.ToolSellPartial:
		if percent != nil {
			q.Percent = *percent
		} else if units != nil {
			q.Units = *units
		}
	case tools.ToolSellAll:
		// everything; no quantity
	default:
		if units != nil {
			q.Units = *units
		}
	}
	return q
}

// modeFor infers delta versus absolute for cash-balance commands from the
// user's own verbs. add_cash is delta by definition; update_cash defaults to
// absolute unless the text says otherwise.
func modeFor(commandID, userText string) Mode {
	switch commandID {
	case tools.ToolAddCash:
		return ModeDelta
	case tools.ToolUpdateCash, tools.ToolUpdatePosition:
		if deltaVerbRe.MatchString(strings.ToLower(userText)) {
			return ModeDelta
		}
		return ModeAbsolute
	}
	return ""
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
