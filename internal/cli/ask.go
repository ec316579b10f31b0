package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"folio/internal/action"
	"folio/internal/assist"
	apperrors "folio/internal/errors"
)

const pendingActionFile = "pending_action.json"

func newAskCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "ask <text...>",
		Short: "Run a natural-language command",
		Long: `Send a command in plain English. Queries are answered directly; mutations
are staged and printed for confirmation. Run 'folio confirm' to apply the
staged change, or pass --yes to apply it immediately.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app.Config.UI.ColorEnabled)
			if app.LLMClient == nil {
				return fmt.Errorf("no OpenAI API key configured; set OPENAI_API_KEY or credentials.toml")
			}

			text := ""
			for i, a := range args {
				if i > 0 {
					text += " "
				}
				text += a
			}

			model, _ := cmd.Flags().GetString("model")
			cfg := app.Config.Assist
			if model != "" {
				cfg.Model = model
			}

			session := assist.NewSession(app.LLMClient, app.Store, app.Executor, app.Enricher, cfg, app.Logger)
			result, err := session.Ask(cmd.Context(), text)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			if result.PendingAction == nil {
				output.Println(result.Text)
				return nil
			}

			pending := result.PendingAction
			for _, w := range pending.Warnings {
				output.Warning("! %s", w)
			}
			output.Bold("%s", pending.Summary)

			if yes {
				return executePending(cmd, app, output, pending)
			}

			if err := savePendingAction(app.ConfigDir, pending); err != nil {
				return err
			}
			output.Dim("Run 'folio confirm' to apply, 'folio cancel' to discard.")
			return nil
		},
	}

	cmd.Flags().String("model", "", "override the configured model")
	cmd.Flags().BoolVar(&yes, "yes", false, "apply the staged mutation without confirmation")
	return cmd
}

func newConfirmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm",
		Short: "Apply the staged mutation",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app.Config.UI.ColorEnabled)
			pending, err := loadPendingAction(app.ConfigDir)
			if err != nil {
				return err
			}
			if err := executePending(cmd, app, output, pending); err != nil {
				return err
			}
			return clearPendingAction(app.ConfigDir)
		},
	}
}

func newCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Discard the staged mutation",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app.Config.UI.ColorEnabled)
			if _, err := loadPendingAction(app.ConfigDir); err != nil {
				return err
			}
			if err := clearPendingAction(app.ConfigDir); err != nil {
				return err
			}
			output.Success("Discarded.")
			return nil
		},
	}
}

func executePending(cmd *cobra.Command, app *App, output *Output, pending *action.PositionAction) error {
	rawArgs, err := json.Marshal(pending.Args)
	if err != nil {
		return fmt.Errorf("encoding staged arguments: %w", err)
	}
	result, err := app.Executor.Execute(cmd.Context(), pending.Tool, rawArgs)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		output.Printf("%s\n", result)
		return nil
	}
	var body map[string]interface{}
	if json.Unmarshal([]byte(result), &body) == nil {
		if msg, ok := body["error"].(string); ok {
			output.Error("%s", msg)
			return nil
		}
	}
	output.Success("Done: %s", pending.Summary)
	return nil
}

func savePendingAction(configDir string, pending *action.PositionAction) error {
	body, err := json.MarshalIndent(pending, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(configDir, pendingActionFile), body, 0600)
}

func loadPendingAction(configDir string) (*action.PositionAction, error) {
	body, err := os.ReadFile(filepath.Join(configDir, pendingActionFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrNoPendingAction
		}
		return nil, err
	}
	var pending action.PositionAction
	if err := json.Unmarshal(body, &pending); err != nil {
		return nil, fmt.Errorf("parsing staged action: %w", err)
	}
	return &pending, nil
}

func clearPendingAction(configDir string) error {
	err := os.Remove(filepath.Join(configDir, pendingActionFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
