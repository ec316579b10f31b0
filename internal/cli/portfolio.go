package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"folio/internal/models"
	"folio/pkg/utils"
)

func newPortfolioCmd(app *App) *cobra.Command {
	var assetType string
	var accountName string

	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Show portfolio positions and totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app.Config.UI.ColorEnabled)
			snap := app.Store.Read()

			positions := filterPositions(snap, assetType, accountName)
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"positions": positions})
			}

			if len(positions) == 0 {
				output.Println("No positions.")
				return nil
			}

			sort.Slice(positions, func(i, j int) bool {
				return positionValue(snap, positions[i]) > positionValue(snap, positions[j])
			})

			var total float64
			hide := snap.Settings.HideBalances
			for _, p := range positions {
				value := positionValue(snap, p)
				total += value
				label := p.Symbol
				if acc := snap.AccountByID(p.AccountID); acc != nil {
					label += " @ " + acc.Name
				}
				if hide {
					output.Printf("  %-24s %12s\n", label, "****")
					continue
				}
				output.Printf("  %-24s %12s  (%s)\n", label, utils.FormatMoney(value), utils.FormatAmount(p.Amount))
			}
			output.Println()
			if hide {
				output.Bold("Total: ****")
			} else {
				output.Bold("Total: %s", utils.FormatMoney(total))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&assetType, "type", "", "filter by asset type (crypto|stock|etf|cash|manual)")
	cmd.Flags().StringVar(&accountName, "account", "", "filter by account name")
	return cmd
}

func newTransactionsCmd(app *App) *cobra.Command {
	var symbol string
	var limit int

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Show recorded transactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app.Config.UI.ColorEnabled)
			snap := app.Store.Read()

			txs := make([]models.Transaction, 0, len(snap.Transactions))
			for _, tx := range snap.Transactions {
				if symbol != "" && !strings.EqualFold(tx.Symbol, symbol) {
					continue
				}
				txs = append(txs, tx)
			}
			sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
			if limit > 0 && len(txs) > limit {
				txs = txs[:limit]
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"transactions": txs})
			}

			if len(txs) == 0 {
				output.Println("No transactions.")
				return nil
			}
			for _, tx := range txs {
				verb := "buy "
				if tx.Type == models.TxSell {
					verb = "sell"
				}
				line := tx.Date + "  " + verb + "  " + utils.FormatAmount(tx.Amount) + " " + tx.Symbol +
					" at " + utils.FormatMoney(tx.PricePerUnit)
				if tx.Type == models.TxSell {
					if tx.RealizedPnL >= 0 {
						output.Success("  %s  (+%s)", line, utils.FormatMoney(tx.RealizedPnL))
					} else {
						output.Error("  %s  (%s)", line, utils.FormatMoney(tx.RealizedPnL))
					}
					continue
				}
				output.Printf("  %s\n", line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	return cmd
}

func filterPositions(snap *models.Snapshot, assetType, accountName string) []models.Position {
	accountID := ""
	if accountName != "" {
		for _, a := range snap.Accounts {
			if strings.EqualFold(a.Name, accountName) {
				accountID = a.ID
				break
			}
		}
	}
	var out []models.Position
	for _, p := range snap.Positions {
		if assetType != "" && string(p.Type) != assetType {
			continue
		}
		if accountName != "" && p.AccountID != accountID {
			continue
		}
		if snap.Settings.HideDust && !p.IsCash() && positionValue(snap, p) < 1 {
			continue
		}
		out = append(out, p)
	}
	return out
}

func positionValue(snap *models.Snapshot, p models.Position) float64 {
	if p.IsCash() {
		return p.Amount
	}
	if price, ok := snap.PriceFor(p.Symbol); ok {
		return p.Amount * price
	}
	return 0
}
