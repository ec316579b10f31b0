package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"folio/internal/assist"
	"folio/internal/config"
	"folio/internal/enrich"
	"folio/internal/logging"
	"folio/internal/quotes"
	"folio/internal/resolve"
	"folio/internal/store"
	"folio/internal/tools"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Store     store.Store
	Executor  *tools.Executor
	Enricher  *enrich.Enricher
	LLMClient assist.ChatClient
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, configDir string, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
	}

	dbPath := filepath.Join(configDir, "folio.db")
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to open store, falling back to in-memory data")
		app.Store = store.NewMemoryStore(nil)
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", dbPath).Msg("SQLite store initialized")
	}

	app.Executor = tools.NewExecutor(app.Store, logger)

	equities := quotes.NewEquitiesClient(cfg.Quotes.EquitiesURL, cfg.Quotes.EquitiesAPIKey, cfg.Quotes.Timeout, logger)
	crypto := quotes.NewCryptoClient(cfg.Quotes.CryptoURL, cfg.Quotes.Timeout, logger)
	resolver := enrich.NewQuoteResolver(equities, equities, crypto, cfg.Quotes, logger)
	symbolCfg := resolve.SymbolMatchConfig{MinScore: cfg.Resolution.MinScore, MinGap: cfg.Resolution.MinGap}
	app.Enricher = enrich.NewEnricher(resolver, symbolCfg, logger)

	if cfg.Credentials.OpenAI.APIKey != "" {
		app.LLMClient = assist.NewOpenAIChatClient(cfg.Credentials.OpenAI.APIKey, cfg.Assist.BaseURL)
		logger.Debug().Str("model", cfg.Assist.Model).Msg("LLM client initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "folio",
		Short: "folio - natural-language portfolio tracker",
		Long: `folio tracks a personal portfolio of crypto, stocks, ETFs, and cash, and
takes commands in plain English: "buy $50k of MSFT", "sold half my ETH
yesterday", "add 5000 EUR to Revolut".

Mutations are staged and must be confirmed before anything is written.

Use 'folio help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/folio)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newAskCmd(app))
	rootCmd.AddCommand(newConfirmCmd(app))
	rootCmd.AddCommand(newCancelCmd(app))
	rootCmd.AddCommand(newPortfolioCmd(app))
	rootCmd.AddCommand(newTransactionsCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd, true)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
				return
			}
			output.Printf("folio v%s\n", Version)
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app.Config.UI.ColorEnabled)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			output.Bold("Resolution")
			output.Printf("  min_score: %.2f  min_gap: %.2f\n", app.Config.Resolution.MinScore, app.Config.Resolution.MinGap)
			output.Bold("Quotes")
			output.Printf("  timeout: %s  suspicious band: %.1fx-%.1fx over %d days\n",
				app.Config.Quotes.Timeout, app.Config.Quotes.SuspiciousLowRatio,
				app.Config.Quotes.SuspiciousHighRatio, app.Config.Quotes.SuspiciousWindowDays)
			output.Bold("Assist")
			output.Printf("  model: %s  max tool rounds: %d\n", app.Config.Assist.Model, app.Config.Assist.MaxToolRounds)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the config directory",
		Run: func(cmd *cobra.Command, args []string) {
			NewOutput(cmd, true).Println(app.ConfigDir)
		},
	})

	return cmd
}
