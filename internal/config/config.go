// Package config provides configuration management for the portfolio application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Resolution  ResolutionConfig `mapstructure:"resolution"`
	Quotes      QuotesConfig     `mapstructure:"quotes"`
	Assist      AssistConfig     `mapstructure:"assist"`
	UI          UIConfig         `mapstructure:"ui"`
	Credentials Credentials      `mapstructure:"-"` // Loaded separately
}

// ResolutionConfig holds the symbol-matching acceptance thresholds. The
// defaults are preserved from long-running production behavior; changing them
// changes which fuzzy matches are accepted.
type ResolutionConfig struct {
	MinScore float64 `mapstructure:"min_score"` // best similarity must reach this
	MinGap   float64 `mapstructure:"min_gap"`   // margin over the runner-up
}

// QuotesConfig holds quote-provider configuration, including the
// suspicious-quote guard that protects the cost basis from provider glitches.
type QuotesConfig struct {
	Timeout              time.Duration `mapstructure:"timeout"`
	SuspiciousLowRatio   float64       `mapstructure:"suspicious_low_ratio"`
	SuspiciousHighRatio  float64       `mapstructure:"suspicious_high_ratio"`
	SuspiciousWindowDays int           `mapstructure:"suspicious_window_days"`
	EquitiesURL          string        `mapstructure:"equities_url"`
	EquitiesAPIKey       string        `mapstructure:"equities_api_key"`
	CryptoURL            string        `mapstructure:"crypto_url"`
}

// AssistConfig holds the natural-language command session configuration.
type AssistConfig struct {
	Model         string `mapstructure:"model"`
	BaseURL       string `mapstructure:"base_url"`
	MaxToolRounds int    `mapstructure:"max_tool_rounds"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// OpenAICredentials holds OpenAI-compatible API credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/folio"
	}
	return filepath.Join(home, ".config", "folio")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Resolution: ResolutionConfig{
			MinScore: 0.75,
			MinGap:   0.12,
		},
		Quotes: QuotesConfig{
			Timeout:              1200 * time.Millisecond,
			SuspiciousLowRatio:   0.3,
			SuspiciousHighRatio:  3.0,
			SuspiciousWindowDays: 7,
			EquitiesURL:          "https://www.alphavantage.co/query",
			CryptoURL:            "https://api.coingecko.com/api/v3",
		},
		Assist: AssistConfig{
			Model:         "gpt-4o-mini",
			MaxToolRounds: 6,
		},
		UI: UIConfig{
			ColorEnabled: true,
			DateFormat:   "2006-01-02",
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("resolution.min_score", 0.75)
	v.SetDefault("resolution.min_gap", 0.12)
	v.SetDefault("quotes.timeout", "1200ms")
	v.SetDefault("quotes.suspicious_low_ratio", 0.3)
	v.SetDefault("quotes.suspicious_high_ratio", 3.0)
	v.SetDefault("quotes.suspicious_window_days", 7)
	v.SetDefault("quotes.equities_url", "https://www.alphavantage.co/query")
	v.SetDefault("quotes.crypto_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("assist.model", "gpt-4o-mini")
	v.SetDefault("assist.max_tool_rounds", 6)
	v.SetDefault("ui.color_enabled", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Assist.BaseURL = v
	}
	if v := os.Getenv("FOLIO_MODEL"); v != "" {
		cfg.Assist.Model = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.Quotes.EquitiesAPIKey = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Resolution.MinScore < 0 || c.Resolution.MinScore > 1 {
		return fmt.Errorf("resolution.min_score must be between 0 and 1")
	}
	if c.Resolution.MinGap < 0 || c.Resolution.MinGap > 1 {
		return fmt.Errorf("resolution.min_gap must be between 0 and 1")
	}
	if c.Quotes.Timeout <= 0 || c.Quotes.Timeout > 5*time.Second {
		return fmt.Errorf("quotes.timeout must be positive and at most 5s")
	}
	if c.Quotes.SuspiciousLowRatio <= 0 || c.Quotes.SuspiciousLowRatio >= 1 {
		return fmt.Errorf("quotes.suspicious_low_ratio must be in (0, 1)")
	}
	if c.Quotes.SuspiciousHighRatio <= 1 {
		return fmt.Errorf("quotes.suspicious_high_ratio must be greater than 1")
	}
	if c.Quotes.SuspiciousWindowDays < 0 {
		return fmt.Errorf("quotes.suspicious_window_days must be non-negative")
	}
	if c.Assist.MaxToolRounds < 1 || c.Assist.MaxToolRounds > 16 {
		return fmt.Errorf("assist.max_tool_rounds must be between 1 and 16")
	}
	return nil
}
