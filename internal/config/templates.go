package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# folio configuration

[resolution]
# Fuzzy symbol matching acceptance gates. The best candidate must score at
# least min_score and beat the runner-up by min_gap, otherwise the literal
# input is kept and the command reports "no position found".
min_score = 0.75
min_gap = 0.12

[quotes]
timeout = "1200ms"
# A fetched equities quote within suspicious_window_days of today is rejected
# when it deviates from the stored reference price by more than these ratios.
suspicious_low_ratio = 0.3
suspicious_high_ratio = 3.0
suspicious_window_days = 7
equities_url = "https://www.alphavantage.co/query"
# equities_api_key = ""
crypto_url = "https://api.coingecko.com/api/v3"

[assist]
model = "gpt-4o-mini"
# base_url = ""
max_tool_rounds = 6

[ui]
color_enabled = true
`

const credentialsTemplate = `# folio credentials
# Keep this file private (chmod 600).

[openai]
api_key = ""
`

func createTemplateConfig(configDir string) error {
	return writeTemplate(configDir, "config.toml", configTemplate, 0644)
}

func createTemplateCredentials(configDir string) error {
	return writeTemplate(configDir, "credentials.toml", credentialsTemplate, 0600)
}

func writeTemplate(configDir, name, content string, perm os.FileMode) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(configDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(content), perm)
}
