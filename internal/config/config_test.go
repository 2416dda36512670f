package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"LLM_PROVIDER", "LLM_MODEL", "LLM_MAX_TOKENS", "LLM_TEMPERATURE", "LLM_JSON_MODE",
	"LLM_PROMPT_TOKEN_BUDGET", "PAYLOAD_MODE", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	"GEMINI_API_KEY", "EXTERNAL_HTTP_TIMEOUT_SECONDS", "REPLY_LANGUAGE", "LABEL_SET_PATH",
	"SLACK_BOT_TOKEN", "REPORT_CHANNEL_ID", "WATCH_SCHEDULE", "TIMEZONE",
}

// isolateConfigEnv points CONFIG_PATH and DOTENV_PATH at missing files and
// blanks every key LoadConfig reads.
func isolateConfigEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing-config.yaml"))
	t.Setenv("DOTENV_PATH", filepath.Join(dir, "missing.env"))
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LLMProvider != ProviderOpenAI {
		t.Fatalf("unexpected provider default: %q", cfg.LLMProvider)
	}
	if cfg.LLMMaxTokens != 2000 {
		t.Fatalf("unexpected max tokens default: %d", cfg.LLMMaxTokens)
	}
	if cfg.LLMTemperature != 0.7 {
		t.Fatalf("unexpected temperature default: %v", cfg.LLMTemperature)
	}
	if cfg.LLMPromptTokenBudget != 4000 {
		t.Fatalf("unexpected prompt token budget default: %d", cfg.LLMPromptTokenBudget)
	}
	if cfg.PayloadMode != PayloadCompact {
		t.Fatalf("unexpected payload mode default: %q", cfg.PayloadMode)
	}
	if cfg.ReplyLanguage != "hu" {
		t.Fatalf("unexpected reply language default: %q", cfg.ReplyLanguage)
	}
	if cfg.ExternalHTTPTimeout() != defaultExternalHTTPTimeout {
		t.Fatalf("unexpected external HTTP timeout default: %s", cfg.ExternalHTTPTimeout())
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if cfg.Source != "" {
		t.Fatalf("expected no config source, got %q", cfg.Source)
	}
	if cfg.SlackConfigured() {
		t.Fatal("slack must not be configured by default")
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	dir := isolateConfigEnv(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	content := `
llm_provider: "anthropic"
anthropic_api_key: "yaml-anthropic"
llm_model: "claude-test"
llm_max_tokens: 1500
llm_json_mode: true
payload_mode: "structured"
reply_language: "en"
external_http_timeout_seconds: 75
slack_bot_token: "xoxb-yaml"
report_channel_id: "C123"
timezone: "America/Los_Angeles"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("EXTERNAL_HTTP_TIMEOUT_SECONDS", "120")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Source != cfgPath {
		t.Fatalf("unexpected source: %q", cfg.Source)
	}
	if cfg.LLMProvider != ProviderGemini {
		t.Fatalf("expected env provider override, got %q", cfg.LLMProvider)
	}
	if cfg.AnthropicAPIKey != "yaml-anthropic" || cfg.GeminiAPIKey != "env-gemini" {
		t.Fatalf("unexpected api keys: anthropic=%q gemini=%q", cfg.AnthropicAPIKey, cfg.GeminiAPIKey)
	}
	if cfg.LLMModel != "claude-test" || cfg.LLMMaxTokens != 1500 || !cfg.LLMJSONMode {
		t.Fatalf("unexpected llm settings: %+v", cfg)
	}
	if cfg.LLMTemperature != 0.2 {
		t.Fatalf("expected temperature 0.2, got %v", cfg.LLMTemperature)
	}
	if cfg.PayloadMode != PayloadStructured || cfg.ReplyLanguage != "en" {
		t.Fatalf("unexpected payload mode / language: %q / %q", cfg.PayloadMode, cfg.ReplyLanguage)
	}
	if cfg.ExternalHTTPTimeout() != 120*time.Second {
		t.Fatalf("expected env timeout override, got %s", cfg.ExternalHTTPTimeout())
	}
	if !cfg.SlackConfigured() {
		t.Fatal("expected slack to be configured")
	}
	if cfg.Location == nil || cfg.Location.String() != "America/Los_Angeles" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
}

func TestLoadConfigKeepsZeroTemperature(t *testing.T) {
	dir := isolateConfigEnv(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("llm_temperature: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LLMTemperature != 0 {
		t.Fatalf("expected YAML temperature 0 to be kept, got %v", cfg.LLMTemperature)
	}

	isolateConfigEnv(t)
	t.Setenv("LLM_TEMPERATURE", "0")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LLMTemperature != 0 {
		t.Fatalf("expected env temperature 0 to be kept, got %v", cfg.LLMTemperature)
	}

	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("LLM_TEMPERATURE", "0.4")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LLMTemperature != 0.4 {
		t.Fatalf("expected env to override YAML temperature, got %v", cfg.LLMTemperature)
	}
}

func TestLoadConfigReadsDotEnvWithoutOverridingEnv(t *testing.T) {
	dir := isolateConfigEnv(t)
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("OPENAI_API_KEY=sk-dotenv\nLLM_MODEL=gpt-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("DOTENV_PATH", envPath)
	t.Setenv("LLM_MODEL", "gpt-env")
	// godotenv only fills variables that are unset, so drop the blank one.
	os.Unsetenv("OPENAI_API_KEY")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-dotenv" {
		t.Fatalf("expected key from .env, got %q", cfg.OpenAIAPIKey)
	}
	if cfg.LLMModel != "gpt-env" {
		t.Fatalf("expected real env to win over .env, got %q", cfg.LLMModel)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown provider", map[string]string{"LLM_PROVIDER": "cohere"}, "llm_provider"},
		{"unknown payload mode", map[string]string{"PAYLOAD_MODE": "full"}, "payload_mode"},
		{"bad max tokens", map[string]string{"LLM_MAX_TOKENS": "-1"}, "llm_max_tokens"},
		{"unparsable max tokens", map[string]string{"LLM_MAX_TOKENS": "lots"}, "LLM_MAX_TOKENS"},
		{"temperature too high", map[string]string{"LLM_TEMPERATURE": "3"}, "llm_temperature"},
		{"small budget", map[string]string{"LLM_PROMPT_TOKEN_BUDGET": "10"}, "llm_prompt_token_budget"},
		{"short timeout", map[string]string{"EXTERNAL_HTTP_TIMEOUT_SECONDS": "2"}, "external_http_timeout_seconds"},
		{"language without labels", map[string]string{"REPLY_LANGUAGE": "de"}, "label_set_path"},
		{"missing label file", map[string]string{"LABEL_SET_PATH": "/nonexistent/labels.yaml"}, "label_set_path"},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}, "timezone"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolateConfigEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := isolateConfigEnv(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("llm_provider: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", cfgPath)
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected YAML parse error")
	}
}
