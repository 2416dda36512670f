package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderStub      = "stub"

	PayloadCompact    = "compact"
	PayloadStructured = "structured"
)

const (
	defaultMaxTokens         = 2000
	defaultTemperature       = 0.7
	defaultPromptTokenBudget = 4000
	defaultReplyLanguage     = "hu"
)

type Config struct {
	LLMProvider          string  `yaml:"llm_provider"`
	LLMModel             string  `yaml:"llm_model"`
	LLMMaxTokens         int     `yaml:"llm_max_tokens"`
	LLMTemperature       float64 `yaml:"llm_temperature"`
	LLMJSONMode          bool    `yaml:"llm_json_mode"`
	LLMPromptTokenBudget int     `yaml:"llm_prompt_token_budget"`
	PayloadMode          string  `yaml:"payload_mode"`

	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`

	ExternalHTTPTimeoutSeconds int `yaml:"external_http_timeout_seconds"`

	ReplyLanguage string `yaml:"reply_language"`
	LabelSetPath  string `yaml:"label_set_path"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	ReportChannelID string `yaml:"report_channel_id"`
	WatchSchedule   string `yaml:"watch_schedule"`
	Timezone        string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
	// Source is the config file that was read, empty when none was found.
	Source string `yaml:"-"`
}

// LoadConfig reads .env, then the YAML file named by CONFIG_PATH (default
// config.yaml), then environment overrides, and validates the result.
// Missing files are not an error. API keys are not checked here; generator
// constructors report a missing credential.
func LoadConfig() (Config, error) {
	// Seeded before decoding so an explicit 0 from YAML or env is kept.
	cfg := Config{LLMTemperature: defaultTemperature}

	envFile := ".env"
	if p := os.Getenv("DOTENV_PATH"); p != "" {
		envFile = p
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", configPath, err)
		}
		cfg.Source = configPath
	}

	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	if err := envOverrideInt(&cfg.LLMMaxTokens, "LLM_MAX_TOKENS"); err != nil {
		return Config{}, err
	}
	if err := envOverrideFloat(&cfg.LLMTemperature, "LLM_TEMPERATURE"); err != nil {
		return Config{}, err
	}
	envOverrideBool(&cfg.LLMJSONMode, "LLM_JSON_MODE")
	if err := envOverrideInt(&cfg.LLMPromptTokenBudget, "LLM_PROMPT_TOKEN_BUDGET"); err != nil {
		return Config{}, err
	}
	envOverride(&cfg.PayloadMode, "PAYLOAD_MODE")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	if err := envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS"); err != nil {
		return Config{}, err
	}
	envOverride(&cfg.ReplyLanguage, "REPLY_LANGUAGE")
	envOverride(&cfg.LabelSetPath, "LABEL_SET_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.WatchSchedule, "WATCH_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	if c.LLMProvider == "" {
		c.LLMProvider = ProviderOpenAI
	}
	if c.LLMMaxTokens == 0 {
		c.LLMMaxTokens = defaultMaxTokens
	}
	if c.LLMPromptTokenBudget == 0 {
		c.LLMPromptTokenBudget = defaultPromptTokenBudget
	}
	c.PayloadMode = strings.ToLower(strings.TrimSpace(c.PayloadMode))
	if c.PayloadMode == "" {
		c.PayloadMode = PayloadCompact
	}
	if c.ExternalHTTPTimeoutSeconds == 0 {
		c.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	c.ReplyLanguage = strings.ToLower(strings.TrimSpace(c.ReplyLanguage))
	if c.ReplyLanguage == "" {
		c.ReplyLanguage = defaultReplyLanguage
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderStub:
	default:
		return fmt.Errorf("llm_provider must be one of openai, anthropic, gemini, stub; got '%s'", c.LLMProvider)
	}
	switch c.PayloadMode {
	case PayloadCompact, PayloadStructured:
	default:
		return fmt.Errorf("payload_mode must be 'compact' or 'structured', got '%s'", c.PayloadMode)
	}
	if c.LLMMaxTokens < 1 {
		return fmt.Errorf("invalid llm_max_tokens '%d': must be >= 1", c.LLMMaxTokens)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("invalid llm_temperature '%g': must be between 0 and 2", c.LLMTemperature)
	}
	if c.LLMPromptTokenBudget < 100 {
		return fmt.Errorf("invalid llm_prompt_token_budget '%d': must be >= 100", c.LLMPromptTokenBudget)
	}
	if c.ExternalHTTPTimeoutSeconds < 5 {
		return fmt.Errorf("invalid external_http_timeout_seconds '%d': must be >= 5", c.ExternalHTTPTimeoutSeconds)
	}
	switch c.ReplyLanguage {
	case "hu", "en", "auto":
	default:
		if c.LabelSetPath == "" {
			return fmt.Errorf("reply_language '%s' needs label_set_path to define its labels", c.ReplyLanguage)
		}
	}
	if c.LabelSetPath != "" {
		if _, err := os.Stat(c.LabelSetPath); err != nil {
			return fmt.Errorf("invalid label_set_path '%s': %w", c.LabelSetPath, err)
		}
	}

	if strings.EqualFold(c.Timezone, "Local") {
		c.Location = time.Local
	} else {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
		}
		c.Location = loc
	}
	return nil
}

// SlackConfigured reports whether results can be posted to Slack.
func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.ReportChannelID != ""
}

// ExternalHTTPTimeout is the transport timeout for generator calls.
func (c Config) ExternalHTTPTimeout() time.Duration {
	return time.Duration(c.ExternalHTTPTimeoutSeconds) * time.Second
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = strings.EqualFold(val, "true") || val == "1"
	}
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
