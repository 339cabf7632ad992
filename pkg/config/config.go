package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// Config defines the application configuration structure. It maps directly
// to config.json and holds business-level settings: planner provider groups,
// operator channel credentials, and the custom planner instructions.
type Config struct {
	// Channels maps channel identifiers (e.g. "web", "telegram") to their
	// specific configuration payloads in raw JSON form.
	Channels map[string]jsoniter.RawMessage `json:"channels"`
	// Planner holds the planner provider group configuration in raw JSON.
	Planner jsoniter.RawMessage `json:"planner"`
	// CustomInstructions is appended verbatim to the planner's system
	// prompt so operators can bias planning without a rebuild.
	CustomInstructions string `json:"custom_instructions"`
}

// Validate ensures the configuration contains all mandatory fields.
func (c *Config) Validate() error {
	if len(c.Planner) == 0 {
		return fmt.Errorf("mandatory 'planner' configuration is missing or empty")
	}
	return nil
}

// SystemConfig defines engine-level technical parameters, stored in
// system.json. These control the reliability and timing behavior of the
// control loop and the dispatcher rather than what the agent does.
type SystemConfig struct {
	// MaxSteps is the run's step budget, counted in planning/execution
	// rounds, not individual dispatched actions.
	MaxSteps int `json:"max_steps"`
	// FailFast selects the per-descriptor failure policy: true aborts the
	// remainder of the current plan and the run on the first failed
	// descriptor; false (default) records the failure and continues so the
	// planner can adapt its next plan.
	FailFast bool `json:"fail_fast"`
	// MaxRetries is the number of attempts per planner provider before
	// falling through to the next configured provider.
	MaxRetries int `json:"max_retries"`
	// RetryDelayMs is the base wait between planner retry attempts.
	RetryDelayMs int `json:"retry_delay_ms"`
	// PlannerTimeoutMs is the hard per-round cutoff for one planner call.
	PlannerTimeoutMs int `json:"planner_timeout_ms"`
	// ScreenshotTimeoutMs bounds one screen-capture invocation.
	ScreenshotTimeoutMs int `json:"screenshot_timeout_ms"`
	// WarmupEnabled toggles the harmless key tap issued before every
	// dispatch. Some input backends drop the first injected event after a
	// period of inactivity; the tap forces them awake.
	WarmupEnabled bool `json:"warmup_enabled"`
	// WarmupKey is the key tapped during warm-up.
	WarmupKey string `json:"warmup_key"`
	// WarmupSettleMs is the pause after the warm-up tap before the real
	// action is dispatched.
	WarmupSettleMs int `json:"warmup_settle_ms"`
	// InternalChannelBuffer sizes the internal Go channels used to fan
	// status messages out to observers.
	InternalChannelBuffer int `json:"internal_channel_buffer"`
	// OllamaDefaultURL is the fallback endpoint for a local Ollama
	// instance when the provider group gives no base_url.
	OllamaDefaultURL string `json:"ollama_default_url"`
	// TelegramMessageLimit is the maximum character count for a single
	// Telegram message; longer replies are split.
	TelegramMessageLimit int `json:"telegram_message_limit"`
	// LogLevel sets the minimum severity for log output.
	// Accepted values: "debug", "info", "warn", "error". Default: "info".
	LogLevel string `json:"log_level"`
}

// DefaultSystemConfig returns a SystemConfig initialized with safe default
// values, used as the fallback when system.json is missing or corrupt so
// the engine can always start.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		MaxSteps:              10,
		FailFast:              false,
		MaxRetries:            3,
		RetryDelayMs:          500,
		PlannerTimeoutMs:      120000,
		ScreenshotTimeoutMs:   15000,
		WarmupEnabled:         true,
		WarmupKey:             "command",
		WarmupSettleMs:        100,
		InternalChannelBuffer: 100,
		OllamaDefaultURL:      "http://localhost:11434",
		TelegramMessageLimit:  4000,
		LogLevel:              "info",
	}
}

// Load reads and parses the JSON configuration files from the current
// working directory. config.json is mandatory; system.json falls back to
// defaults when absent or unparsable.
func Load() (*Config, *SystemConfig, error) {
	appPath := "config.json"
	if _, err := os.Stat(appPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("config file '%s' not found. please create one", appPath)
	}

	appFile, err := os.ReadFile(appPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(appFile, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	sysCfg := LoadSystemConfig("system.json")

	return &cfg, sysCfg, nil
}

// LoadSystemConfig attempts to load system settings, returning defaults on
// any failure.
func LoadSystemConfig(path string) *SystemConfig {
	cfg := DefaultSystemConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(file, cfg); err != nil {
		return cfg
	}

	// A run always gets at least one planning round.
	if cfg.MaxSteps < 1 {
		cfg.MaxSteps = 1
	}

	return cfg
}
