package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// EnvPrefix is the prefix for environment overrides of any key,
// e.g. COUNCIL_COUNCIL_MAX_WORKERS for council.max_workers.
const EnvPrefix = "COUNCIL"

// Config is the complete council configuration.
type Config struct {
	Gateway   GatewayConfig   `mapstructure:"gateway" yaml:"gateway"`
	Council   CouncilConfig   `mapstructure:"council" yaml:"council"`
	Synthesis SynthesisConfig `mapstructure:"synthesis" yaml:"synthesis"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Agents    []AgentConfig   `mapstructure:"agents" yaml:"agents"`
}

// GatewayConfig selects and addresses the inference backend.
type GatewayConfig struct {
	// Provider is the default route for agents that do not name one.
	Provider        string `mapstructure:"provider" yaml:"provider"`
	BaseURL         string `mapstructure:"base_url" yaml:"base_url"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key" yaml:"openai_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key" yaml:"anthropic_api_key"`
}

// CouncilConfig controls rounds and dispatch.
type CouncilConfig struct {
	UseWeightedModel    bool `mapstructure:"use_weighted_model" yaml:"use_weighted_model"`
	AgentTimeoutSeconds int  `mapstructure:"agent_timeout_seconds" yaml:"agent_timeout_seconds"`
	MaxWorkers          int  `mapstructure:"max_workers" yaml:"max_workers"`
	MaxDebateExchanges  int  `mapstructure:"max_debate_exchanges" yaml:"max_debate_exchanges"`
	ContextWindow       int  `mapstructure:"context_window" yaml:"context_window"`
}

// SynthesisConfig controls the final reduction call.
type SynthesisConfig struct {
	Model          string  `mapstructure:"model" yaml:"model"`
	Provider       string  `mapstructure:"provider" yaml:"provider"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoggingConfig controls diagnostic output on stderr.
type LoggingConfig struct {
	Debug  bool   `mapstructure:"debug" yaml:"debug"`
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the optional Prometheus endpoint. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// AgentConfig describes one council member.
type AgentConfig struct {
	Name         string  `mapstructure:"name" yaml:"name"`
	Persona      string  `mapstructure:"persona" yaml:"persona"`
	Weight       float64 `mapstructure:"weight" yaml:"weight"`
	Model        string  `mapstructure:"model" yaml:"model"`
	Provider     string  `mapstructure:"provider" yaml:"provider,omitempty"`
	Temperature  float64 `mapstructure:"temperature" yaml:"temperature"`
	Color        string  `mapstructure:"color" yaml:"color,omitempty"`
	Instructions string  `mapstructure:"instructions" yaml:"instructions"`
}

// Default returns the built-in configuration with the four default personas.
func Default() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return &cfg
}

// AgentTimeout returns the per-call deadline.
func (c *CouncilConfig) AgentTimeout() time.Duration {
	return time.Duration(c.AgentTimeoutSeconds) * time.Second
}

// Timeout returns the synthesis call deadline.
func (c *SynthesisConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Colors maps agent names to their display color.
func (c *Config) Colors() map[string]string {
	colors := make(map[string]string, len(c.Agents))
	for _, a := range c.Agents {
		colors[a.Name] = a.Color
	}
	return colors
}

// CoreAgents converts the configured roster. Agents without a provider
// inherit the gateway default.
func (c *Config) CoreAgents() ([]core.Agent, error) {
	agents := make([]core.Agent, 0, len(c.Agents))
	for _, ac := range c.Agents {
		provider := ac.Provider
		if provider == "" {
			provider = c.Gateway.Provider
		}

		a, err := core.NewAgent(ac.Name, func(o *core.AgentOptions) {
			o.Persona = ac.Persona
			o.Weight = ac.Weight
			o.Model = ac.Model
			o.Provider = provider
			o.Temperature = ac.Temperature
			o.Instructions = strings.TrimSpace(ac.Instructions)
		})
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", ac.Name, err)
		}
		agents = append(agents, a)
	}
	return agents, nil
}

// Providers returns the distinct gateway routes used by the gateway default,
// the synthesis call and the roster, in first-use order.
func (c *Config) Providers() []string {
	var out []string
	add := func(p string) {
		if p != "" && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}

	add(c.Gateway.Provider)
	add(c.Synthesis.Provider)
	for _, a := range c.Agents {
		add(a.Provider)
	}
	return out
}

// Redacted returns a copy with API keys masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.Agents = append([]AgentConfig(nil), c.Agents...)
	out.Gateway.OpenAIAPIKey = mask(c.Gateway.OpenAIAPIKey)
	out.Gateway.AnthropicAPIKey = mask(c.Gateway.AnthropicAPIKey)
	return &out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// Dump renders the configuration as YAML.
func Dump(c *Config) ([]byte, error) {
	return yaml.Marshal(c)
}

// SetDefaults registers default values and environment bindings with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	// Gateway defaults
	v.SetDefault("gateway.provider", defaults.Gateway.Provider)
	v.SetDefault("gateway.base_url", defaults.Gateway.BaseURL)
	v.SetDefault("gateway.openai_api_key", defaults.Gateway.OpenAIAPIKey)
	v.SetDefault("gateway.anthropic_api_key", defaults.Gateway.AnthropicAPIKey)

	// Council defaults
	v.SetDefault("council.use_weighted_model", defaults.Council.UseWeightedModel)
	v.SetDefault("council.agent_timeout_seconds", defaults.Council.AgentTimeoutSeconds)
	v.SetDefault("council.max_workers", defaults.Council.MaxWorkers)
	v.SetDefault("council.max_debate_exchanges", defaults.Council.MaxDebateExchanges)
	v.SetDefault("council.context_window", defaults.Council.ContextWindow)

	// Synthesis defaults
	v.SetDefault("synthesis.model", defaults.Synthesis.Model)
	v.SetDefault("synthesis.provider", defaults.Synthesis.Provider)
	v.SetDefault("synthesis.temperature", defaults.Synthesis.Temperature)
	v.SetDefault("synthesis.timeout_seconds", defaults.Synthesis.TimeoutSeconds)

	// Logging and metrics defaults
	v.SetDefault("logging.debug", defaults.Logging.Debug)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("metrics.addr", defaults.Metrics.Addr)

	// The roster is replaced as a whole, never merged per entry.
	agents := make([]map[string]any, 0, len(defaults.Agents))
	for _, a := range defaults.Agents {
		agents = append(agents, map[string]any{
			"name":         a.Name,
			"persona":      a.Persona,
			"weight":       a.Weight,
			"model":        a.Model,
			"provider":     a.Provider,
			"temperature":  a.Temperature,
			"color":        a.Color,
			"instructions": a.Instructions,
		})
	}
	v.SetDefault("agents", agents)

	BindEnv(v)
}

// envAliases lists the unprefixed environment names accepted for a key in
// addition to its COUNCIL_ form.
var envAliases = map[string][]string{
	"gateway.base_url":              {"OLLAMA_BASE_URL"},
	"gateway.openai_api_key":        {"OPENAI_API_KEY"},
	"gateway.anthropic_api_key":     {"ANTHROPIC_API_KEY"},
	"council.use_weighted_model":    {"USE_WEIGHTED_MODEL"},
	"council.agent_timeout_seconds": {"AGENT_TIMEOUT"},
	"council.max_workers":           {"MAX_WORKERS"},
	"council.max_debate_exchanges":  {"MAX_DEBATE_EXCHANGES"},
	"logging.debug":                 {"DEBUG"},
}

// BindEnv wires COUNCIL_* overrides for every key plus the bare names above.
// The prefixed name wins when both are set.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	// Replace dots with underscores for nested keys,
	// e.g. COUNCIL_GATEWAY_BASE_URL for gateway.base_url
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, aliases := range envAliases {
		names := append([]string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
}

// Load reads the configuration from v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "council")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".council"
	}
	return filepath.Join(home, ".config", "council")
}

// ConfigFile returns the path to the default config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
