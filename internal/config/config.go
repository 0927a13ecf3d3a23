package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for configuration.
const DefaultPath = ".router/config.yaml"

// Config holds all router configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Router  RouterConfig  `yaml:"router"`
	Tools   ToolsConfig   `yaml:"tools"`
	Agent   AgentConfig   `yaml:"agent"`
	Memory  MemoryConfig  `yaml:"memory"`
	Weather WeatherConfig `yaml:"weather"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

// RouterConfig selects the decision backend and its rule files.
type RouterConfig struct {
	// Backend is one of native, swipl, prolog, datalog.
	Backend string `yaml:"backend"`
	// Rule files. Empty means the embedded defaults.
	DictRules    string `yaml:"dict_rules"`
	ListRules    string `yaml:"list_rules"`
	DatalogRules string `yaml:"datalog_rules"`
	SwiplPath    string `yaml:"swipl_path"`
	ProbeTimeout string `yaml:"probe_timeout"`
	// Corpus is the scenario file used by `validate`.
	Corpus string `yaml:"corpus"`
}

// ToolsConfig points at the tool definitions file (JSON or TOML).
type ToolsConfig struct {
	Path string `yaml:"path"`
}

// AgentConfig configures the agent loop.
type AgentConfig struct {
	MaxTurns   int    `yaml:"max_turns"`
	PromptFile string `yaml:"prompt_file"`
}

// MemoryConfig configures the conversation store.
type MemoryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
	MaxResults   int    `yaml:"max_results"`
}

// WeatherConfig decides which weather tool the router picks.
type WeatherConfig struct {
	// Premium forces the premium provider tool (get_apple_weather).
	Premium bool `yaml:"premium"`
}

// LoggingConfig configures the zap root logger.
type LoggingConfig struct {
	Format   string   `yaml:"format"` // console, json
	Disabled []string `yaml:"disabled_categories"`
}

// ServerConfig configures `serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Valid backend names.
var ValidBackends = []string{"native", "swipl", "prolog", "datalog"}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "openai/gpt-oss-20b",
			BaseURL:  "http://localhost:8000/v1",
			Timeout:  "120s",
		},
		Router: RouterConfig{
			Backend:      "native",
			SwiplPath:    "swipl",
			ProbeTimeout: "5s",
		},
		Agent: AgentConfig{
			MaxTurns:   10,
			PromptFile: "prompts/agent_system.md",
		},
		Memory: MemoryConfig{
			Enabled:      true,
			DatabasePath: ".router/memory.db",
			MaxResults:   3,
		},
		Logging: LoggingConfig{Format: "console"},
		Server:  ServerConfig{Addr: ":9464"},
	}
}

// Load reads configuration from path. A missing file yields defaults.
// Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	// LLM API key from environment (later entries win)
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "anthropic"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if url := os.Getenv("LLM_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if backend := os.Getenv("ROUTER_BACKEND"); backend != "" {
		c.Router.Backend = backend
	}
	if path := os.Getenv("ROUTER_TOOLS"); path != "" {
		c.Tools.Path = path
	}
	if path := os.Getenv("ROUTER_MEMORY_DB"); path != "" {
		c.Memory.DatabasePath = path
	}

	if appleWeatherConfigured() {
		c.Weather.Premium = true
	}
}

// normalize lowercases the enumerated names so file and env values match
// ValidProviders and ValidBackends regardless of case.
func (c *Config) normalize() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Router.Backend = strings.ToLower(strings.TrimSpace(c.Router.Backend))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// appleWeatherConfigured reports whether all WeatherKit credentials are present.
func appleWeatherConfigured() bool {
	for _, k := range []string{"APPLE_TEAM_ID", "APPLE_SERVICE_ID", "APPLE_KEY_ID", "APPLE_PRIVATE_KEY_PATH"} {
		if _, ok := os.LookupEnv(k); !ok {
			return false
		}
	}
	return true
}

// GetLLMTimeout returns the per-call LLM timeout.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// GetProbeTimeout returns the rule-engine probe timeout.
func (c *Config) GetProbeTimeout() time.Duration {
	d, err := time.ParseDuration(c.Router.ProbeTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// Validate checks enumerated settings. A missing API key is not an error:
// the heuristic extractor works without one.
func (c *Config) Validate() error {
	if !contains(ValidProviders, c.LLM.Provider) {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}
	if !contains(ValidBackends, c.Router.Backend) {
		return fmt.Errorf("invalid router backend: %s (valid: %v)", c.Router.Backend, ValidBackends)
	}
	if c.Agent.MaxTurns <= 0 {
		return fmt.Errorf("agent.max_turns must be positive, got %d", c.Agent.MaxTurns)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
