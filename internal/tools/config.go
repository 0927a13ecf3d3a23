package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"intentrouter/internal/logging"
)

// LoadConfig reads a tools configuration. Files ending in .toml are decoded as
// TOML; everything else as JSON.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tools config %s: %w", path, err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse tools config TOML: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse tools config JSON: %w", err)
		}
	}

	cfg.applyDefaults()
	logging.ToolsDebug("loaded %d tool(s) from %s", len(cfg.Tools), path)
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Tools {
		ep := c.Tools[i].Endpoint
		if ep == nil {
			continue
		}
		if ep.Method == "" {
			ep.Method = DefaultMethod
		}
		if ep.TimeoutSecs <= 0 {
			ep.TimeoutSecs = DefaultTimeoutSecs
		}
	}
}
