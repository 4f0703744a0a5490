package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a schema from YAML. JSON documents are valid YAML and decode
// the same way. The result is validated.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses a schema file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Marshal encodes a schema as "yaml" (default), "json" or "pretty" JSON.
func Marshal(cfg *Config, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.Marshal(cfg)
	case "pretty":
		return json.MarshalIndent(cfg, "", "  ")
	case "", "yaml":
		return yaml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unknown schema format %q", format)
	}
}
