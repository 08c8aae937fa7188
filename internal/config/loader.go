package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces ghostwriter environment variables.
const envPrefix = "GHOSTWRITER_"

// Load reads configuration from a YAML file, then overrides with
// environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (GHOSTWRITER_SERVER_PORT, GHOSTWRITER_LLM_API_KEY, ...)
//  2. YAML config file
//  3. Defaults
//
// configPath may be empty, in which case only env and defaults apply. The
// variable name maps to the YAML path by stripping the prefix, lowercasing,
// and splitting on the first underscore:
//
//	GHOSTWRITER_SERVER_PORT        -> server.port
//	GHOSTWRITER_LLM_API_KEY        -> llm.api_key
//	GHOSTWRITER_SLACK_BOT_TOKEN    -> slack.bot_token
//	GHOSTWRITER_SESSION_IDLE_TTL   -> session.idle_ttl
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		// section.field_name: only the first underscore separates the
		// section, the rest belong to the field.
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
