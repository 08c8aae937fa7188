// Package config provides configuration loading for ghostwriter.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/ghostwriter/internal/compose"
	"github.com/fyrsmithlabs/ghostwriter/internal/gmail"
	"github.com/fyrsmithlabs/ghostwriter/internal/logging"
)

// Config is the top-level ghostwriter configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  logging.Config `koanf:"logging"`
	Contacts ContactsConfig `koanf:"contacts"`
	LLM      compose.Config `koanf:"llm"`
	Gmail    gmail.Config   `koanf:"gmail"`
	Slack    SlackConfig    `koanf:"slack"`
	Session  SessionConfig  `koanf:"session"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ContactsConfig holds contact directory configuration.
type ContactsConfig struct {
	// Path is the JSON directory file.
	Path string `koanf:"path"`
	// Watch enables hot reload on file change.
	Watch bool `koanf:"watch"`
}

// SlackConfig holds the Socket Mode bot configuration. The bot only starts
// when Enabled is set and both tokens are present.
type SlackConfig struct {
	Enabled  bool   `koanf:"enabled"`
	BotToken string `koanf:"bot_token"`
	AppToken string `koanf:"app_token"`
}

// SessionConfig controls draft session expiry.
type SessionConfig struct {
	IdleTTL       time.Duration `koanf:"idle_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Contacts.Path == "" {
		cfg.Contacts.Path = "contacts.json"
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}

	if cfg.Gmail.CredentialsPath == "" {
		cfg.Gmail.CredentialsPath = "credentials.json"
	}
	if cfg.Gmail.TokenPath == "" {
		cfg.Gmail.TokenPath = "token.json"
	}

	if cfg.Session.IdleTTL == 0 {
		cfg.Session.IdleTTL = 30 * time.Minute
	}
	if cfg.Session.SweepInterval == 0 {
		cfg.Session.SweepInterval = time.Minute
	}
}

// Validate checks the configuration for startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Gmail.Validate(); err != nil {
		return err
	}
	if c.Slack.Enabled {
		if c.Slack.BotToken == "" || c.Slack.AppToken == "" {
			return fmt.Errorf("slack is enabled but bot_token or app_token is missing")
		}
	}
	if c.Session.IdleTTL < 0 || c.Session.SweepInterval < 0 {
		return fmt.Errorf("session ttl values cannot be negative")
	}
	return nil
}
