// Package config provides YAML-based configuration loading for Switchboard.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Switchboard configuration, loaded from
// switchboard.yaml.
type Config struct {
	CoordinateFiles []string        `yaml:"coordinate_files"`
	LayoutMode      string          `yaml:"layout_mode"`
	InboxRoot       string          `yaml:"inbox_root"`
	Dispatch        DispatchConfig  `yaml:"dispatch"`
	Database        DatabaseConfig  `yaml:"database"`
	Notify          NotifyConfig    `yaml:"notify"`
	Dashboard       DashboardConfig `yaml:"dashboard"`
	Stall           StallConfig     `yaml:"stall"`
}

// DispatchConfig tunes the queue and delivery channels.
type DispatchConfig struct {
	Threshold     int `yaml:"threshold"`       // bytes; content at or below goes to the file channel
	QueueCapacity int `yaml:"queue_capacity"`  // 0 = unbounded
	PollTimeoutMs int `yaml:"poll_timeout_ms"` // worker dequeue timeout
	SettleDelayMs int `yaml:"settle_delay_ms"` // GUI wait after click
	KeyDelayMs    int `yaml:"key_delay_ms"`    // GUI inter-character delay
}

// DatabaseConfig selects the history store backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" (default) or "mysql"
	Path   string `yaml:"path"`   // sqlite file path
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Name   string `yaml:"name"`
}

// NotifyConfig configures escalation destinations. All are optional.
type NotifyConfig struct {
	Command string        `yaml:"command"` // shell template, e.g. "notify-send 'Switchboard' '{{.Summary}}'"
	Discord WebhookTarget `yaml:"discord"`
	Slack   WebhookTarget `yaml:"slack"`
}

// WebhookTarget is a bot token plus target channel for a chat platform.
type WebhookTarget struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// DashboardConfig configures the HTTP dashboard.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// StallConfig configures the staleness sweep.
type StallConfig struct {
	Schedule      string `yaml:"schedule"` // 5-field cron expression
	MaxAgeMinutes int    `yaml:"max_age_minutes"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.LayoutMode == "" {
		c.LayoutMode = "8-agent"
	}
	if c.InboxRoot == "" {
		c.InboxRoot = "agent_workspaces"
	}
	if c.Dispatch.Threshold == 0 {
		c.Dispatch.Threshold = 100
	}
	if c.Dispatch.PollTimeoutMs == 0 {
		c.Dispatch.PollTimeoutMs = 250
	}
	if c.Dispatch.SettleDelayMs == 0 {
		c.Dispatch.SettleDelayMs = 300
	}
	if c.Dispatch.KeyDelayMs == 0 {
		c.Dispatch.KeyDelayMs = 12
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "switchboard.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Name == "" {
		c.Database.Name = "switchboard"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if c.Stall.Schedule == "" {
		c.Stall.Schedule = "* * * * *"
	}
	if c.Stall.MaxAgeMinutes == 0 {
		c.Stall.MaxAgeMinutes = 5
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if len(c.CoordinateFiles) == 0 {
		errs = append(errs, "at least one coordinate file is required")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be sqlite or mysql, got %q", c.Database.Driver))
	}
	if c.Dispatch.Threshold < 0 {
		errs = append(errs, "dispatch.threshold must not be negative")
	}
	if c.Dispatch.QueueCapacity < 0 {
		errs = append(errs, "dispatch.queue_capacity must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// PollTimeout returns the worker dequeue timeout as a duration.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.Dispatch.PollTimeoutMs) * time.Millisecond
}

// SettleDelay returns the GUI post-click settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Dispatch.SettleDelayMs) * time.Millisecond
}

// KeyDelay returns the GUI inter-character delay as a duration.
func (c *Config) KeyDelay() time.Duration {
	return time.Duration(c.Dispatch.KeyDelayMs) * time.Millisecond
}

// StallMaxAge returns the staleness cutoff as a duration.
func (c *Config) StallMaxAge() time.Duration {
	return time.Duration(c.Stall.MaxAgeMinutes) * time.Minute
}
