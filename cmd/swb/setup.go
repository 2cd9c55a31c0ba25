package main

import (
	"fmt"

	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/db"
	"github.com/zulandar/switchboard/internal/history"
	"github.com/zulandar/switchboard/internal/notify"
	"github.com/zulandar/switchboard/internal/notify/discord"
	"github.com/zulandar/switchboard/internal/notify/slack"
	"github.com/zulandar/switchboard/internal/registry"

	"gorm.io/gorm"
)

const defaultConfigPath = "switchboard.yaml"

// loadConfig reads the YAML config and the coordinate registry it points at.
func loadConfig(path string) (*config.Config, *registry.Registry, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	reg, err := registry.Load(cfg.CoordinateFiles, cfg.LayoutMode)
	if err != nil {
		return nil, nil, err
	}
	return cfg, reg, nil
}

// openStore connects to the configured database and runs migrations.
func openStore(cfg *config.Config) (*history.Store, error) {
	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.Database.Driver {
	case "mysql":
		conn, err = db.ConnectMySQL(cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Name)
	default:
		conn, err = db.ConnectSQLite(cfg.Database.Path)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		return nil, err
	}
	return history.NewStore(conn), nil
}

// buildNotifier assembles the configured failure notifiers. Returns nil
// when nothing is configured.
func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	var targets notify.Multi
	if cfg.Notify.Command != "" {
		targets = append(targets, &notify.CommandNotifier{Command: cfg.Notify.Command})
	}
	if cfg.Notify.Discord.Token != "" {
		n, err := discord.New(cfg.Notify.Discord.Token, cfg.Notify.Discord.ChannelID)
		if err != nil {
			return nil, fmt.Errorf("swb: discord notifier: %w", err)
		}
		targets = append(targets, n)
	}
	if cfg.Notify.Slack.Token != "" {
		n, err := slack.New(cfg.Notify.Slack.Token, cfg.Notify.Slack.ChannelID)
		if err != nil {
			return nil, fmt.Errorf("swb: slack notifier: %w", err)
		}
		targets = append(targets, n)
	}
	if len(targets) == 0 {
		return nil, nil
	}
	return targets, nil
}
