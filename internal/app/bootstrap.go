package app

import (
	"fmt"

	"hwbot/internal/config"
	"hwbot/internal/poller"
	"hwbot/internal/runtime/supervisor"
	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

// ---- Config ----

type Config = config.Config

type ConfigManager = config.ConfigManager

var NewConfigManager = config.NewConfigManager

// validateConfig holds the checks that need packages config can't import.
func validateConfig(cfg *Config) error {
	if _, err := poller.NewSchedule(cfg.Poller.Schedule); err != nil {
		return fmt.Errorf("poller.schedule: %w", err)
	}
	return nil
}

func mapLogConfig(cfg *Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}
}

// logTarget is the telegram.group_log chat, or a zero target (sink drops
// every line) when it is unset. Log lines never go to the notice chat.
func logTarget(cfg *Config) kit.ChatTarget {
	chat := cfg.GroupLogChatID()
	if chat == 0 {
		return kit.ChatTarget{}
	}
	return kit.ChatTarget{ChatID: chat, ThreadID: cfg.Logging.Telegram.ThreadID}
}

// ---- Runtime ----

type Supervisor = supervisor.Supervisor

var NewSupervisor = supervisor.New

var WithLogger = supervisor.WithLogger

var WithCancelOnError = supervisor.WithCancelOnError
