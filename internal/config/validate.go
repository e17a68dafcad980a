package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var knownLevels = map[string]bool{
	"": true, "TRACE": true, "DEBUG": true, "INFO": true, "WARN": true,
	"WARNING": true, "ERROR": true, "CRITICAL": true, "FATAL": true,
}

// Validate checks the fields this package can judge on its own. The poll
// schedule is validated by the app, which owns the schedule parser.
func (c *Config) Validate() error {
	if ep := strings.TrimSpace(c.Practicum.Endpoint); ep != "" {
		if err := validateURL("practicum.endpoint", ep); err != nil {
			return err
		}
	}
	if u := strings.TrimSpace(c.Telegram.APIURL); u != "" {
		if err := validateURL("telegram.api_url", u); err != nil {
			return err
		}
	}
	if c.Telegram.RatePerSec < 0 {
		return fmt.Errorf("telegram.rate_per_sec must be >= 0")
	}
	if g := strings.TrimSpace(c.Telegram.GroupLog); g != "" {
		if _, err := strconv.ParseInt(g, 10, 64); err != nil {
			return fmt.Errorf("telegram.group_log: invalid chat id %q", g)
		}
	}
	if !knownLevels[strings.ToUpper(strings.TrimSpace(c.Logging.Level))] {
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	if !knownLevels[strings.ToUpper(strings.TrimSpace(c.Logging.Telegram.MinLevel))] {
		return fmt.Errorf("logging.telegram.min_level: unknown level %q", c.Logging.Telegram.MinLevel)
	}
	if c.Logging.Telegram.RatePerSec < 0 {
		return fmt.Errorf("logging.telegram.rate_per_sec must be >= 0")
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%s: absolute http(s) URL required, got %q", field, raw)
	}
	return nil
}

// GroupLogChatID returns telegram.group_log as a chat id, or 0 when unset.
func (c *Config) GroupLogChatID() int64 {
	id, _ := strconv.ParseInt(strings.TrimSpace(c.Telegram.GroupLog), 10, 64)
	return id
}

// ChangedSections lists the top-level sections that differ between two configs.
func ChangedSections(oldCfg, newCfg *Config) []string {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}
	var out []string
	if oldCfg.Practicum != newCfg.Practicum {
		out = append(out, "practicum")
	}
	if oldCfg.Telegram != newCfg.Telegram {
		out = append(out, "telegram")
	}
	if oldCfg.Poller != newCfg.Poller {
		out = append(out, "poller")
	}
	if oldCfg.Logging != newCfg.Logging {
		out = append(out, "logging")
	}
	return out
}
