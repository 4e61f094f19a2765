package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"
)

// Config carries every recognized runtime option. Non-secret options live in
// an optional JSON config file; secrets (bot token, render API key) and the
// recipient list come from the environment, optionally seeded from a .env
// file, so they never end up in a committed config.
type Config struct {
	TargetURL       string   `json:"target_url"`
	DetailURLFormat string   `json:"detail_url_format"`
	UserAgent       string   `json:"user_agent"`
	DropThreshold   int      `json:"drop_threshold"`
	RiseThreshold   int      `json:"rise_threshold"`
	// Price increases are informational; set this to stop sending them.
	SuppressIncreases bool `json:"suppress_increases"`
	// Listings without a determinable posting date are recorded but not
	// alerted unless this is set.
	AlertUndated bool     `json:"alert_undated"`
	ChatIDs      []string `json:"chat_ids"`
	RenderAPIURL string   `json:"render_api_url"`
	StorePath    string   `json:"store_path"`
	HistoryDB    string   `json:"history_db"`
	FeedPath     string   `json:"feed_path"` // empty disables the Atom feed sink

	// Environment-only secrets
	BotToken     string `json:"-"`
	RenderAPIKey string `json:"-"`
}

func defaultConfig() *Config {
	return &Config{
		DetailURLFormat: "https://suchen.mobile.de/fahrzeuge/details.html?id=%s&lang=en",
		UserAgent:       "Mozilla/5.0 (X11; Linux x86_64) carwatch/1.0",
		DropThreshold:   defaultDropThreshold,
		RiseThreshold:   defaultRiseThreshold,
		StorePath:       "listings.json",
		HistoryDB:       "carwatch.db",
	}
}

// loadConfig builds the effective configuration: defaults, overlaid by the
// JSON config file when one is given, overlaid by environment variables.
// A missing or broken config file degrades to defaults rather than failing;
// whether the result is usable is checked by the caller.
func loadConfig(path string) *Config {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("Failed to read config file, using defaults", "path", path, "error", err)
		} else if err := json.Unmarshal(data, cfg); err != nil {
			slog.Warn("Failed to parse config file, using defaults", "path", path, "error", err)
			cfg = defaultConfig()
		} else {
			slog.Debug("Loaded config file", "path", path)
		}
	}

	applyEnv(cfg)
	return cfg
}

// applyEnv overrides config values from the process environment
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("CARWATCH_TARGET_URL")); v != "" {
		cfg.TargetURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); v != "" {
		cfg.BotToken = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_IDS")); v != "" {
		// Either a JSON array of ids or a comma-separated list.
		var ids []string
		if err := json.Unmarshal([]byte(v), &ids); err == nil {
			cfg.ChatIDs = ids
		} else {
			cfg.ChatIDs = splitAndTrim(v)
		}
	}
	if v := strings.TrimSpace(os.Getenv("RENDER_API_URL")); v != "" {
		cfg.RenderAPIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("RENDER_API_KEY")); v != "" {
		cfg.RenderAPIKey = v
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// policy derives the reconciliation policy from the configuration
func (c *Config) policy() Policy {
	p := defaultPolicy()
	if c.DropThreshold > 0 {
		p.DropThreshold = c.DropThreshold
	}
	if c.RiseThreshold > 0 {
		p.RiseThreshold = c.RiseThreshold
	}
	p.NotifyIncreases = !c.SuppressIncreases
	p.AlertUndated = c.AlertUndated
	return p
}
