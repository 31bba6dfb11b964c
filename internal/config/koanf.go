// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/goalrelay/config.yaml",
	"/etc/goalrelay/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all sensible default values.
// Defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Reddit: RedditConfig{
			BaseURL:        "https://oauth.reddit.com",
			Token:          "",
			ServiceAccount: "",
			UserAgent:      "goalrelay (+https://github.com/tomtom215/goalrelay)",
			Timeout:        30 * time.Second,
			RateLimit:      1.0, // Reddit allows ~60/min for OAuth clients
			RateBurst:      5,
		},
		Relay: RelayConfig{
			Subreddit:        "",
			HubSubreddit:     "SubGoal",
			CrosspostEnabled: true,
			ScanInterval:     time.Minute,
			UpdateInterval:   5 * time.Minute,
			RevisionTimeout:  30 * time.Second,
			ScanPageLimit:    100,
		},
		Store: StoreConfig{
			Path: "/data/goalrelay",
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    9384,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds configuration from layered sources (highest priority wins):
//
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables
//
// Environment variables map section by section:
//
//	RELAY_HUB_SUBREDDIT -> relay.hub_subreddit
//	REDDIT_TOKEN        -> reddit.token
//	STORE_PATH          -> store.path
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// configSections are the recognized top-level env var prefixes.
var configSections = []string{"reddit", "relay", "store", "server", "logging"}

// envTransformFunc transforms environment variable names to koanf paths.
// Only variables starting with a known section prefix are mapped; anything
// else is ignored so unrelated environment noise cannot leak into config.
//
//	RELAY_HUB_SUBREDDIT -> relay.hub_subreddit
//	REDDIT_SERVICE_ACCOUNT -> reddit.service_account
//	LOGGING_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	for _, section := range configSections {
		prefix := section + "_"
		if strings.HasPrefix(key, prefix) {
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}

	return "" // Unrecognized variables are dropped.
}
