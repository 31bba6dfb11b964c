// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for a GoalRelay installation.
//
// A single binary serves both roles: when Relay.Subreddit equals
// Relay.HubSubreddit the installation runs as the hub (scanning wiki
// revisions and mirroring posts), otherwise it runs as a leaf
// (publishing events for its own goal posts).
type Config struct {
	Reddit  RedditConfig  `koanf:"reddit"`
	Relay   RelayConfig   `koanf:"relay"`
	Store   StoreConfig   `koanf:"store"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// RedditConfig holds host-platform API settings.
type RedditConfig struct {
	// BaseURL is the API endpoint root.
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// Token is the OAuth bearer token for the service account.
	Token string `koanf:"token" validate:"required"`

	// ServiceAccount is the username the plugin acts as. Revisions
	// authored by any other account are ignored by the scanner.
	ServiceAccount string `koanf:"service_account" validate:"required"`

	// UserAgent is sent with every API request.
	UserAgent string `koanf:"user_agent"`

	// Timeout applies per HTTP request.
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the sustained request rate (requests/second).
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the rate limiter burst size.
	RateBurst int `koanf:"rate_burst"`
}

// RelayConfig holds the synchronization protocol settings.
type RelayConfig struct {
	// Subreddit is the community this installation runs in.
	Subreddit string `koanf:"subreddit" validate:"required"`

	// HubSubreddit is the community that aggregates events from all
	// installations.
	HubSubreddit string `koanf:"hub_subreddit" validate:"required"`

	// CrosspostEnabled controls whether create events are published.
	// Removal events are always published so a disabled installation
	// still cleans up mirrors created while it was enabled.
	CrosspostEnabled bool `koanf:"crosspost_enabled"`

	// ScanInterval is how often the hub scans for new revisions.
	ScanInterval time.Duration `koanf:"scan_interval"`

	// UpdateInterval is how often goal posts are refreshed.
	UpdateInterval time.Duration `koanf:"update_interval"`

	// RevisionTimeout bounds the processing of a single revision,
	// including any page-body fetch and mirror write.
	RevisionTimeout time.Duration `koanf:"revision_timeout"`

	// ScanPageLimit is the per-page size for revision listings.
	ScanPageLimit int `koanf:"scan_page_limit" validate:"min=1,max=500"`
}

// StoreConfig holds durable storage settings.
type StoreConfig struct {
	// Path is the BadgerDB directory.
	Path string `koanf:"path" validate:"required"`
}

// ServerConfig holds settings for the operational HTTP endpoint
// (health and metrics only; there is no user-facing surface).
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// IsHub reports whether this installation is the hub.
// The comparison is case-insensitive because subreddit names are.
func (c *Config) IsHub() bool {
	return strings.EqualFold(c.Relay.Subreddit, c.Relay.HubSubreddit)
}

// Validate checks that required configuration is present and valid.
// A missing required value is a hard startup error, never a partial run.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid configuration: field %s failed rule %q", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Relay.ScanInterval <= 0 {
		return fmt.Errorf("relay.scan_interval must be positive, got %s", c.Relay.ScanInterval)
	}
	if c.Relay.RevisionTimeout <= 0 {
		return fmt.Errorf("relay.revision_timeout must be positive, got %s", c.Relay.RevisionTimeout)
	}

	return nil
}
