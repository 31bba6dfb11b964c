// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

// Package store holds the relay's durable state in BadgerDB: the
// idempotency ledger, the revision cutoff, the crosspost registry, and
// the goal records with their update queue. Each concern gets its own
// handle over a shared *badger.DB; callers wire the handles they need
// explicitly rather than passing the raw database around.
package store

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Open opens (or creates) the BadgerDB at path with the relay's
// standard options. The caller owns the returned handle and must Close
// it on shutdown.
func Open(path string, logger zerolog.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{logger}).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return db, nil
}

// OpenInMemory opens an ephemeral database. Used by tests.
func OpenInMemory() (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return db, nil
}

// badgerLogger adapts zerolog to badger's Logger interface. Badger's
// messages arrive with trailing newlines.
type badgerLogger struct {
	l zerolog.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error().Msgf("%s", strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn().Msgf("%s", strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Info().Msgf("%s", strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Debug().Msgf("%s", strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}
