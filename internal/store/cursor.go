// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const cursorKeyPrefix = "cursor:"

// Cursor is a named durable string position, used by pollers to resume
// where the previous invocation stopped.
type Cursor struct {
	db  *badger.DB
	key []byte
}

// NewCursor creates a Cursor under the given name.
func NewCursor(db *badger.DB, name string) *Cursor {
	return &Cursor{db: db, key: []byte(cursorKeyPrefix + name)}
}

// Get returns the stored position, or "" when none has been set.
func (c *Cursor) Get(ctx context.Context) (string, error) {
	var pos string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get cursor: %w", err)
		}
		return item.Value(func(val []byte) error {
			pos = string(val)
			return nil
		})
	})
	return pos, err
}

// Set stores a new position.
func (c *Cursor) Set(ctx context.Context, pos string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(c.key, []byte(pos)); err != nil {
			return fmt.Errorf("set cursor: %w", err)
		}
		return nil
	})
}
