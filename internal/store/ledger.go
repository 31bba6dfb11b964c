// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes for BadgerDB storage
const (
	processedKeyPrefix = "processed:"
	cutoffKey          = "cutoff"
)

// ErrStatusCountMismatch reports a broken batch invariant: the status
// lookup produced a different number of answers than revision IDs
// asked about. It should be impossible and indicates store corruption.
var ErrStatusCountMismatch = errors.New("processed-status count does not match requested revision count")

// Ledger is the idempotency ledger: which wiki revisions have already
// been consumed, and the high-water cutoff below which the scanner
// never looks again. Entries are timestamp-valued and append-only.
type Ledger struct {
	db *badger.DB
}

// NewLedger creates a Ledger over db.
func NewLedger(db *badger.DB) *Ledger {
	return &Ledger{db: db}
}

// IsProcessed reports whether the revision has been consumed.
func (l *Ledger) IsProcessed(ctx context.Context, revisionID string) (bool, error) {
	var found bool
	err := l.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(processedKeyPrefix + revisionID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get processed entry: %w", err)
		}
		found = true
		return nil
	})
	return found, err
}

// MarkProcessed records the revision as consumed at processedAt.
func (l *Ledger) MarkProcessed(ctx context.Context, revisionID string, processedAt time.Time) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, uint64(processedAt.UnixMilli()))

	return l.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(processedKeyPrefix+revisionID), val); err != nil {
			return fmt.Errorf("set processed entry: %w", err)
		}
		return nil
	})
}

// GetProcessedStatus answers, for each revision ID, when it was
// consumed (nil = not yet). The result always holds exactly one entry
// per requested ID; anything else returns ErrStatusCountMismatch.
func (l *Ledger) GetProcessedStatus(ctx context.Context, revisionIDs []string) (map[string]*time.Time, error) {
	out := make(map[string]*time.Time, len(revisionIDs))

	err := l.db.View(func(txn *badger.Txn) error {
		for _, id := range revisionIDs {
			item, err := txn.Get([]byte(processedKeyPrefix + id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				out[id] = nil
				continue
			}
			if err != nil {
				return fmt.Errorf("get processed entry %s: %w", id, err)
			}
			if err := item.Value(func(val []byte) error {
				if len(val) != 8 {
					return fmt.Errorf("processed entry %s has %d-byte value", id, len(val))
				}
				ts := time.UnixMilli(int64(binary.BigEndian.Uint64(val)))
				out[id] = &ts
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Duplicate IDs in the request collapse in the map; that still
	// violates the one-answer-per-question contract the scanner
	// depends on.
	if len(out) != len(revisionIDs) {
		return nil, fmt.Errorf("%w: asked %d, got %d", ErrStatusCountMismatch, len(revisionIDs), len(out))
	}
	return out, nil
}

// Cutoff returns the timestamp below which revisions are never
// rescanned. A fresh store reports the epoch, so the first scan
// considers all history.
func (l *Ledger) Cutoff(ctx context.Context) (time.Time, error) {
	cutoff := time.UnixMilli(0)

	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cutoffKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get cutoff: %w", err)
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("cutoff has %d-byte value", len(val))
			}
			cutoff = time.UnixMilli(int64(binary.BigEndian.Uint64(val)))
			return nil
		})
	})
	return cutoff, err
}

// AdvanceCutoff moves the cutoff forward to ts. Moves backward are
// silently ignored so out-of-order marking cannot reopen history.
func (l *Ledger) AdvanceCutoff(ctx context.Context, ts time.Time) error {
	current, err := l.Cutoff(ctx)
	if err != nil {
		return err
	}
	if !ts.After(current) {
		return nil
	}

	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, uint64(ts.UnixMilli()))

	return l.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(cutoffKey), val); err != nil {
			return fmt.Errorf("set cutoff: %w", err)
		}
		return nil
	})
}
