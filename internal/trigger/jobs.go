// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package trigger

import (
	"context"
	"time"

	"github.com/tomtom215/goalrelay/internal/logging"
)

// ScanService runs periodic scan passes on the hub. The modlog poller
// already triggers a scan on every wikirevise entry; this is the
// safety net for wikirevise entries the modlog never surfaces (some
// automod edits are not logged) and for missed polls.
//
// Implements suture.Service.
type ScanService struct {
	scanner  Scanner
	interval time.Duration
}

// NewScanService creates the periodic scan job.
func NewScanService(scanner Scanner, interval time.Duration) *ScanService {
	return &ScanService{scanner: scanner, interval: interval}
}

// Serve implements suture.Service.
func (s *ScanService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *ScanService) run(ctx context.Context) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	if _, err := s.scanner.Scan(ctx); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Periodic scan failed")
	}
}

func (s *ScanService) String() string {
	return "scan-service"
}

// Updater runs one goal post update pass. Implemented by
// goalpost.Manager.
type Updater interface {
	RunUpdatePass(ctx context.Context) error
}

// UpdateService periodically refreshes queued goal posts on leaf
// installations.
//
// Implements suture.Service.
type UpdateService struct {
	updater  Updater
	interval time.Duration
}

// NewUpdateService creates the periodic update job.
func NewUpdateService(updater Updater, interval time.Duration) *UpdateService {
	return &UpdateService{updater: updater, interval: interval}
}

// Serve implements suture.Service.
func (s *UpdateService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			runCtx := logging.ContextWithNewCorrelationID(ctx)
			if err := s.updater.RunUpdatePass(runCtx); err != nil {
				logging.Ctx(runCtx).Error().Err(err).Msg("Update pass failed")
			}
		}
	}
}

func (s *UpdateService) String() string {
	return "update-service"
}
