// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

// Command server runs the GoalRelay service: on the hub it consumes
// events from the wiki revision log and maintains mirror posts, on a
// leaf it announces goal posts and their moderation to the hub and
// keeps the local goal records fresh.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/goalrelay/internal/api"
	"github.com/tomtom215/goalrelay/internal/config"
	"github.com/tomtom215/goalrelay/internal/goalpost"
	"github.com/tomtom215/goalrelay/internal/logging"
	"github.com/tomtom215/goalrelay/internal/reddit"
	"github.com/tomtom215/goalrelay/internal/store"
	"github.com/tomtom215/goalrelay/internal/supervisor"
	"github.com/tomtom215/goalrelay/internal/trigger"
	"github.com/tomtom215/goalrelay/internal/wikievent"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		logger := logging.Logger()
		logger.Fatal().Err(err).Msg("Fatal error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logger := logging.Logger()
	logger.Info().
		Str("subreddit", cfg.Relay.Subreddit).
		Str("hub", cfg.Relay.HubSubreddit).
		Bool("is_hub", cfg.IsHub()).
		Msg("Starting GoalRelay")

	db, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close store")
		}
	}()

	client := reddit.NewClient(cfg)
	ledger := store.NewLedger(db)
	registry := store.NewCrosspostRegistry(db)
	goals := store.NewGoalStore(db)
	queue := store.NewUpdateQueue(db)
	modlogCursor := store.NewCursor(db, "modlog")

	publisher := wikievent.NewPublisher(client, cfg.Reddit.ServiceAccount, cfg.Relay.Subreddit, cfg.Relay.HubSubreddit)
	manager := goalpost.NewManager(client, goals, queue, publisher, cfg.Relay.UpdateInterval)

	slogger := slog.New(logging.NewSlogHandler())
	tree := supervisor.NewTree(slogger, supervisor.DefaultTreeConfig())

	if cfg.IsHub() {
		decoder := wikievent.NewDecoder(client, cfg.Reddit.ServiceAccount, cfg.Relay.HubSubreddit)
		router := wikievent.NewRouter(client, registry, cfg.Relay.Subreddit, cfg.Relay.CrosspostEnabled)
		scanner := wikievent.NewScanner(client, decoder, router, ledger,
			cfg.Reddit.ServiceAccount, cfg.Relay.HubSubreddit,
			cfg.Relay.ScanPageLimit, cfg.Relay.RevisionTimeout)

		handler := trigger.NewModActionHandler(scanner, nil, cfg.Reddit.ServiceAccount, true, cfg.Relay.CrosspostEnabled)
		tree.AddRelayService(trigger.NewModLogPoller(client, handler, modlogCursor, cfg.Relay.Subreddit, cfg.Relay.ScanInterval))
		tree.AddRelayService(trigger.NewScanService(scanner, cfg.Relay.ScanInterval))
	} else {
		handler := trigger.NewModActionHandler(nil, publisher, cfg.Reddit.ServiceAccount, false, cfg.Relay.CrosspostEnabled)
		tree.AddRelayService(trigger.NewModLogPoller(client, handler, modlogCursor, cfg.Relay.Subreddit, cfg.Relay.ScanInterval))
		tree.AddRelayService(trigger.NewUpdateService(manager, cfg.Relay.UpdateInterval))
		tree.AddRelayService(trigger.NewDeletionWatcher(client, goals, queue, publisher, cfg.Relay.UpdateInterval))
	}

	tree.AddAPIService(api.NewServer(cfg.Server, api.NewHandler(manager, goals)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	logger.Info().Msg("GoalRelay stopped")
	return err
}
