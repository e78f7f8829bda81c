package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
	"github.com/gosuda/plano/internal/messenger/slack"
	"github.com/gosuda/plano/internal/notify"
	"github.com/gosuda/plano/internal/server"
	"github.com/gosuda/plano/internal/store/cache"
	"github.com/gosuda/plano/internal/store/postgres"
	redisstore "github.com/gosuda/plano/internal/store/redis"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, WebSocket relay and deadline monitors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

// publishers builds the fan-out every committed transition goes through:
// Redis for dashboards and other replicas, Slack for alerts when configured.
func publishers(bus *redisstore.Bus) lifecycle.Publishers {
	pubs := lifecycle.Publishers{redisstore.NewStatusPublisher(bus)}
	if !cfg.Slack.Enabled() {
		return pubs
	}

	var opts []notify.Option
	if cfg.Slack.AlertAll {
		opts = append(opts, notify.WithAllChanges())
	}
	sm := slack.NewFromToken(cfg.Slack.BotToken)
	pubs = append(pubs, notify.New(notify.NewRegistry(sm), sm.Platform(), cfg.Slack.AlertChannel, opts...))
	log.Info().Str("channel", cfg.Slack.AlertChannel).Msg("slack status alerts enabled")

	return pubs
}

// newMonitors creates one deadline monitor per kind, reading fresh
// snapshots from the repository rather than the cache.
func newMonitors(store *postgres.Store, exec *lifecycle.Executor) lifecycle.Monitors {
	repos := store.Tracked()
	monitors := make(lifecycle.Monitors, 0, len(repos))
	for _, kind := range domain.Kinds() {
		repo, ok := repos[kind]
		if !ok {
			continue
		}
		monitors = append(monitors, lifecycle.NewMonitor(kind, repo.ListTracked, exec,
			lifecycle.WithInterval(cfg.Monitor.Interval)))
	}
	return monitors
}

func serve(ctx context.Context) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	bus, err := redisstore.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer bus.Close()

	entities := cache.New(store.Tracked(), cfg.Cache.Size, cfg.Cache.TTL)
	unsubscribe := entities.Subscribe(func(t *domain.Tracked) {
		log.Debug().
			Str("kind", string(t.Kind)).
			Str("id", t.ID.String()).
			Str("status", string(t.Status)).
			Msg("entity committed")
	})
	defer unsubscribe()

	// Other replicas' transitions invalidate our cached lists.
	messages, stopFollow, err := bus.Subscribe(ctx, redisstore.StatusChannel())
	if err != nil {
		return err
	}
	defer stopFollow()
	go entities.Follow(ctx, messages)

	exec := lifecycle.NewExecutor(store.Tracked(),
		lifecycle.WithStateStore(entities),
		lifecycle.WithPublisher(publishers(bus)),
	)

	monitors := newMonitors(store, exec)
	if cfg.Monitor.Enabled {
		monitors.Start(ctx)
		defer monitors.Stop()
		log.Info().Dur("interval", cfg.Monitor.Interval).Msg("deadline monitors started")
	}

	srv := server.New(ctx, cfg, server.Deps{
		Store:    store,
		Status:   exec,
		Reader:   entities,
		Monitors: monitors,
		Events:   bus,
	})

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("stopped")
	return nil
}
