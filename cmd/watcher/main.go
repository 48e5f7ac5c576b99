package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Alwanly/forkauthority-polls/internal/config"
	"github.com/Alwanly/forkauthority-polls/internal/models"
	"github.com/Alwanly/forkauthority-polls/internal/polleditor"
	"github.com/Alwanly/forkauthority-polls/internal/viewpoll"
	"github.com/Alwanly/forkauthority-polls/pkg/database"
	"github.com/Alwanly/forkauthority-polls/pkg/docstore"
	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/Alwanly/forkauthority-polls/pkg/poll"
	"github.com/Alwanly/forkauthority-polls/pkg/pubsub"
	"github.com/Alwanly/forkauthority-polls/pkg/retry"
)

func main() {
	envErr := godotenv.Load()

	log, err := logger.NewLoggerFromEnv("watcher")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Debug("no .env file loaded", logger.Error(envErr))
	}

	cfg, err := config.LoadWatcherConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	flag.StringVar(&cfg.PollID, "poll", cfg.PollID, "ID of the poll to watch")
	flag.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "Path to the SQLite database")
	flag.Parse()

	log.Info("starting poll watcher",
		logger.String(logger.FieldPollID, cfg.PollID),
		logger.String("database_path", cfg.DatabasePath),
		logger.Duration("sync_interval", cfg.SyncInterval),
	)

	db, err := database.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storeOpts := []docstore.Option{
		docstore.WithLogger(log),
		docstore.WithPoller(poll.NewPoller(log, clockwork.NewRealClock()), cfg.SyncInterval),
	}

	if cfg.Redis != nil {
		var redisPub pubsub.PubSub
		connect := func(ctx context.Context) error {
			ps, err := pubsub.NewRedisPubSub(ctx, *cfg.Redis, log)
			if err != nil {
				log.WithError(err).Warn("redis connection attempt failed")
				return err
			}
			redisPub = ps
			return nil
		}

		if err := retry.WithExponentialBackoff(ctx, cfg.ConnectRetry(), connect); err != nil {
			log.WithError(err).Error("Failed to connect to Redis, continuing in poll-only mode",
				logger.String("mode", "poll-only"))
		} else {
			storeOpts = append(storeOpts, docstore.WithNotifier(redisPub))
			log.Info("Redis pub/sub initialized successfully",
				logger.String("host", cfg.Redis.Host),
				logger.Int("port", cfg.Redis.Port),
				logger.String("mode", "hybrid_push_pull"))
			defer redisPub.Close()
		}
	}

	store := docstore.NewSQLStore(db, storeOpts...)
	if err := store.Start(ctx); err != nil {
		log.WithError(err).Fatal("failed to start document store")
	}

	presenter := viewpoll.New(store, polleditor.New(store, polleditor.WithLogger(log)), viewpoll.WithLogger(log))
	presenter.SetDocumentID(cfg.PollID)

	presenter.Observe(ctx, func(s viewpoll.State) {
		logState(log, cfg.PollID, s)
	})
	presenter.Start(ctx)
	if !presenter.Subscribed() {
		log.Error("watcher is idle: no poll subscription", logger.String(logger.FieldPollID, cfg.PollID))
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gCtx.Done()
		presenter.Stop()
		if err := store.Close(); err != nil {
			log.WithError(err).Error("error stopping document store")
		}
		return database.Close(db)
	})

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Info("received shutdown signal", logger.String("signal", sig.String()))
		case <-gCtx.Done():
		}
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("poll watcher stopped with error")
		os.Exit(1)
	}

	log.Info("poll watcher stopped gracefully")
}

func logState(log *logger.CanonicalLogger, pollID string, s viewpoll.State) {
	l := log.WithPollID(pollID)
	switch {
	case s.IsError():
		l.WithError(s.Err).Warn("poll state", logger.String(logger.FieldStateKind, s.Kind.String()))
	case s.IsContent():
		ranking := make([]string, 0, len(s.Content))
		for _, r := range s.Content {
			ranking = append(ranking, rankEntry(r))
		}
		l.Info("poll state",
			logger.String(logger.FieldStateKind, s.Kind.String()),
			logger.Int("restaurants", len(s.Content)),
			logger.Strings("ranking", ranking),
		)
	default:
		l.Info("poll state", logger.String(logger.FieldStateKind, s.Kind.String()))
	}
}

func rankEntry(r models.Restaurant) string {
	entry := fmt.Sprintf("%s (%d)", r.Name, r.TotalVotes())
	if r.Disqualified() {
		entry += " [dq]"
	}
	return entry
}
