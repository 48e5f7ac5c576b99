package main

// @title           Fork Authority Polls API
// @version         1.0
// @description     Restaurant polls with live vote ordering over server-sent events.
// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.basic  BasicAuth

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/Alwanly/forkauthority-polls/docs/server"
	"github.com/Alwanly/forkauthority-polls/internal/config"
	"github.com/Alwanly/forkauthority-polls/internal/metrics"
	"github.com/Alwanly/forkauthority-polls/internal/server/polls/handler"
	authentication "github.com/Alwanly/forkauthority-polls/pkg/auth"
	"github.com/Alwanly/forkauthority-polls/pkg/database"
	"github.com/Alwanly/forkauthority-polls/pkg/deps"
	"github.com/Alwanly/forkauthority-polls/pkg/docstore"
	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/Alwanly/forkauthority-polls/pkg/middleware"
	"github.com/Alwanly/forkauthority-polls/pkg/poll"
	"github.com/Alwanly/forkauthority-polls/pkg/pubsub"
	swagger "github.com/gofiber/swagger"
)

func main() {
	envErr := godotenv.Load()

	log, err := logger.NewLoggerFromEnv("server")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Debug("no .env file loaded", logger.Error(envErr))
	}

	log.Info("starting poll server")

	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	log.Info("configuration loaded",
		logger.String("server_addr", cfg.ServerAddr),
		logger.String("database_path", cfg.DatabasePath),
		logger.Duration("sync_interval", cfg.SyncInterval),
	)

	mid := middleware.NewAuthMiddleware(middleware.SetBasicAuth(&authentication.BasicAuthTConfig{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	}))

	db, err := database.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	log.Info("database initialized", logger.String("path", cfg.DatabasePath))

	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}
	log.Info("database migrations applied successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storeOpts := []docstore.Option{
		docstore.WithLogger(log),
		docstore.WithRetry(cfg.StoreRetry),
		docstore.WithPoller(poll.NewPoller(log, clockwork.NewRealClock()), cfg.SyncInterval),
	}

	if cfg.Redis != nil {
		redisPub, err := pubsub.NewRedisPubSub(ctx, *cfg.Redis, log)
		if err != nil {
			log.WithError(err).Error("Failed to initialize Redis pub/sub, continuing in poll-only mode",
				logger.String("impact", "document_updates_via_polling_only"),
				logger.String("mode", "poll-only"))
		} else {
			storeOpts = append(storeOpts, docstore.WithNotifier(redisPub))
			log.Info("Redis pub/sub initialized successfully",
				logger.String("host", cfg.Redis.Host),
				logger.Int("port", cfg.Redis.Port),
				logger.String("mode", "hybrid_push_pull"))
			defer redisPub.Close()
		}
	} else {
		log.Info("no Redis configuration provided; skipping pub/sub initialization")
	}

	store := docstore.NewSQLStore(db, storeOpts...)
	if err := store.Start(ctx); err != nil {
		log.WithError(err).Fatal("failed to start document store")
	}

	app := fiber.New(fiber.Config{
		AppName:               "Poll Server",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.CanonicalLoggerMiddleware(log))

	handler.NewHandler(deps.App{
		Context:    ctx,
		Fiber:      app,
		Logger:     log,
		Store:      store,
		Metrics:    metrics.New(),
		Middleware: mid,
	}, cfg)

	app.Get("/swagger/*", swagger.HandlerDefault)

	gErr, gCtx := errgroup.WithContext(ctx)

	gErr.Go(func() error {
		log.Info("poll server is running", logger.String("address", cfg.ServerAddr))
		if err := app.Listen(cfg.ServerAddr); err != nil {
			cancel()
			return err
		}
		return nil
	})

	gErr.Go(func() error {
		<-gCtx.Done()

		// ctx is done by now, so open event streams are already closing
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("failed to shutdown fiber app")
		}

		if err := store.Close(); err != nil {
			log.WithError(err).Error("failed to stop document store")
		}

		if err := database.Close(db); err != nil {
			log.WithError(err).Error("failed to close database")
			return err
		}

		return nil
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		log.Info("listening for shutdown signals")
		<-sigChan
		log.Info("shutdown signal received")
		cancel()
	}()

	if err := gErr.Wait(); err != nil {
		log.WithError(err).Fatal("poll server encountered an error")
	}

	log.Info("poll server stopped gracefully")
}
