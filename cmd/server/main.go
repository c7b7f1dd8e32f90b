package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/slidyranks/ranks-api/internal/config"
	"github.com/slidyranks/ranks-api/internal/feed"
	"github.com/slidyranks/ranks-api/internal/handlers"
	"github.com/slidyranks/ranks-api/internal/logic"
	"github.com/slidyranks/ranks-api/internal/store"
	"github.com/slidyranks/ranks-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// The registry and schedule are validated once; a bad schedule is fatal.
	schedule, err := config.LoadSchedule(cfg.SchedulePath)
	if err != nil {
		logger.Fatal("Invalid tier schedule", zap.Error(err))
	}
	logger.Info("Tier schedule loaded",
		zap.Int("categories", schedule.Registry().Len()),
		zap.Int("tiers", len(schedule.AllTiers())))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis: snapshot store
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Invalid REDIS_URL", zap.Error(err))
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Postgres: user aliases
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pg.Close()

	aliases := store.NewAliasStore(pg, logger)
	if err := aliases.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to prepare alias table", zap.Error(err))
	}

	checks := map[string]handlers.ReadyCheck{
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		"postgres": pg.Ping,
	}

	// ClickHouse: optional raw result archive
	var archive logic.ResultArchive
	var queue handlers.ArchiveQueue
	if cfg.ArchiveEnabled() {
		chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
		if err != nil {
			logger.Fatal("Invalid CLICKHOUSE_URL", zap.Error(err))
		}
		ch, err := clickhouse.Open(chOpts)
		if err != nil {
			logger.Fatal("Failed to open ClickHouse", zap.Error(err))
		}
		defer ch.Close()

		pool := worker.NewPool(worker.PoolConfig{
			WorkerCount:   cfg.WorkerCount,
			QueueSize:     cfg.QueueSize,
			BatchSize:     cfg.BatchSize,
			FlushInterval: cfg.FlushInterval,
			ClickHouse:    ch,
			Logger:        logger,
		})
		if err := pool.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to prepare archive table", zap.Error(err))
		}
		pool.Start(context.Background())
		defer pool.Stop()

		archive, queue = pool, pool
		checks["clickhouse"] = ch.Ping
	}

	service := logic.NewLeaderboardService(logic.ServiceConfig{
		Schedule: schedule,
		Fetcher: feed.NewClient(feed.Config{
			URL:           cfg.FeedURL,
			Version:       cfg.FeedVersion,
			Timeout:       cfg.FeedTimeout,
			RatePerSecond: cfg.FeedRatePerSecond,
			Logger:        logger,
		}),
		Store:   store.NewSnapshotStore(rdb, logger),
		Aliases: aliases,
		Archive: archive,
		Logger:  logger,
	})

	h := handlers.New(handlers.Config{
		Leaderboard: service,
		Archive:     queue,
		ReadyChecks: checks,
		AdminToken:  cfg.AdminToken,
		Logger:      logger,
	})

	var updates sync.WaitGroup
	if cfg.UpdateInterval > 0 {
		updates.Add(1)
		go func() {
			defer updates.Done()
			runUpdates(ctx, service, cfg.UpdateInterval, logger.Sugar())
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Router(cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Fatal("Failed to listen", zap.Error(err))
	}

	logger.Info("Ranks API starting", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
	err = serve(ctx, srv, ln, 15*time.Second, logger)

	// Deferred cleanup closes the stores and the archive pool, so nothing
	// may still be using them once main returns.
	stop()
	updates.Wait()
	if err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}

// serve runs srv on ln until ctx is cancelled, then shuts it down and
// returns only after in-flight requests have finished or grace expired.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runUpdates refreshes the stored results table once at startup and then
// on a fixed interval.
func runUpdates(ctx context.Context, service logic.LeaderboardService, every time.Duration, logger *zap.SugaredLogger) {
	update := func() {
		if _, err := service.Update(ctx); err != nil && ctx.Err() == nil {
			logger.Errorw("Scheduled update failed", "error", err)
		}
	}

	update()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

// initLogger initializes the zap logger
func initLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}
