package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"waypost/internal/adapter/cache"
	"waypost/internal/adapter/events"
	"waypost/internal/adapter/external"
	"waypost/internal/adapter/storage"
	"waypost/internal/config"
	"waypost/internal/logger"
	"waypost/internal/server"
	areasvc "waypost/internal/service/area"
	geosvc "waypost/internal/service/geo"
	moderationsvc "waypost/internal/service/moderation"
	rewardsvc "waypost/internal/service/reward"
)

func main() {
	// Local overrides; absent in deployed environments
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		zlog.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// The cache and limiter degrade without redis; log loudly, keep going.
		zlog.Warn("Redis unreachable at startup", zap.Error(err))
	}
	defer redisClient.Close()

	natsConn, err := initNATS(cfg.NATS, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Close()

	// Initialize storage adapters
	areaStore := storage.NewAreaStore(db)
	mediaStore := storage.NewMediaStore(db)
	checkInStore := storage.NewCheckInStore(db)
	incentiveStore := storage.NewIncentiveStore(db)

	// Shared redis surfaces
	detailsCache := cache.NewDetailsCache(redisClient, cfg.Cache.DetailsTTL, zlog)
	counter := cache.NewCounter(redisClient)

	// Collaborator service clients
	usersClient := external.NewUsersClient(cfg.Services.UsersBaseURL, cfg.Services.RequestTimeout)
	reactionsClient := external.NewReactionsClient(cfg.Services.ReactionsBaseURL, cfg.Services.RequestTimeout)
	mediaClient := external.NewMediaClient(cfg.Services.MediaBaseURL, cfg.Services.RequestTimeout)
	safetyClient := external.NewSafetyClient(cfg.Services.MediaSafetyURL, cfg.Services.RequestTimeout)

	// Initialize services
	textScreener := moderationsvc.NewTextScreener(cfg.Moderation.ExtraBlockedTerms)
	gate := moderationsvc.NewGate(
		textScreener,
		safetyClient,
		areaStore,
		detailsCache,
		cfg.Moderation.MediaCheckTimeout,
		zlog,
	)

	coordinator := rewardsvc.NewCoordinator(incentiveStore, usersClient, zlog)
	geocoder := geosvc.NewRegionGeocoder()
	publisher := events.NewPublisher(natsConn, cfg.NATS.EventsSubject, zlog)

	areaService := areasvc.NewService(areasvc.Deps{
		Store:      areaStore,
		Media:      mediaStore,
		CheckIns:   checkInStore,
		Incentives: incentiveStore,
		Cache:      detailsCache,
		Gate:       gate,
		Geocoder:   geocoder,
		Users:      usersClient,
		Reactions:  reactionsClient,
		MediaURLs:  mediaClient,
		Rewards:    coordinator,
		Publisher:  publisher,
		Log:        zlog,
	})

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, cfg.RateLimit, areaService, counter, zlog)

	// Start HTTP server
	go func() {
		zlog.Info("Starting HTTP server",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	zlog.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Error("HTTP server shutdown error", zap.Error(err))
	}

	zlog.Info("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, zlog *zap.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			zlog.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			zlog.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			zlog.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
