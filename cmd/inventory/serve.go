package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	_ "github.com/vegatran/GaraManager-sub003/cmd/inventory/docs"
	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/config"
	"github.com/vegatran/GaraManager-sub003/internal/inventory"
	grpcDelivery "github.com/vegatran/GaraManager-sub003/internal/inventory/delivery/grpc"
	httpDelivery "github.com/vegatran/GaraManager-sub003/internal/inventory/delivery/http"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/usecase/command"
	"github.com/vegatran/GaraManager-sub003/kafka"
	"github.com/vegatran/GaraManager-sub003/pkg/auth"
	"github.com/vegatran/GaraManager-sub003/pkg/database"
	"github.com/vegatran/GaraManager-sub003/pkg/lock"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
	"github.com/vegatran/GaraManager-sub003/pkg/tracing"
)

const healthInterval = 10 * time.Second

func newServeCommand() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "migrate the schema before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, autoMigrate bool) error {
	tp, err := tracing.InitTracer(cfg.Service.Name, cfg.Service.Version, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB(db)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}

	if autoMigrate {
		if err := migrate(db); err != nil {
			return err
		}
	}

	redisClient, err := newRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var (
		locker      lock.Locker = lock.NewLocal()
		rateLimiter *httpDelivery.RateLimiter
	)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Logger.Warn().Err(err).Msg("Failed to close redis client")
			}
		}()
		locker = lock.NewRedis(redisClient)
		if cfg.HTTP.RateLimit > 0 {
			rateLimiter = httpDelivery.NewRateLimiter(redisClient, cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)
		}
	}

	broadcaster, closeBroadcaster, err := newBroadcaster(cfg.Kafka)
	if err != nil {
		return err
	}
	defer closeBroadcaster()

	recorder := audit.NewRecorder(db, cfg.Inventory.AuditBufferSize)
	defer recorder.Close()

	svc, err := inventory.InitializeService(db, locker, recorder, audit.NewReader(db), broadcaster, command.BulkLimit(cfg.Inventory.BulkMaxItems))
	if err != nil {
		return fmt.Errorf("initialize inventory service: %w", err)
	}
	// Pending announcements must finish before the recorder and publisher close.
	defer svc.Notifier.Wait()

	router := httpDelivery.NewRouter(svc.Handler, httpDelivery.RouterConfig{
		Middleware:  httpDelivery.DefaultMiddlewareConfig(cfg.HTTP.AllowedOrigins, cfg.HTTP.RequestTimeout),
		Validator:   auth.NewValidator(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenTTL),
		Metrics:     httpDelivery.NewMetrics(prometheus.DefaultRegisterer),
		RateLimiter: rateLimiter,
		Gatherer:    prometheus.DefaultGatherer,
		DB:          sqlDB,
		Swagger:     httpDelivery.DefaultSwaggerHandler(),
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	reporter := grpcDelivery.NewHealthReporter(sqlDB, healthInterval)
	grpcServer := grpcDelivery.NewServer(reporter.Server())
	grpcListener, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	errCh := make(chan error, 2)

	go reporter.Run(ctx)

	go func() {
		logger.Logger.Info().Str("port", cfg.GRPC.Port).Msg("gRPC server started")
		if err := grpcServer.Serve(grpcListener); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTP.Port).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Logger.Info().Msg("Shutting down server...")
	case serveErr = <-errCh:
		logger.Logger.Error().Err(serveErr).Msg("Server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}
	grpcServer.GracefulStop()

	logger.Logger.Info().Msg("Server stopped")
	return serveErr
}

// newRedisClient returns nil when Redis is disabled; part locks then stay
// in process and the API is not rate limited.
func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		logger.Logger.Info().Msg("Redis disabled, using in-process part locks")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	logger.Logger.Info().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return client, nil
}

func newBroadcaster(cfg config.KafkaConfig) (command.Broadcaster, func(), error) {
	if !cfg.Enabled {
		logger.Logger.Info().Msg("Kafka disabled, events are logged only")
		return kafka.LogBroadcaster{}, func() {}, nil
	}

	publisher, err := kafka.NewPublisher(cfg.Brokers)
	if err != nil {
		return nil, nil, err
	}
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to close kafka publisher")
		}
	}, nil
}
