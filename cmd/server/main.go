package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/simaogato/wealthflow-valuation/internal/adapter/cache"
	grpcadapter "github.com/simaogato/wealthflow-valuation/internal/adapter/grpc"
	"github.com/simaogato/wealthflow-valuation/internal/adapter/httpapi"
	"github.com/simaogato/wealthflow-valuation/internal/adapter/pricesource"
	"github.com/simaogato/wealthflow-valuation/internal/adapter/ratesource"
	"github.com/simaogato/wealthflow-valuation/internal/adapter/report"
	"github.com/simaogato/wealthflow-valuation/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthflow-valuation/internal/config"
	"github.com/simaogato/wealthflow-valuation/internal/domain"
	"github.com/simaogato/wealthflow-valuation/internal/logger"
	"github.com/simaogato/wealthflow-valuation/internal/scheduler"
	"github.com/simaogato/wealthflow-valuation/internal/usecase/snapshot"
	"github.com/simaogato/wealthflow-valuation/internal/usecase/valuation"
	"github.com/simaogato/wealthflow-valuation/internal/usecase/warmer"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 1. Setup Database
	db, err := postgres.NewDB(ctx, cfg.Postgres.DSN(), cfg.Postgres.MaxOpenConns)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(cfg.Postgres.MigrationDir); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
	log.Info().Msg("Database migrated")

	accountRepo := postgres.NewAccountRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)

	// 2. Quote cache; valuations still work without it, just with no stale fallback
	quoteCache := setupQuoteCache(ctx, cfg, log)

	// 3. Market data sources
	prices := pricesource.New(pricesource.Config{
		BaseURL:        cfg.PriceAPI.URL,
		Timeout:        cfg.PriceAPI.Timeout,
		MaxConcurrency: cfg.PriceAPI.MaxConcurrency,
		RetryCount:     cfg.PriceAPI.RetryCount,
		Debug:          cfg.PriceAPI.Debug,
		FreshTTL:       cfg.Cache.QuoteFreshTTL,
	}, quoteCache, log)

	rates := ratesource.New(ratesource.Config{
		BaseURL:    cfg.RateAPI.URL,
		Timeout:    cfg.RateAPI.Timeout,
		RetryCount: cfg.RateAPI.RetryCount,
		Debug:      cfg.RateAPI.Debug,
	}, log)

	// 4. Use cases
	valuationService := valuation.NewValuationService(prices, rates, accountRepo, log)
	quoteWarmer := warmer.NewQuoteWarmer(accountRepo, prices, log)
	snapshotService := snapshot.NewSnapshotService(valuationService, snapshotRepo, accountRepo, log)

	// 5. Background jobs
	jobs, err := scheduler.New(log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	if cfg.Jobs.WarmQuotesEnabled {
		if err := jobs.NewIntervalJob("warm_quotes", quoteWarmer.Warm, cfg.Jobs.WarmQuotesInterval, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule quote warmer")
		}
	}
	if cfg.Jobs.SnapshotEnabled {
		if err := jobs.NewCrontabJob("capture_snapshots", snapshotService.CaptureAll, cfg.Jobs.SnapshotCrontab, false); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule snapshot capture")
		}
	}
	jobs.Start()

	// 6. gRPC server
	healthServer := health.NewServer()
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log),
			grpcadapter.AuthInterceptor(cfg.Auth.APIToken, grpcadapter.HealthCheckMethod),
		),
	)
	grpcadapter.RegisterValuationServiceServer(grpcServer, grpcadapter.NewServer(valuationService, log))
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPC.Addr).Msg("Failed to listen")
	}

	go func() {
		log.Info().Str("addr", cfg.GRPC.Addr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC server stopped")
			stop()
		}
	}()
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)

	// 7. HTTP server
	httpServer := httpapi.New(httpapi.Config{
		Addr:           cfg.HTTP.Addr,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		APIToken:       cfg.Auth.APIToken,
	}, valuationService, report.NewXLSXGenerator(log), snapshotService, log)

	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server stopped")
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info().Msg("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	healthServer.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	grpcServer.GracefulStop()
	if err := jobs.Stop(); err != nil {
		log.Error().Err(err).Msg("Scheduler shutdown failed")
	}

	log.Info().Msg("Server stopped")
}

// setupQuoteCache connects to redis, returning nil when it is unreachable
func setupQuoteCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) domain.QuoteCache {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rdb, err := cache.NewRedisClient(pingCtx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn().Err(err).Msg("Quote cache disabled")
		return nil
	}

	log.Info().Str("addr", cfg.Redis.Addr()).Msg("Redis connected")
	return cache.NewQuoteCache(rdb, cfg.Cache.QuoteStaleTTL, log)
}
