package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"bond-registry/internal/config"
	apphttp "bond-registry/internal/http"
	"bond-registry/internal/lei"
	"bond-registry/internal/metrics"
	"bond-registry/internal/repository/sqlite"
	"bond-registry/internal/service"
	"bond-registry/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, keeping %s", cfg.Log.Level, logger.GetLevel())
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	bondRepo := sqlite.NewBondRepository(db)
	if err := sqlite.Migrate(ctx, userRepo, bondRepo); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	resolver, closeResolver := buildResolver(ctx, cfg, logger, m)
	defer closeResolver()

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	bondService := service.NewBondService(bondRepo, resolver, logger, m)
	userService := service.NewUserService(userRepo)
	exportService := service.NewExportService(bondRepo, storageSvc, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		bondService,
		userService,
		exportService,
		apphttp.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.TokenTTL()),
		logger,
		m,
		registry,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildResolver returns the GLEIF client, fronted by a Redis cache when one is configured.
func buildResolver(ctx context.Context, cfg config.Config, logger *logrus.Logger, m *metrics.Metrics) (lei.Resolver, func()) {
	client := lei.NewGLEIFClient(cfg.GLEIF.Endpoint,
		lei.WithTimeout(cfg.GLEIF.Timeout),
		lei.WithLogger(logger),
		lei.WithMetrics(m),
	)
	logger.Infof("resolving LEIs via %s (timeout %s)", cfg.GLEIF.Endpoint, cfg.GLEIF.Timeout)

	if cfg.Cache.RedisURL == "" {
		return client, func() {}
	}

	redisClient, err := lei.NewRedisClient(ctx, cfg.Cache.RedisURL)
	if err != nil {
		logger.Warnf("lei cache disabled: %v", err)
		return client, func() {}
	}
	logger.Infof("caching LEI lookups in redis for %s", cfg.Cache.TTL)

	cached := lei.NewCachingResolver(client, lei.NewRedisCache(redisClient), cfg.Cache.TTL, logger, m)
	return cached, func() {
		if err := redisClient.Close(); err != nil {
			logger.Warnf("close redis: %v", err)
		}
	}
}

// buildStorage returns nil when no export bucket is configured.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("bond export disabled: no storage bucket configured")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("exporting bonds to s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
