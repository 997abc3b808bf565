package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stocklane/inventory-service/config"
	"github.com/stocklane/inventory-service/internal/auth"
	invHandlerPkg "github.com/stocklane/inventory-service/internal/inventory/handler"
	invListenerPkg "github.com/stocklane/inventory-service/internal/inventory/listener"
	invRepoPkg "github.com/stocklane/inventory-service/internal/inventory/repository"
	invUCPkg "github.com/stocklane/inventory-service/internal/inventory/usecase"
	locHandlerPkg "github.com/stocklane/inventory-service/internal/location/handler"
	locRepoPkg "github.com/stocklane/inventory-service/internal/location/repository"
	locUCPkg "github.com/stocklane/inventory-service/internal/location/usecase"
	prodRepoPkg "github.com/stocklane/inventory-service/internal/product/repository"
	"github.com/stocklane/inventory-service/pkg/broker"
	"github.com/stocklane/inventory-service/pkg/cache"
	"github.com/stocklane/inventory-service/pkg/database/postgres"
	"github.com/stocklane/inventory-service/pkg/logger"
	"github.com/stocklane/inventory-service/pkg/metrics"
	"github.com/stocklane/inventory-service/pkg/middleware"
	"github.com/stocklane/inventory-service/pkg/search"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     false,
		DisableStacktrace: false,
	}

	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("connected to postgres", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Repositories
	locRepo := locRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("could not connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka Consumer
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("connected to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 5.8 Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		// Movement search indexing is optional; run without it.
		appLogger.Warn("could not connect to elasticsearch", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("connected to elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 6. Metrics
	registry := prometheus.NewRegistry()
	appMetrics := metrics.New(registry)

	// 7. Initialize UseCases
	locUC := locUCPkg.NewLocationUseCase(locRepo, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, prodRepo, locRepo, redisClient, esClient, appMetrics, appLogger)

	// 7.5 Start Order Listener
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	orderListener := invListenerPkg.NewOrderListener(kafkaConsumer, invUC, appLogger)
	go orderListener.Start(ctx)

	// 8. HTTP Server
	if cfg.Server.AppEnv != "dev" && cfg.Server.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(auth.Middleware())

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	locHandlerPkg.NewLocationHandler(locUC, appLogger).Register(api)
	invHandlerPkg.NewInventoryHandler(invUC, appLogger).Register(api)

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:    port,
		Handler: router,
	}

	go func() {
		appLogger.Info("starting http server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", zap.Error(err))
	}
	appLogger.Info("server stopped")
}
