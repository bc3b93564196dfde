package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/haus-live/haus-mint/internal/config"
	"github.com/haus-live/haus-mint/internal/di"
	"github.com/haus-live/haus-mint/internal/middleware"
	"github.com/haus-live/haus-mint/pkg/kafka"
	"github.com/haus-live/haus-mint/pkg/logger"
	"github.com/haus-live/haus-mint/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting haus mint service...")

	ctx := context.Background()

	// Tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Tracing init failed: %v", err))
	} else {
		defer telemetry.Shutdown(ctx)
	}

	// Redis (idempotency); the service runs without it, minus replay
	// protection.
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			appLog.Warn(fmt.Sprintf("Redis connection failed: %v", err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info("Redis connected")
		}
	}

	// Kafka (mint announcements); optional.
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer, err = kafka.NewProducer(ctx, &kafka.ProducerConfig{
			Brokers:       cfg.Kafka.Brokers,
			ClientID:      cfg.Kafka.ClientID,
			MaxRetries:    3,
			RetryInterval: 100 * time.Millisecond,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed: %v", err))
			producer = nil
		} else {
			defer producer.Close()
			appLog.Info("Kafka connected")
		}
	}

	container, err := di.NewContainer(&di.ContainerConfig{
		Config:   cfg,
		Logger:   appLog.Logger,
		Producer: producer,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to build container: %v", err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(appLog.Logger))
	if cfg.OTel.Enabled {
		router.Use(telemetry.Middleware())
	}

	router.GET("/health", container.HealthHandler.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"version": cfg.App.Version,
				"service": cfg.App.Name,
			})
		})

		events := v1.Group("/events")
		if redisClient != nil {
			events.POST("/mint",
				middleware.Idempotency(middleware.IdempotencyConfig{Redis: redisClient}),
				container.MintHandler.Mint,
			)
		} else {
			events.POST("/mint", container.MintHandler.Mint)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info(fmt.Sprintf("Mint service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
