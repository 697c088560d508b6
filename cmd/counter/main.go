package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/elbara99/ai-counter-cafeteria/internal/camera"
	"github.com/elbara99/ai-counter-cafeteria/internal/cart"
	"github.com/elbara99/ai-counter-cafeteria/internal/catalog"
	"github.com/elbara99/ai-counter-cafeteria/internal/checkout"
	"github.com/elbara99/ai-counter-cafeteria/internal/classifier"
	"github.com/elbara99/ai-counter-cafeteria/internal/detection"
	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
	"github.com/elbara99/ai-counter-cafeteria/internal/exporter"
	"github.com/elbara99/ai-counter-cafeteria/internal/httpapi"
	"github.com/elbara99/ai-counter-cafeteria/internal/orders"
	"github.com/elbara99/ai-counter-cafeteria/internal/poller"
	"github.com/elbara99/ai-counter-cafeteria/internal/stats"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	RedisPassword   string
	ModelPath       string
	CameraDir       string
	ExportDir       string
	OrdersDBPath    string
	MigrationsPath  string
	PollInterval    time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		ModelPath:       getEnv("MODEL_PATH", "model/model.json"),
		CameraDir:       getEnv("CAMERA_DIR", "frames"),
		ExportDir:       getEnv("EXPORT_DIR", "exports"),
		OrdersDBPath:    getEnv("ORDERS_DB_PATH", "orders.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "internal/orders/migrations"),
		PollInterval:    getDurationEnv("POLL_INTERVAL", poller.DefaultInterval),
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("invalid duration in %s=%q, using %s", key, os.Getenv(key), defaultValue)
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Stats live under a single key in the local Redis. An unreachable
	// store is not fatal: counters start from zeros and persistence
	// failures are logged as they happen.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unreachable at %s, stats will not persist: %v", cfg.RedisAddr, err)
	}
	statsService := stats.NewService(ctx, stats.NewRedisStore(redisClient))

	// Order archive. A broken database degrades to "no archive".
	var archive orders.RepoInterface
	repo, err := orders.NewRepository(cfg.OrdersDBPath)
	if err != nil {
		log.Printf("order archive unavailable: %v", err)
	} else if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Printf("order archive migrations failed, archiving disabled: %v", err)
		repo.Close()
	} else {
		archive = repo
		defer repo.Close()
		log.Printf("order archive at %s", cfg.OrdersDBPath)
	}

	exp, err := exporter.New(cfg.ExportDir)
	if err != nil {
		log.Fatalf("Failed to prepare export directory: %v", err)
	}

	cat := catalog.Default()
	shoppingCart := cart.New()
	checkoutService := checkout.NewService(shoppingCart, statsService, exp, archive)

	// The model load failure is surfaced visibly and retried only on
	// explicit user action through the API.
	adapter := classifier.NewAdapter()
	if err := adapter.Load(cfg.ModelPath); err != nil {
		log.Printf("MODEL NOT LOADED (%v) — retry via POST /api/model/load", err)
	} else {
		log.Printf("model loaded from %s, labels %v", cfg.ModelPath, adapter.Labels())
	}

	cam := camera.NewFileCamera(cfg.CameraDir)
	if err := cam.Start(); err != nil {
		log.Printf("camera unavailable: %s", camera.UserMessage(err))
	}
	defer cam.Stop()

	pipeline := detection.New(adapter, cat)
	detectPoller := poller.New(pipeline, cam, adapter.Ready, cfg.PollInterval)
	defer detectPoller.Stop()

	server := httpapi.NewServer(httpapi.Deps{
		Catalog:    cat,
		Cart:       shoppingCart,
		Stats:      statsService,
		Checkout:   checkoutService,
		Poller:     detectPoller,
		Orders:     archive,
		LoadModel:  func() error { return adapter.Load(cfg.ModelPath) },
		ModelReady: adapter.Ready,
		StartCamera: func() error {
			err := cam.Start()
			if errors.Is(err, camera.ErrDeviceBusy) {
				return nil // already capturing
			}
			return err
		},
		OnDetections: func(detections []domain.Detection) {
			items := checkoutService.HandleDetections(ctx, detections)
			for _, item := range items {
				log.Printf("scanned %s (%.0f%%), cart total %.2f %s",
					item.PrimaryName, item.Confidence*100, shoppingCart.Total(), exporter.Currency)
			}
		},
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: server.Handler(),
	}

	go func() {
		log.Printf("counter listening on port %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down counter...")
	detectPoller.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	log.Println("Counter stopped")
}
