package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/gourmet-house/config"
	"github.com/yeremiapane/gourmet-house/database"
	"github.com/yeremiapane/gourmet-house/queue"
	"github.com/yeremiapane/gourmet-house/realtime"
	"github.com/yeremiapane/gourmet-house/router"
	"github.com/yeremiapane/gourmet-house/services"
	"github.com/yeremiapane/gourmet-house/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.Log.Level, cfg.Log.Format)

	if cfg.App.GinMode == "release" || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := database.Open(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := store.AutoMigrate(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	if cfg.Database.Seed {
		if err := store.Seed(context.Background()); err != nil {
			utils.ErrorLogger.Errorf("Seeding failed: %v", err)
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	hub := realtime.NewHub()

	// With RabbitMQ every instance publishes to the exchange and feeds its own
	// hub from it; without it events go straight to the local hub.
	var notifier services.Notifier = hub
	var publisher *queue.Publisher
	var consumer *queue.Consumer
	if cfg.Queue.URL != "" {
		publisher = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Exchange, cfg.Queue.Queue)
		consumer = queue.NewConsumer(cfg.Queue.URL, cfg.Queue.Exchange, hub.Notify)
		consumer.Start(context.Background())
		notifier = publisher
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = randomSecret()
		utils.ErrorLogger.Warn("JWT_SECRET not set, using a random secret; admin tokens will not survive restarts")
	}
	auth, err := services.NewAuthService(cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash, cfg.Auth.AdminPassword,
		utils.NewTokenManager(secret, cfg.Auth.JWTTTL))
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid admin credentials: %v", err)
	}
	if !auth.Enabled() {
		utils.ErrorLogger.Warn("No admin password configured, admin endpoints are disabled")
	}

	r := router.SetupRouter(router.Deps{
		Config:   cfg,
		Store:    store,
		Redis:    rdb,
		Hub:      hub,
		Notifier: notifier,
		Auth:     auth,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s (%s)", cfg.App.Port, cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Errorf("HTTP shutdown: %v", err)
	}

	hub.Close()
	shutdown(consumer, publisher, rdb, store)
	utils.InfoLogger.Println("Server stopped")
}

func shutdown(consumer *queue.Consumer, publisher *queue.Publisher, rdb *redis.Client, store *database.Store) {
	if consumer != nil {
		consumer.Stop()
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			utils.ErrorLogger.Errorf("Closing RabbitMQ publisher: %v", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			utils.ErrorLogger.Errorf("Closing Redis: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		utils.ErrorLogger.Errorf("Closing database: %v", err)
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		utils.ErrorLogger.Fatalf("Generating JWT secret: %v", err)
	}
	return hex.EncodeToString(b)
}
