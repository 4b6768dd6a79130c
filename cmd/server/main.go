package main

import (
	"context"                       // context package is needed for Redis operations
	"wallet_ledger/internal/api"    // Custom package for API handlers
	"wallet_ledger/internal/config" // Custom package for configuration
	"wallet_ledger/internal/db"     // Database connection and migration
	"wallet_ledger/internal/ledger" // Ledger service
	"wallet_ledger/internal/utils"  // Identity cache

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Connect to the database and bring the schema up to date
	gdb, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	pool := db.Pool{MaxOpenConns: cfg.DBMaxOpenConns, MaxIdleConns: cfg.DBMaxIdleConns, ConnMaxLifetime: cfg.DBConnMaxLifetime}
	if err := db.Tune(gdb, pool); err != nil {
		logrus.Fatalf("failed to configure DB pool: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("failed to migrate DB: %v", err)
	}

	// Setup Redis-backed identity cache when Redis is configured
	var cache utils.Cache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		cache = utils.NewRedisCache(redisClient)
	} else {
		logrus.Warn("REDIS_ADDR not set, identity lookups are not cached")
	}

	svc := ledger.New(gdb, ledger.OptionsFromConfig(cfg, cache))

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.New() // Request logging is done by middleware.RequestLogger
	r.Use(gin.Recovery())

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.RegisterRoutes(r, svc, cfg.JWTSecret)

	logrus.WithFields(logrus.Fields{"port": cfg.AppPort, "driver": cfg.DBDriver}).Info("Server running") // Log server start
	// Start the server on port cfg.AppPort
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
