package main

import (
	"context"
	"time"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/auction-house/internal/auth"
	"github.com/iliyamo/auction-house/internal/config"
	"github.com/iliyamo/auction-house/internal/database"
	"github.com/iliyamo/auction-house/internal/handler"
	"github.com/iliyamo/auction-house/internal/middleware"
	"github.com/iliyamo/auction-house/internal/queue"
	"github.com/iliyamo/auction-house/internal/repository"
	"github.com/iliyamo/auction-house/internal/router"
	queue_publisher "github.com/iliyamo/auction-house/internal/service"
	"github.com/iliyamo/auction-house/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		logger.Fatalf("ensure schema: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	auctions := repository.NewAuctionRepo(db)
	bids := repository.NewBidRepo(db)

	images, err := buildImageStore(cfg)
	if err != nil {
		logger.Fatalf("setup image storage: %v", err)
	}

	// Redis is optional infrastructure: without it the cache and rate
	// limiter become pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; response cache and rate limiting disabled")
	}

	// Background consumer of the bid broadcast queue.  It reconnects
	// forever on its own; a broker outage never affects request handling.
	go func() {
		if err := queue.StartBidConsumer(queue_publisher.BrokerURL(), logger); err != nil {
			logger.WithError(err).Warn("bid consumer stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.WithFields(logrus.Fields{
				"method": v.Method,
				"uri":    v.URI,
				"status": v.Status,
			}).Info("request")
			return nil
		},
	}))

	router.RegisterRoutes(e, router.Deps{
		Auth:      handler.NewAuthHandler(cfg, users),
		Auctions:  handler.NewAuctionHandler(auctions, bids, images),
		Admin:     handler.NewAdminHandler(cfg, users, auctions, bids),
		Validator: auth.NewValidator(cfg.JWTSecret, users),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	})

	addr := ":" + cfg.Port
	logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		logger.Fatal(err)
	}
}

// buildImageStore selects the image storage backend from configuration:
// local disk by default, S3 when STORAGE_BACKEND=s3.
func buildImageStore(cfg config.Config) (storage.Store, error) {
	if cfg.StorageBackend != "s3" {
		return storage.NewLocalStore(cfg.UploadDir)
	}
	awsCfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, err
	}
	return storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3KeyPrefix), nil
}
