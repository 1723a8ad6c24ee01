package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sargasolutions/campaign-engine/internal/analytics"
	"github.com/sargasolutions/campaign-engine/internal/cache"
	"github.com/sargasolutions/campaign-engine/internal/config"
	"github.com/sargasolutions/campaign-engine/internal/handler"
	"github.com/sargasolutions/campaign-engine/internal/infra/postgresql"
	"github.com/sargasolutions/campaign-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/sargasolutions/campaign-engine/internal/infra/redis"
	"github.com/sargasolutions/campaign-engine/internal/observability"
	"github.com/sargasolutions/campaign-engine/internal/provider"
	"github.com/sargasolutions/campaign-engine/internal/queue"
	"github.com/sargasolutions/campaign-engine/internal/repository"
	"github.com/sargasolutions/campaign-engine/internal/service"
	"github.com/sargasolutions/campaign-engine/internal/transport"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rateLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer rabbit.Close()

	publisher := queue.NewRabbitMQPublisher(rabbit)
	consumer := queue.NewRabbitMQConsumer(rabbit, cfg.WorkerConcurrency, logger)

	sender, err := buildSender(cfg, logger)
	if err != nil {
		logger.Fatal("email sender initialization failed", zap.Error(err))
	}

	subscriberRepo := repository.NewGormSubscriberRepo(db)
	campaignRepo := repository.NewGormCampaignRepo(db)
	contactRepo := repository.NewGormContactRepo(db)
	templateRepo := repository.NewGormTemplateRepo(db)
	emailLogRepo := repository.NewGormEmailLogRepo(db)

	dataClient, err := analytics.NewDataClient(cfg.AnalyticsAPIURL, cfg.AnalyticsToken, cfg.AnalyticsPropertyID)
	if err != nil {
		logger.Fatal("analytics client initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	reconstructor, err := analytics.NewReconstructor(dataClient, logger, metrics)
	if err != nil {
		logger.Fatal("reconstructor initialization failed", zap.Error(err))
	}

	results := cache.New(nil, map[string]time.Duration{
		cache.SlotOverview:     time.Duration(cfg.OverviewCacheTTLMin) * time.Minute,
		cache.SlotTimeSeries7d: time.Duration(cfg.TimeSeriesCacheTTLMin) * time.Minute,
	})

	broadcastSvc, err := service.NewBroadcastService(
		subscriberRepo,
		campaignRepo,
		templateRepo,
		sender,
		rateLimiter,
		time.Duration(cfg.BroadcastDelayMillis)*time.Millisecond,
		cfg.BroadcastErrorCap,
		logger,
	)
	if err != nil {
		logger.Fatal("broadcast service initialization failed", zap.Error(err))
	}
	broadcastSvc.SetMetrics(metrics)

	analyticsSvc, err := service.NewAnalyticsService(dataClient, reconstructor, results, cfg.TimeSeriesWindowDays, logger)
	if err != nil {
		logger.Fatal("analytics service initialization failed", zap.Error(err))
	}
	analyticsSvc.SetMetrics(metrics)

	subscriptionSvc, err := service.NewSubscriptionService(subscriberRepo, publisher, logger)
	if err != nil {
		logger.Fatal("subscription service initialization failed", zap.Error(err))
	}
	subscriptionSvc.SetMetrics(metrics)

	contactSvc, err := service.NewContactService(contactRepo, publisher, logger)
	if err != nil {
		logger.Fatal("contact service initialization failed", zap.Error(err))
	}

	worker, err := service.NewTransactionalWorker(
		consumer,
		templateRepo,
		sender,
		rateLimiter,
		emailLogRepo,
		cfg.WorkerConcurrency,
		logger,
	)
	if err != nil {
		logger.Fatal("transactional worker initialization failed", zap.Error(err))
	}
	worker.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	if err := handler.RegisterSubscriberRoutes(app, subscriptionSvc); err != nil {
		logger.Fatal("subscriber route registration failed", zap.Error(err))
	}
	if err := handler.RegisterContactRoutes(app, contactSvc); err != nil {
		logger.Fatal("contact route registration failed", zap.Error(err))
	}
	if err := handler.RegisterBroadcastRoutes(app, broadcastSvc); err != nil {
		logger.Fatal("broadcast route registration failed", zap.Error(err))
	}
	if err := handler.RegisterAnalyticsRoutes(app, analyticsSvc); err != nil {
		logger.Fatal("analytics route registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("campaign-engine api started", zap.Int("port", cfg.APIPort))
		return app.Listen(addr(cfg.APIPort))
	})

	g.Go(func() error {
		logger.Info("transactional worker started", zap.Int("concurrency", cfg.WorkerConcurrency))
		return worker.Start(groupCtx)
	})

	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shutdown with error", zap.Error(err))
	}
	logger.Info("campaign-engine stopped")
}

// buildSender picks the outbound transport: the literal key "dev" routes
// mail to the log-only sender so local stacks never hit the provider.
func buildSender(cfg *config.Config, logger *zap.Logger) (provider.Sender, error) {
	if strings.EqualFold(cfg.EmailAPIKey, "dev") {
		return provider.NewDevSender(logger), nil
	}
	return provider.NewResendSender(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom)
}

func addr(port int) string {
	return ":" + strconv.Itoa(port)
}
