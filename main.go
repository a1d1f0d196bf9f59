package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/config"
	"github.com/Hiteshmehtaa/yann-app-sub003/cron"
	"github.com/Hiteshmehtaa/yann-app-sub003/database"
	"github.com/Hiteshmehtaa/yann-app-sub003/database/repository"
	"github.com/Hiteshmehtaa/yann-app-sub003/handlers"
	"github.com/Hiteshmehtaa/yann-app-sub003/routes"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/booking"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/dispatch"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/events"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/notification"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/pricing"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/tasks"
	"github.com/Hiteshmehtaa/yann-app-sub003/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	ctx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Stores.
	var (
		stores      *repository.Stores
		mongoClient *mongo.Client
	)
	switch cfg.StoreDriver {
	case "memory":
		stores = repository.NewMemoryStores().Stores()
		logger.Warn("main: using in-memory stores, data is lost on restart")
	default:
		db, err := database.InitDB(ctx)
		if err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		mongoClient = database.MongoClient
		stores, err = repository.NewMongoStores(db)
		if err != nil {
			logger.Fatal("main: failed to initialize repositories", zap.Error(err))
		}
	}

	// Redis backs buzzer collapsing; without it buzzers are not collapsed.
	var redisClients []*redis.Client
	var buzzerGate booking.BuzzerGate
	if cacheClient, err := utils.InitCache(ctx); err != nil {
		logger.Warn("main: redis unavailable, buzzer collapsing disabled", zap.Error(err))
	} else {
		redisClients = append(redisClients, cacheClient)
		buzzerGate = booking.NewRedisBuzzerGate(cacheClient)
	}

	// Push delivery is optional; without credentials notifications are logged.
	var pusher notification.Pusher
	if fcm, err := utils.FirebaseInit(ctx); err != nil {
		logger.Warn("main: firebase unavailable, notifications are log-only", zap.Error(err))
	} else {
		pusher = fcm
	}
	notifier, err := notification.NewDefaultNotificationService(stores.Providers, stores.Residents, pusher, logger)
	if err != nil {
		logger.Fatal("main: failed to initialize notification service", zap.Error(err))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher := events.NewAMQPPublisher(cfg.AMQPURL, logger)
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	deps := booking.Deps{
		Stores: stores,
		Pricing: pricing.NewEngine(pricing.Rules{
			DefaultGSTRate:     cfg.DefaultGSTRate,
			BaseHours:          cfg.DriverBaseHours,
			OvertimeMultiplier: cfg.DriverOvertimeMultiplier,
			UpfrontShare:       float64(cfg.WalletUpfrontSharePercent) / 100,
		}),
		Dispatcher: dispatch.NewDispatcher(stores.Providers, notifier, logger),
		Notifier:   notifier,
		Events:     publisher,
		BuzzerGate: buzzerGate,
		Logger:     logger,
	}

	// Task queue for expiry and buzzer delivery.
	var taskClient *asynq.Client
	if len(redisClients) > 0 {
		taskClient = asynq.NewClient(cron.TaskRedisOpt())
		defer taskClient.Close()
		deps.Tasks = tasks.NewAsynqScheduler(taskClient)
	}

	bookingService, err := booking.NewDefaultBookingService(deps, booking.Options{
		ResponseWindow: cfg.ResponseWindow(),
		BuzzerInterval: cfg.BuzzerInterval(),
		ServerExpiry:   cfg.ServerExpiryEnabled,
	})
	if err != nil {
		logger.Fatal("main: failed to initialize booking service", zap.Error(err))
	}

	var worker *cron.Worker
	if taskClient != nil && cfg.TaskWorkerEnabled {
		worker = cron.NewWorker(cron.TaskRedisOpt(), bookingService, logger)
		worker.Start()
	}

	var sweeper *cron.ExpirySweeper
	if cfg.ServerExpiryEnabled {
		sweeper = cron.NewExpirySweeper(bookingService, cfg.ExpirySweepInterval(), 100, logger)
		sweeper.Start()
	}

	utils.StartHealthMonitor(ctx, 30*time.Second, redisClients, mongoClient)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	bookingHandler := handlers.NewBookingHandler(bookingService)
	handlerBundle := handlers.NewHandlerBundle(bookingHandler, []byte(cfg.JWTSecret), cfg.MaxRequestsPerMin)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	stopBackground()
	if sweeper != nil {
		sweeper.Stop()
	}
	if worker != nil {
		worker.Shutdown()
	}
	if mongoClient != nil {
		if err := database.CloseDB(shutdownCtx); err != nil {
			logger.Sugar().Warnf("main: closing MongoDB: %v", err)
		}
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
