package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sparkathon/config"
	"sparkathon/cron"
	"sparkathon/handlers"
	"sparkathon/middleware"
	"sparkathon/routes"
	"sparkathon/services/identity"
	"sparkathon/services/notification"
	"sparkathon/services/recommendation"
	"sparkathon/services/scheduling"
	"sparkathon/services/tasks"
	"sparkathon/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("main: JWT_SECRET must be set")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Identity sessions.
	var store identity.SessionStore
	switch cfg.SessionStore {
	case "memory":
		store = identity.NewMemorySessionStore()
		logger.Warn("main: using in-memory auth sessions; sessions are lost on restart")
	default:
		if err := utils.InitAuthCache(); err != nil {
			logger.Fatal("main: failed to initialize auth cache", zap.Error(err))
		}
		store = identity.NewRedisSessionStore(utils.GetAuthCacheClient())
	}
	utils.StartHealthMonitor(ctx, utils.GetAuthCacheClient(), 30*time.Second)

	if err := utils.FirebaseInit(ctx); err != nil {
		logger.Warn("main: firebase admin SDK unavailable; sign-up and pushes disabled", zap.Error(err))
	}
	provider, err := identity.NewFirebaseProvider(ctx, cfg.FirebaseAPIKey, utils.FirebaseAuth)
	if err != nil {
		logger.Fatal("main: failed to initialize identity provider", zap.Error(err))
	}
	identitySvc := identity.NewService(provider, store, []byte(cfg.JWTSecret), cfg.AuthSessionTTL, logger)

	// Recommendations.
	var source scheduling.RecommendationSource = recommendation.NewStaticSource(cfg.RecommendationDelay)
	if cfg.GeminiAPIKey != "" {
		gemini, err := recommendation.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal("main: failed to initialize Gemini client", zap.Error(err))
		}
		defer gemini.Close()
		source = recommendation.NewGeminiSource(gemini)
		if cfg.RecommendationCache > 0 {
			if err := utils.InitRecommendationCache(); err != nil {
				logger.Warn("main: recommendation cache disabled", zap.Error(err))
			} else {
				cache := recommendation.NewRedisSlotCache(utils.RecommendationCacheClient, cfg.RecommendationCache)
				source = recommendation.NewCachedSource(source, cache, logger)
			}
		}
		logger.Info("main: recommendations served by Gemini", zap.String("model", cfg.GeminiModel))
	}

	// Confirmations.
	managerCfg := scheduling.ManagerConfig{
		FetchTimeout:  cfg.FetchTimeout,
		SubmitTimeout: cfg.SubmitTimeout,
		Policy:        scheduling.Policy{LockAfterSuccess: cfg.LockAfterSuccess},
		IdleTTL:       cfg.SessionTTL,
	}
	var worker *asynq.Server
	if cfg.ConfirmationsEnabled {
		if utils.FCMClient == nil {
			logger.Warn("main: confirmations disabled, firebase messaging is not configured")
		} else {
			notifSvc, err := notification.NewDefaultNotificationService(utils.FCMClient, logger)
			if err != nil {
				logger.Fatal("main: failed to initialize notifications", zap.Error(err))
			}
			queue := asynq.NewClient(utils.QueueRedisOpt())
			defer queue.Close()
			managerCfg.OnSubmitted = tasks.NewConfirmationDispatcher(queue, logger).Dispatch
			worker = cron.InitConfirmationWorker(utils.QueueRedisOpt(), notifSvc)
		}
	}

	manager := scheduling.NewManager(
		source,
		scheduling.NewSimulatedSubmitter(cfg.SubmissionDelay),
		managerCfg,
		logger,
	)
	go manager.Run(ctx)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.AccessLogger(logger))

	routes.RegisterRoutes(router, &handlers.HandlerBundle{
		Auth:         identitySvc,
		RateLimit:    cfg.MaxRequestsPerMin,
		AuthHandler:  handlers.NewAuthHandler(identitySvc),
		SchedHandler: handlers.NewSchedulingHandler(manager),
	})

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:        "0.0.0.0:" + port,
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return ctx },
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

	// Event streams end with their sessions.
	stop()
	manager.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
