package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ngprojetos/inscricao-eventos/internal/apiclient"
	"github.com/ngprojetos/inscricao-eventos/internal/config"
	"github.com/ngprojetos/inscricao-eventos/internal/flow"
	"github.com/ngprojetos/inscricao-eventos/internal/handlers"
	"github.com/ngprojetos/inscricao-eventos/internal/logging"
	"github.com/ngprojetos/inscricao-eventos/internal/middleware"
	"github.com/ngprojetos/inscricao-eventos/internal/observability"
	"github.com/ngprojetos/inscricao-eventos/internal/services"
	"github.com/ngprojetos/inscricao-eventos/internal/session"
	"github.com/ngprojetos/inscricao-eventos/internal/share"
	"github.com/ngprojetos/inscricao-eventos/internal/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	_ "github.com/ngprojetos/inscricao-eventos/docs"
)

// @title           Inscrição em Eventos
// @version         1.0
// @description     Endpoints JSON do site de inscrição em eventos públicos.

// @host      localhost:8080
// @BasePath  /v1

// @tag.name mask
// @tag.description Formatação de campos durante a digitação

// @tag.name health
// @tag.description Health check operations

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logging.Sync()

	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}
	if err := config.LoadEvent(); err != nil {
		logging.Logger.Fatal("failed to load event configuration", zap.Error(err))
	}

	observability.InitTracer()
	defer observability.ShutdownTracer()

	if err := config.InitRedis(); err != nil {
		logging.Logger.Fatal("failed to initialize Redis", zap.Error(err))
	}
	defer config.Redis.Close()

	if err := config.InitMongoDB(); err != nil {
		// the audit trail is optional, the site keeps serving without it
		logging.Logger.Error("failed to initialize MongoDB, audit trail disabled", zap.Error(err))
		config.MongoDB = nil
	}
	utils.InitAuditWorker(config.AppConfig.AuditWorkers, config.AppConfig.AuditBufferSize)

	api := apiclient.New(config.AppConfig.APIBaseURL, config.AppConfig.APITimeout)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.AppConfig.APITimeout)
		defer cancel()
		if err := api.Ping(ctx); err != nil {
			logging.Logger.Warn("registration API ping failed", zap.String("base_url", api.BaseURL()), zap.Error(err))
			return
		}
		logging.Logger.Info("registration API reachable", zap.String("base_url", api.BaseURL()))
	}()

	composer, err := share.NewComposer(config.Event.Share)
	if err != nil {
		logging.Logger.Fatal("invalid share templates", zap.Error(err))
	}
	pages, err := handlers.LoadPages()
	if err != nil {
		logging.Logger.Fatal("failed to load page templates", zap.Error(err))
	}

	sessions := session.NewStore(config.Redis, config.AppConfig.SessionTTL)
	guard := session.NewRedisGuard(config.Redis, config.AppConfig.SubmitGuardTTL)
	machine := flow.NewMachine(api, guard, utils.AuditRecorder{})

	healthChecks := map[string]handlers.HealthCheck{
		"redis": func(ctx context.Context) error { return config.Redis.Ping(ctx).Err() },
	}
	if config.MongoDB != nil {
		healthChecks["mongodb"] = func(ctx context.Context) error {
			return config.MongoDB.Client().Ping(ctx, readpref.Primary())
		}
		if worker := utils.GetAuditWorker(); worker != nil {
			healthChecks["audit"] = worker.HealthCheck
		}
	}

	var submitLimit gin.HandlerFunc
	if rate := config.AppConfig.SubmitRatePerMinute; rate > 0 {
		limiter := services.NewSubmissionLimiter(rate)
		cleanupCtx, stopCleanup := context.WithCancel(context.Background())
		defer stopCleanup()
		limiter.StartCleanup(cleanupCtx, 5*time.Minute, 10*time.Minute)
		submitLimit = middleware.SubmissionRateLimit(limiter)
	}

	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestTiming(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterRoutes(router, handlers.Routes{
		Flow: handlers.NewFlowHandlers(handlers.FlowConfig{
			Machine:      machine,
			Sessions:     sessions,
			Composer:     composer,
			Navigator:    share.HTTPNavigator{},
			Auditor:      utils.AuditRecorder{},
			Pages:        pages,
			Event:        config.Event,
			PublicURL:    config.AppConfig.PublicURL,
			CookieSecure: config.AppConfig.CookieSecure,
			CookieMaxAge: config.AppConfig.SessionTTL,
		}),
		Dashboard:   handlers.NewDashboardHandlers(api, pages, config.Event),
		Health:      handlers.NewHealthHandlers(healthChecks),
		SubmitLimit: submitLimit,
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.AppConfig.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: config.AppConfig.APITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", config.AppConfig.Port),
			zap.String("environment", config.AppConfig.Environment),
			zap.String("api_base_url", config.AppConfig.APIBaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
	}

	utils.GetAuditWorker().Stop()
	config.DisconnectMongoDB(ctx)

	logging.Logger.Info("server exited gracefully")
}
