package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/application/fulfillment"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/auth"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/backend"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/cache"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/config"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/event"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/logger"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/notification"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/persistence"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/telemetry"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/interfaces/http/handler"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/interfaces/http/middleware"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting fulfillment service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	ctx := context.Background()

	// Telemetry
	telemetryCfg := telemetry.ConfigFrom(cfg.Telemetry)
	lp, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = logger.Tee(log, lp.ZapCore(log.Core()))
	tp, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	transitionMetrics, err := telemetry.NewTransitionMetrics(mp.Meter(telemetry.MeterName))
	if err != nil {
		log.Fatal("Failed to create transition metrics", zap.Error(err))
	}

	// Transition journal database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem: telemetry.DBSystemFor(cfg.Database.Driver),
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if mp.IsEnabled() {
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatal("Failed to access journal connection pool", zap.Error(err))
		}
		poolMetrics, err := telemetry.RegisterPoolMetrics(mp.Meter(telemetry.MeterName), sqlDB)
		if err != nil {
			log.Fatal("Failed to register journal pool metrics", zap.Error(err))
		}
		defer func() {
			_ = poolMetrics.Unregister()
		}()
	}
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate journal schema", zap.Error(err))
	}
	journal := persistence.NewGormTransitionJournal(db.DB)
	log.Info("Journal database ready", zap.String("driver", cfg.Database.Driver))

	// Status cache and in-flight guard
	stores, err := cache.NewFactory(cfg.Redis, cfg.Fulfillment,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).CreateStores(ctx)
	if err != nil {
		log.Fatal("Failed to create cache stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing cache stores", zap.Error(err))
		}
	}()

	// Storefront backend
	client, err := backend.NewClient(backend.Config{
		BaseURL:         cfg.Backend.BaseURL,
		ServiceToken:    cfg.Backend.ServiceToken,
		Timeout:         cfg.Backend.Timeout,
		MaxResponseSize: cfg.Backend.MaxResponseSize,
	}, log)
	if err != nil {
		log.Fatal("Failed to create backend client", zap.Error(err))
	}
	orders := client.Orders()
	shippingLogs := client.ShippingLogs()

	// Domain events and customer notifications
	eventBus := event.NewInMemoryEventBus(log)
	notifier := notification.New(stores.Redis, cfg.Redis.NotifyChannel, log)
	if err := event.SubscribeAll(eventBus, fulfillment.NewNotificationHandler(notifier, log)); err != nil {
		log.Fatal("Failed to subscribe event handlers", zap.Error(err))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	store := fulfillment.NewStateStore()
	orchestrator := fulfillment.NewOrchestrator(orders, shippingLogs, store, stores.Guard, stores.StatusCache, log,
		fulfillment.WithEventPublisher(eventBus),
		fulfillment.WithJournal(journal),
		fulfillment.WithMetrics(transitionMetrics),
		fulfillment.WithShippingProvisioning(cfg.Fulfillment.AutoProvisionShipping, cfg.Fulfillment.DefaultCarrier),
	)
	shippingService := fulfillment.NewShippingService(orders, shippingLogs, store, stores.StatusCache, log)
	shippingService.SetEventPublisher(eventBus)
	trackingService := fulfillment.NewTrackingService(orders, shippingLogs, store, stores.StatusCache, log)
	trackingService.SetJournal(journal)
	trackingService.SetMetrics(transitionMetrics)

	// HTTP handlers
	systemHandler := handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion).
		WithCheck("database", func(context.Context) error { return db.Ping() }).
		WithCheck("backend", client.Ping)
	if stores.Redis != nil {
		systemHandler.WithCheck("redis", func(ctx context.Context) error {
			return stores.Redis.Ping(ctx).Err()
		})
	}
	handlers := router.Handlers{
		Orders:   handler.NewOrderHandler(orchestrator, trackingService),
		Shipping: handler.NewShippingLogHandler(shippingService, trackingService),
		System:   systemHandler,
	}

	// Gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Middleware order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Logger - Log requests with the request-scoped logger
	// 3. Recovery - Catch panics
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. Tracing - One span per request
	// 8. Metrics - Request count and latency per route
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.SecureWithConfig(middleware.SecurityConfig{
		HSTSEnabled:           cfg.App.Env == "production",
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
	}))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: telemetryCfg.ServiceName,
		Enabled:     telemetryCfg.Enabled,
	}))
	if mp.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(mp.Meter("http.server")))
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	jwtService := auth.NewJWTService(cfg.JWT)
	if !jwtService.Enabled() {
		log.Warn("JWT secret not configured, staff tokens are forwarded without local validation")
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.StaffAuthMiddleware(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Required:   cfg.JWT.Required,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))
	r.Use(middleware.TracingAttributeInjector())
	if cfg.HTTP.RateLimitRequests > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		r.Use(middleware.RateLimit(limiter))
	}
	r.Register(router.FulfillmentRoutes(handlers)...)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}
}
