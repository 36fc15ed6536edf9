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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	identityapp "github.com/jobboard/backend/internal/application/identity"
	notificationapp "github.com/jobboard/backend/internal/application/notification"
	paymentapp "github.com/jobboard/backend/internal/application/payment"
	"github.com/jobboard/backend/internal/domain/payment"
	"github.com/jobboard/backend/internal/domain/shared"
	"github.com/jobboard/backend/internal/infrastructure/auth"
	"github.com/jobboard/backend/internal/infrastructure/cache"
	"github.com/jobboard/backend/internal/infrastructure/config"
	"github.com/jobboard/backend/internal/infrastructure/event"
	"github.com/jobboard/backend/internal/infrastructure/logger"
	paymentinfra "github.com/jobboard/backend/internal/infrastructure/payment"
	"github.com/jobboard/backend/internal/infrastructure/persistence"
	"github.com/jobboard/backend/internal/infrastructure/telemetry"
	"github.com/jobboard/backend/internal/interfaces/http/handler"
	"github.com/jobboard/backend/internal/interfaces/http/middleware"
	"github.com/jobboard/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

//go:generate swag init -g main.go -d ./,../../internal/interfaces/http/handler,../../internal/interfaces/http/dto,../../internal/application -o ../../docs --v3.1

//	@title			Job Board Payments API
//	@version		1.0
//	@description	Point purchases through VNPay and MoMo, payment history, promotions and notifications.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
	}
	log := logger.New(logCfg)

	ctx := context.Background()

	// OpenTelemetry log bridge; the logger is rebuilt to tee into it
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		log = logger.New(logCfg, loggerProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting job board backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracing(cfg.Telemetry, cfg.Database.Driver, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		log.Info("Database schema migrated from models")
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// Redis backs token revocation and event deduplication when enabled
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
	}
	idempotencyStore, blacklist := newStores(redisClient, log)
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	promotionRepo := persistence.NewGormPromotionRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)

	// Event bus: payment outcomes become in-app notifications, once per order
	eventBus := event.NewInMemoryEventBus(log)
	outcomeHandler := event.NewIdempotentHandler(
		notificationapp.NewPaymentOutcomeHandler(notificationRepo, log),
		idempotencyStore,
		log,
		event.WithKeyFunc(notificationapp.IdempotencyKey),
		event.WithIdempotencyConfig(shared.IdempotencyConfig{TTL: cfg.Idempotency.TTL, Enabled: true}),
	)
	eventBus.Subscribe(outcomeHandler)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	log.Info("Event handlers registered", zap.Strings("payment_outcome_events", outcomeHandler.EventTypes()))

	// Gateways and services
	gateways, err := paymentinfra.NewGateways(cfg.Payment, log)
	if err != nil {
		log.Fatal("Failed to configure payment gateways", zap.Error(err))
	}
	if len(gateways) == 0 {
		log.Warn("No payment gateway enabled; checkouts will be rejected")
	}

	meter := meterProvider.Meter("github.com/jobboard/backend")
	paymentMetrics, err := telemetry.NewPaymentMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create payment metrics", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(accountRepo, auth.NewPasswordHasher(0), jwtService, blacklist, log)
	paymentService := paymentapp.NewPaymentService(paymentapp.PaymentServiceConfig{
		Payments:   paymentRepo,
		Promotions: promotionRepo,
		Gateways:   gateways,
		OrderCodes: payment.NewOrderCodeGenerator(cfg.Payment.OrderCodePrefix, cfg.Payment.Location()),
		Policy:     payment.NewPointsPolicy(cfg.Payment.PointRate),
		MinAmount:  cfg.Payment.MinAmount,
		Metrics:    paymentMetrics,
		Logger:     log,
	})
	reconciler := paymentapp.NewReconciliationService(paymentapp.ReconciliationServiceConfig{
		Payments:  paymentRepo,
		Gateways:  gateways,
		Publisher: eventBus,
		Metrics:   paymentMetrics,
		Logger:    log,
	})
	notificationService := notificationapp.NewService(notificationRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	callbackHandler := handler.NewPaymentCallbackHandler(reconciler, cfg.App.FrontendURL, log)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	checks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		checks["redis"] = redisPinger{redisClient}
	}
	systemHandler := handler.NewSystemHandler(checks)
	var docsHandler *handler.DocsHandler
	if cfg.HTTP.SwaggerEnabled {
		docsHandler, err = handler.NewDocsHandler(cfg.HTTP.SwaggerAllowedIPs)
		if err != nil {
			log.Fatal("Invalid swagger allow-list", zap.Error(err))
		}
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics := middleware.HTTPMetrics(meter, log)

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	tracingConfig := middleware.DefaultTracingConfig()
	tracingConfig.ServiceName = cfg.Telemetry.ServiceName
	tracingConfig.Enabled = cfg.Telemetry.Enabled
	engine.Use(middleware.Tracing(tracingConfig)...)
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}
	engine.Use(httpMetrics)
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize,
		middleware.PathLimit{Prefix: "/payment/", MaxBytes: cfg.HTTP.CallbackMaxBodySize},
	))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig), middleware.TracingAttributeInjector())

	r.Mount(router.Handlers{
		Callbacks:     callbackHandler,
		System:        systemHandler,
		Auth:          authHandler,
		Payments:      paymentHandler,
		Notifications: notificationHandler,
		Docs:          docsHandler,
	})
	for _, route := range engine.Routes() {
		log.Debug("Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newStores picks Redis-backed stores when a client is available. Revoked
// tokens share the idempotency store.
func newStores(client *redis.Client, log *zap.Logger) (shared.IdempotencyStore, auth.TokenBlacklist) {
	var store shared.IdempotencyStore
	if client == nil {
		// a nil *redis.Client must not reach the interface parameter
		log.Warn("redis disabled, token revocation is process-local")
		store = cache.NewIdempotencyStore(nil, log)
	} else {
		store = cache.NewIdempotencyStore(client, log)
	}
	return store, auth.NewTokenBlacklist(store)
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
