package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appadmission "github.com/billpay/backend/internal/application/admission"
	billingapp "github.com/billpay/backend/internal/application/billing"
	identityapp "github.com/billpay/backend/internal/application/identity"
	"github.com/billpay/backend/internal/domain/admission"
	"github.com/billpay/backend/internal/infrastructure/auth"
	"github.com/billpay/backend/internal/infrastructure/config"
	"github.com/billpay/backend/internal/infrastructure/logger"
	"github.com/billpay/backend/internal/infrastructure/persistence"
	"github.com/billpay/backend/internal/infrastructure/ratelimit"
	"github.com/billpay/backend/internal/interfaces/http/handler"
	"github.com/billpay/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting billpay backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Window counters live in redis when available so all instances
	// share one view; the in-process store is the single-node fallback
	var counterStore admission.CounterStore
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		counterStore = ratelimit.NewRedisCounterStore(redisClient)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		counterStore = ratelimit.NewMemoryCounterStore()
		log.Warn("Redis disabled, using in-process rate limit counters")
	}

	// Repositories
	billRepo := persistence.NewGormBillRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	usageRepo := persistence.NewGormDailyUsageRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	billService := billingapp.NewBillService(billRepo, log)
	paymentService := billingapp.NewPaymentService(billRepo, log)

	quotaService := appadmission.NewDailyQuotaService(usageRepo, appadmission.QuotaConfig{
		Enabled:    cfg.Quota.Enabled,
		DailyLimit: cfg.Quota.DailyLimit,
	}, log)

	var globalThrottle, authThrottle *appadmission.ThrottleService
	if cfg.HTTP.RateLimitEnabled {
		globalThrottle = appadmission.NewThrottleService(counterStore, appadmission.ThrottleConfig{
			Scope:  "global",
			Limit:  int64(cfg.HTTP.RateLimitRequests),
			Window: cfg.HTTP.RateLimitWindow,
		}, log)
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authThrottle = appadmission.NewThrottleService(counterStore, appadmission.ThrottleConfig{
			Scope:  "auth",
			Limit:  int64(cfg.HTTP.AuthRateLimitRequests),
			Window: cfg.HTTP.AuthRateLimitWindow,
		}, log)
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	router.Setup(engine, router.Dependencies{
		Config:         cfg,
		Logger:         log,
		JWTService:     jwtService,
		AuthHandler:    handler.NewAuthHandler(authService, log),
		BillHandler:    handler.NewBillHandler(billService, log),
		PaymentHandler: handler.NewPaymentHandler(paymentService, log),
		SystemHandler:  handler.NewSystemHandler(db.DB),
		GlobalThrottle: globalThrottle,
		AuthThrottle:   authThrottle,
		QuotaService:   quotaService,
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
