package router

import (
	appadmission "github.com/billpay/backend/internal/application/admission"
	"github.com/billpay/backend/internal/infrastructure/auth"
	"github.com/billpay/backend/internal/infrastructure/config"
	"github.com/billpay/backend/internal/infrastructure/logger"
	"github.com/billpay/backend/internal/interfaces/http/handler"
	"github.com/billpay/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Quota endpoint names; each meters its own daily allowance per subscriber
const (
	EndpointQueryBill         = "query-bill"
	EndpointQueryBillDetailed = "query-bill-detailed"
)

// Dependencies carries everything the HTTP layer needs
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	JWTService *auth.JWTService

	AuthHandler    *handler.AuthHandler
	BillHandler    *handler.BillHandler
	PaymentHandler *handler.PaymentHandler
	SystemHandler  *handler.SystemHandler

	// GlobalThrottle and AuthThrottle may be nil when rate limiting is
	// disabled in config
	GlobalThrottle *appadmission.ThrottleService
	AuthThrottle   *appadmission.ThrottleService
	QuotaService   *appadmission.DailyQuotaService
}

// Setup wires the middleware chain and all routes onto the engine
func Setup(engine *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	middleware.SetupValidator()

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// The service-wide throttle sits in front of everything, including
	// authentication and the open payment endpoint
	if deps.GlobalThrottle != nil {
		engine.Use(middleware.GlobalThrottle(deps.GlobalThrottle))
	}

	engine.GET("/health", deps.SystemHandler.Health)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWT(middleware.JWTConfig{
		JWTService: deps.JWTService,
		Logger:     deps.Logger,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/auth/register",
			"/api/v1/pay",
		},
	}))

	api.GET("/ping", deps.SystemHandler.Ping)

	authGroup := api.Group("/auth")
	{
		login := authGroup.Group("")
		if deps.AuthThrottle != nil {
			login.Use(middleware.AuthThrottle(deps.AuthThrottle, cfg.HTTP.AuthRateLimitAllowlist))
		}
		login.POST("/login", deps.AuthHandler.Login)

		authGroup.POST("/refresh", deps.AuthHandler.Refresh)
		authGroup.POST("/register", deps.AuthHandler.Register)
	}

	bills := api.Group("/bills")
	{
		bills.GET("",
			middleware.DailyQuota(deps.QuotaService, EndpointQueryBill),
			deps.BillHandler.QueryBill)
		bills.GET("/detailed",
			middleware.DailyQuota(deps.QuotaService, EndpointQueryBillDetailed),
			deps.BillHandler.QueryBillDetailed)
		bills.GET("/unpaid",
			middleware.RequireRoles("admin", "banking"),
			deps.BillHandler.ListUnpaid)
		bills.GET("/transactions",
			middleware.RequireRoles("admin", "banking"),
			deps.BillHandler.ListTransactions)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRoles("admin"))
	{
		admin.POST("/bills", deps.BillHandler.CreateBill)
		admin.POST("/bills/details", deps.BillHandler.AddDetail)
	}

	// Payment terminals authenticate out of band, the endpoint itself
	// is open and protected only by the global throttle
	api.POST("/pay", deps.PaymentHandler.Pay)
}
