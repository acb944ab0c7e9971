package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/internal/config"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/handler"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/middleware"
	"github.com/sangkips/pharmacy-pos/pkg/metrics"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Billing   *handler.BillingHandler
	Customer  *handler.CustomerHandler
	Dashboard *handler.DashboardHandler
	Printer   *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Metrics         *metrics.Metrics
	Logger          *zap.Logger
	// RateLimiter is built from Cfg.RateLimit when nil
	RateLimiter *middleware.RateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNop()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.RateLimiter == nil {
		deps.RateLimiter = middleware.NewRateLimiter(
			middleware.RateLimiterConfigFor(deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration),
		)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(deps.Metrics.Middleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := router.Group("/api")
	{
		registerAuthRoutes(api, h, deps)

		// counter endpoints; the token is optional unless AUTH_ENABLED is set
		counter := api.Group("")
		if deps.Cfg.Auth.Enabled {
			counter.Use(middleware.AuthMiddleware(deps.JWTManager))
		} else {
			counter.Use(middleware.OptionalAuthMiddleware(deps.JWTManager))
		}
		counter.Use(middleware.OrgMiddleware())
		counter.Use(deps.RateLimiter.Middleware())

		registerBillingRoutes(counter, h, deps)
		registerDashboardRoutes(counter, h)
		registerPrinterRoutes(counter, h)
	}

	return router
}

func registerAuthRoutes(rg *gin.RouterGroup, h *Handlers, deps *Deps) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.GET("/verify", h.Auth.Verify)

		authed := auth.Group("")
		authed.Use(middleware.AuthMiddleware(deps.JWTManager))
		authed.GET("/me", h.Auth.Me)
		authed.POST("/logout", h.Auth.Logout)
	}
}

func registerBillingRoutes(rg *gin.RouterGroup, h *Handlers, deps *Deps) {
	billing := rg.Group("/billing")
	{
		billing.GET("/products/search", h.Billing.SearchProducts)
		billing.GET("/products/:id", h.Billing.GetProduct)
		billing.GET("/products/:id/stock", h.Billing.GetProductStock)

		billing.GET("/customers/search", h.Customer.Search)
		billing.POST("/customers", h.Customer.Create)

		billing.POST("/bills", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:    deps.IdempotencyRepo,
			TTL:     deps.Cfg.Billing.IdempotencyTTL,
			Metrics: deps.Metrics,
			Logger:  deps.Logger,
		}), h.Billing.PostBill)
		billing.GET("/bills/recent", h.Billing.RecentBills)
		billing.GET("/bills", h.Billing.ListBills)
		billing.GET("/bills/:identifier", h.Billing.GetBill)
		billing.GET("/bills/:identifier/receipt", h.Billing.GetReceipt)
	}
}

func registerDashboardRoutes(rg *gin.RouterGroup, h *Handlers) {
	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("/total-orders", h.Dashboard.TotalOrders)
		dashboard.GET("/recent-orders", h.Dashboard.RecentOrders)
		dashboard.GET("/low-stock", h.Dashboard.LowStock)
		dashboard.GET("/pending-deliveries", h.Dashboard.PendingDeliveries)
	}
}

func registerPrinterRoutes(rg *gin.RouterGroup, h *Handlers) {
	printer := rg.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
	}
}
