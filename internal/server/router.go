// Package server assembles the HTTP router from the API handlers.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"walletpalz/internal/handlers"
	"walletpalz/internal/metrics"
	"walletpalz/internal/middleware"

	_ "walletpalz/internal/docs" // swagger docs
)

// Handlers groups the HTTP handlers mounted under /api/v1.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Transactions  *handlers.TransactionHandler
	Budgets       *handlers.BudgetHandler
	Settings      *handlers.SettingsHandler
	Notifications *handlers.NotificationHandler
	Dashboard     *handlers.DashboardHandler
	Rates         *handlers.RatesHandler
}

// NewRouter builds the Gin engine. limiter may be nil to disable rate limiting.
func NewRouter(h Handlers, limiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")
	if limiter != nil {
		v1.Use(limiter.Middleware())
	}

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile", h.Auth.UpdateProfile)
	protected.DELETE("/profile", h.Auth.DeleteAccount)
	protected.GET("/profile/export", h.Auth.ExportData)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", h.Transactions.CreateTransaction)
	transactions.GET("", h.Transactions.GetUserTransactions)
	transactions.GET("/summary", h.Transactions.GetSummary)
	transactions.GET("/:id", h.Transactions.GetTransactionByID)
	transactions.PUT("/:id", h.Transactions.UpdateTransaction)
	transactions.DELETE("/:id", h.Transactions.DeleteTransaction)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", h.Budgets.CreateBudget)
	budgets.GET("", h.Budgets.GetBudgets)
	budgets.GET("/:id", h.Budgets.GetBudget)
	budgets.GET("/:id/status", h.Budgets.GetBudgetStatus)
	budgets.DELETE("/:id", h.Budgets.DeleteBudget)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.GET("", h.Notifications.GetNotifications)
	notifications.GET("/stream", h.Notifications.Stream)
	notifications.PATCH("/:id/read", h.Notifications.MarkAsRead)
	notifications.POST("/read-all", h.Notifications.MarkAllAsRead)
	notifications.DELETE("", h.Notifications.ClearAll)

	protected.GET("/settings", h.Settings.GetSettings)
	protected.PUT("/settings", h.Settings.UpdateSettings)
	protected.GET("/dashboard", h.Dashboard.GetDashboard)
	protected.GET("/rates", h.Rates.GetRates)

	return router
}
