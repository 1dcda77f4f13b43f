package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/ranch/internal/server/handlers"
	"github.com/mamadbah2/ranch/internal/server/metrics"
)

// New wires the Gin engine with required routes and middlewares.
func New(webhook *handlers.WebhookHandler, api *handlers.APIHandler, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if m == nil {
		m = metrics.New()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(m.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	messaging := r.Group("", webhook.RequireMessaging())
	{
		messaging.GET("/webhook", webhook.Verify)
		messaging.POST("/webhook", webhook.Receive)
		messaging.POST("/send-message", webhook.SendMessage)
	}

	v := r.Group("/api")
	{
		cattle := v.Group("/cattle/:id")
		cattle.GET("/costs", api.CattleCosts)
		cattle.GET("/feed-history", api.FeedHistory)
		cattle.GET("/medication-history", api.MedicationHistory)
		cattle.GET("/growth", api.Growth)
		cattle.GET("/timeline", api.Timeline)
		cattle.GET("/target", api.Target)
		cattle.GET("/profitability", api.Profitability)
		cattle.GET("/withdrawal", api.Withdrawal)
		cattle.POST("/weights", api.RecordWeight)

		v.GET("/batches/:id/profitability", api.BatchProfitability)
		v.POST("/breakeven", api.BreakEven)
		v.POST("/breakeven/group", api.GroupBreakEven)

		v.GET("/pens", api.Pens)
		v.GET("/pens/:id/nutrition", api.Nutrition)
		v.POST("/pens/:id/feed-allocations", api.CreateFeedAllocation)
		v.POST("/pens/:id/feed-activities", api.CreateFeedActivity)
		v.GET("/feed-allocations/:id/ledger", api.AllocationLedger)

		v.POST("/medications", api.CreateMedication)
		v.POST("/health-records", api.CreateHealthRecord)
		v.POST("/inventory/:id/restock", api.Restock)

		v.GET("/reports/herd", api.HerdReport)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
