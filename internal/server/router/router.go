package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by New.
type Handlers struct {
	Webhook  *handlers.WebhookHandler
	Rates    *handlers.RatesHandler
	Members  *handlers.MembersHandler
	Rows     *handlers.RowsHandler
	Sessions *handlers.SessionsHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/webhook", h.Webhook.Verify)
	r.POST("/webhook", h.Webhook.Receive)
	r.POST("/send-message", h.Webhook.SendMessage)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/rates", h.Rates.Get)
	r.PUT("/rates", h.Rates.Put)

	members := r.Group("/members")
	members.GET("", h.Members.List)
	members.POST("", h.Members.Add)
	members.GET("/export", h.Members.Export)
	members.POST("/import", h.Members.Import)
	members.GET("/:id", h.Members.Get)
	members.DELETE("/:id", h.Members.Delete)
	members.DELETE("/:id/history", h.Members.ClearHistory)

	rows := r.Group("/rows")
	rows.GET("", h.Rows.Snapshot)
	rows.POST("", h.Rows.Add)
	rows.DELETE("", h.Rows.Discard)
	rows.POST("/init", h.Rows.Init)
	rows.POST("/spoken", h.Rows.Spoken)
	rows.POST("/save", h.Rows.Save)
	rows.PATCH("/:index", h.Rows.Update)

	sessions := r.Group("/sessions")
	sessions.GET("", h.Sessions.List)
	sessions.GET("/:id", h.Sessions.Get)
	sessions.DELETE("/:id", h.Sessions.Delete)
	sessions.PUT("/:id/factory", h.Sessions.SetFactory)
	sessions.DELETE("/:id/factory", h.Sessions.ClearFactory)
	sessions.GET("/:id/report", h.Sessions.Report)
	sessions.GET("/:id/summary", h.Sessions.Summary)
	sessions.POST("/:id/export", h.Sessions.Export)
	sessions.POST("/:id/share", h.Sessions.Share)

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
