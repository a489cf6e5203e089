package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fraccaro/event-calendar-backend/config"
	"github.com/fraccaro/event-calendar-backend/database"
	"github.com/fraccaro/event-calendar-backend/internal/auditlog"
	"github.com/fraccaro/event-calendar-backend/internal/auth"
	"github.com/fraccaro/event-calendar-backend/internal/cleanup"
	"github.com/fraccaro/event-calendar-backend/internal/event"
	"github.com/fraccaro/event-calendar-backend/internal/media"
	"github.com/fraccaro/event-calendar-backend/internal/reports"
	"github.com/fraccaro/event-calendar-backend/middleware"

	_ "github.com/fraccaro/event-calendar-backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Setup wires all HTTP routes. The media store and cleanup queue are built
// in main so the Kafka consumer can share them.
func Setup(r *gin.Engine, cfg *config.Config, store media.Store, queue cleanup.Queue) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Local driver serves uploaded files straight from disk; the S3 driver
	// hands out absolute URLs instead.
	if cfg.MediaDriver == "local" {
		r.Static("/uploads", cfg.UploadDir)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())
	api.Use(middleware.AuditMiddleware())

	// ========== Audit Log ==========
	auditRepo := auditlog.NewRepository(database.DB)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== Auth ==========
	authRepo := auth.NewRepository(database.DB)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc, auditSvc)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
	}

	// ========== Events ==========
	eventRepo := event.NewRepository(database.DB)
	exporter := event.NewPDFExporter(cfg.UploadDir, time.Duration(cfg.MediaTimeout)*time.Second)
	eventSvc := event.NewService(eventRepo, store, queue, exporter, auditSvc)
	eventHandler := event.NewHandler(eventSvc)

	reportHandler := reports.NewHandler(eventSvc, reports.NewExporter())

	authRequired := middleware.AuthMiddleware(cfg, authSvc)

	eventGroup := api.Group("/events")
	{
		// Reads are public; the calendar is the site's front page.
		eventGroup.GET("", eventHandler.ListEvents)
		eventGroup.GET("/report", authRequired, reportHandler.ExportEventsReport)
		eventGroup.GET("/:id", eventHandler.GetEvent)
		eventGroup.GET("/:id/export-pdf", eventHandler.ExportEventPDF)

		// Writes are admin-only.
		eventGroup.POST("", authRequired, eventHandler.CreateEvent)
		eventGroup.PUT("/:id", authRequired, eventHandler.UpdateEvent)
		eventGroup.DELETE("/:id", authRequired, eventHandler.DeleteEvent)
	}

	api.GET("/auditlogs", authRequired, auditHandler.GetAuditLogs)
}
