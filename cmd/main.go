package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/fraccaro/event-calendar-backend/config"
	"github.com/fraccaro/event-calendar-backend/database"
	"github.com/fraccaro/event-calendar-backend/internal/auditlog"
	"github.com/fraccaro/event-calendar-backend/internal/auth"
	"github.com/fraccaro/event-calendar-backend/internal/cleanup"
	"github.com/fraccaro/event-calendar-backend/internal/event"
	"github.com/fraccaro/event-calendar-backend/internal/media"
	"github.com/fraccaro/event-calendar-backend/routes"
	"github.com/fraccaro/event-calendar-backend/utils"
)

// @title Event Calendar API
// @version 1.0
// @description Backend for the community event calendar.
// @BasePath /api/v1
func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Redis is optional; without it password reset links are disabled.
	if err := utils.InitRedis(); err != nil {
		log.Printf("⚠️ Redis unavailable: %v", err)
	}

	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.User{},
		&event.Event{},
		&auditlog.AuditLog{},
	); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}
	log.Println("✅ Database migrations completed")

	if err := auth.SeedAdminUser(db, cfg); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed admin user: %v", err))
	}

	store, err := media.NewStore(cfg)
	if err != nil {
		panic(fmt.Sprintf("❌ Media store init failed: %v", err))
	}
	log.Printf("✅ Media store ready (driver: %s)", cfg.MediaDriver)

	var queue cleanup.Queue
	if len(cfg.KafkaBrokers) > 0 {
		queue = cleanup.NewKafkaQueue(cfg)
		cleanup.StartConsumer(context.Background(), cfg, store)
		log.Printf("✅ Kafka cleanup queue ready (topic: %s)", cfg.KafkaCleanupTopic)
	} else {
		queue = cleanup.NewInlineQueue(store)
		log.Println("ℹ️ No Kafka brokers configured, deleting media inline")
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	routes.Setup(router, cfg, store, queue)

	log.Printf("🚀 Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
