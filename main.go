package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flyasher/fiora/internal/auth"
	"github.com/flyasher/fiora/internal/config"
	"github.com/flyasher/fiora/internal/db"
	"github.com/flyasher/fiora/internal/handlers"
	"github.com/flyasher/fiora/internal/observability"
	"github.com/flyasher/fiora/internal/rabbitmq"
	"github.com/flyasher/fiora/internal/repositories"
	"github.com/flyasher/fiora/internal/telemetry"
	"github.com/flyasher/fiora/internal/transport"
	"github.com/flyasher/fiora/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, "audit_log.fiora", "fiora", cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	sessionRepo := repositories.NewSessionRepo(database)

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	hub := ws.NewHub()

	router := transport.NewRouter()
	messageHandler := handlers.NewMessageHandler(groupRepo, messageRepo, userRepo, hub, audit)
	groupHandler := handlers.NewGroupHandler(groupRepo, messageRepo, sessionRepo, hub, audit)
	uploadHandler := handlers.NewUploadHandler(tokens, cfg.UploadURLPrefix)
	handlers.Register(router, messageHandler, groupHandler, uploadHandler)

	wsHandler := ws.NewHandler(hub, router, tokens, groupRepo, sessionRepo)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.Use(observability.HTTPMetricsMiddleware())

	engine.GET("/ws", wsHandler.Handle)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	log.Printf("listening on :%s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
