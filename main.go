package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"campus-flow/internal/auth"
	"campus-flow/internal/chat"
	"campus-flow/internal/db"
	"campus-flow/internal/handlers"
	"campus-flow/internal/middleware"
	"campus-flow/internal/models"
	"campus-flow/internal/observability"
	"campus-flow/internal/rabbitmq"
	"campus-flow/internal/repositories"
	"campus-flow/internal/telemetry"
	"campus-flow/internal/ws"
)

const serviceName = "campus-flow"

func main() {
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	amqpURL := os.Getenv("AMQP_URL")
	exchange := getEnv("AMQP_EXCHANGE", "campus_flow.events")

	auditPublisher := rabbitmq.NewPublisher(amqpURL, exchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	audit := telemetry.NewAuditEmitter(auditPublisher, "audit.chat", serviceName, getEnv("ENVIRONMENT", "dev"))

	if amqpURL != "" {
		if wsPublisher, err := observability.NewAMQPPublisher(amqpURL, exchange); err != nil {
			log.Printf("ws event publisher disabled: %v", err)
		} else {
			observability.SetPublisher(wsPublisher)
			defer wsPublisher.Close()
		}
	}

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		shutdown, err := observability.SetupTracing(context.Background(), serviceName, endpoint)
		if err != nil {
			log.Printf("tracing disabled: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("tracer shutdown: %v", err)
				}
			}()
		}
	}

	tokenTTL, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		log.Fatalf("invalid JWT_TTL: %v", err)
	}
	tokens := auth.NewTokens(getEnv("JWT_SECRET", "dev-secret"), serviceName, tokenTTL)

	userRepo := repositories.NewUserRepo(database)
	eventRepo := repositories.NewEventRepo(database)
	registrationRepo := repositories.NewRegistrationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	themeRepo := repositories.NewThemeRepo(database)

	hub := ws.NewHub()
	moderator := chat.NewModerator(eventRepo, registrationRepo, hub)

	authHandler := handlers.NewAuthHandler(userRepo, tokens, audit)
	eventHandler := handlers.NewEventHandler(eventRepo, registrationRepo, audit)
	registrationHandler := handlers.NewRegistrationHandler(eventRepo, registrationRepo, audit)
	chatHandler := handlers.NewChatHandler(eventRepo, registrationRepo, messageRepo, moderator, audit)
	themeHandler := handlers.NewThemeHandler(themeRepo)

	roomWS := ws.NewRoomHandler(hub, tokens, userRepo, eventRepo, registrationRepo, messageRepo, moderator)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(otelgin.Middleware(serviceName))

	authMiddleware := middleware.AuthMiddleware(tokens)

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", authMiddleware, authHandler.Me)

	api.GET("/events", eventHandler.ListEvents)
	api.GET("/events/my", authMiddleware, middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin), eventHandler.MyEvents)
	api.GET("/events/:event_id", eventHandler.GetEvent)
	api.POST("/events", authMiddleware, middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin), eventHandler.CreateEvent)
	api.PATCH("/events/:event_id/status", authMiddleware, middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin), eventHandler.UpdateStatus)
	api.GET("/events/:event_id/participants", authMiddleware, middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin), eventHandler.ListParticipants)

	api.POST("/registrations", authMiddleware, middleware.RequireRoles(models.RoleStudent), registrationHandler.Register)
	api.GET("/registrations/my", authMiddleware, registrationHandler.MyRegistrations)
	api.DELETE("/registrations/:event_id", authMiddleware, registrationHandler.Cancel)

	api.GET("/chat/my-rooms", authMiddleware, chatHandler.MyRooms)
	api.GET("/chat/:event_id/messages", authMiddleware, chatHandler.GetMessages)
	api.GET("/chat/:event_id/access", authMiddleware, chatHandler.GetAccess)
	api.GET("/chat/:event_id/participants", authMiddleware, chatHandler.GetParticipants)
	api.POST("/chat/:event_id/ban/:user_id", authMiddleware, chatHandler.BanUser)
	api.DELETE("/chat/:event_id/ban/:user_id", authMiddleware, chatHandler.UnbanUser)

	api.GET("/theme", themeHandler.GetTheme)
	api.PATCH("/theme", authMiddleware, middleware.RequireRoles(models.RoleAdmin), themeHandler.UpdateTheme)

	router.GET("/ws/chat", roomWS.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, getEnv("DEBUG_ROUTES", "") == "true")

	port := getEnv("PORT", "8080")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
