// internal/router/router.go
package router

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sapmusicgroup/sap-backend/internal/config"
	"github.com/sapmusicgroup/sap-backend/internal/handlers"
	"github.com/sapmusicgroup/sap-backend/internal/middleware"
	"github.com/sapmusicgroup/sap-backend/internal/realtime"
	"github.com/sapmusicgroup/sap-backend/internal/services"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

const version = "1.0.0"

// App is the wired HTTP surface plus the background pieces the server
// process has to run and drain.
type App struct {
	Engine *gin.Engine
	// Broadcaster is nil without Redis; events then stay on this instance.
	Broadcaster *realtime.RedisBroadcaster
	Hub         *realtime.Hub
	Chat        *services.ChatService
	Limiters    *middleware.Limiters
}

// Initialize builds every service and handler and mounts the routes. rdb
// may be nil.
func Initialize(db *gorm.DB, cfg *config.Config, rdb *redis.Client) (*App, error) {
	// Shared infrastructure
	hub := realtime.NewHub()
	var publisher realtime.Publisher = hub
	var broadcaster *realtime.RedisBroadcaster
	var cache services.Cache
	if rdb != nil {
		broadcaster = realtime.NewRedisBroadcaster(rdb, cfg.Realtime.RedisChannel, hub)
		publisher = broadcaster
		cache = services.NewRedisCache(rdb, "sap:")
	} else {
		cache = services.NewMemoryCache()
	}

	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	// Initialize services
	authService := services.NewAuthService(db, cfg, cache)
	userService := services.NewUserService(db)
	songService := services.NewSongService(db)
	writerService := services.NewManagedWriterService(db)
	earningService := services.NewEarningService(db, publisher)
	payoutService := services.NewPayoutService(db, cfg)
	syncDealService := services.NewSyncDealService(db)
	settingsService := services.NewSettingsService(db, cache)
	notificationService := services.NewNotificationService(cfg)
	aiService := services.NewAIService(cfg)
	chatService := services.NewChatService(db, publisher, aiService, cfg.AI.AutoReply)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	functionHandler := handlers.NewFunctionHandler(authService, userService, settingsService, notificationService)
	songHandler := handlers.NewSongHandler(songService, writerService)
	royaltyHandler := handlers.NewRoyaltyHandler(earningService, payoutService, syncDealService)
	userHandler := handlers.NewUserHandler(userService, settingsService)
	chatHandler := handlers.NewChatHandler(chatService)
	aiHandler := handlers.NewAIHandler(aiService)
	storageHandler := handlers.NewStorageHandler(storageService)
	adminHandler := handlers.NewAdminHandler(auditService, userService)
	realtimeHandler := handlers.NewRealtimeHandler(hub)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	limiters := middleware.NewLimiters()
	authRequired := middleware.AuthRequired(authService)
	adminRequired := middleware.AdminRequired()

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL, cfg.Environment == "development"))
	r.Use(middleware.I18nMiddleware())
	r.Use(limiters.General.Middleware())
	r.Use(middleware.AuditLogMiddleware(auditService))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
			"ai":      aiService.Enabled(),
		})
	})

	if root, ok := storageService.LocalRoot(); ok {
		prefix := "/uploads"
		if u, err := url.Parse(cfg.Storage.PublicBaseURL); err == nil && u.Path != "" {
			prefix = u.Path
		}
		r.Static(prefix, root)
	}

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(limiters.Auth.Middleware())
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authRequired, authHandler.Logout)
			auth.GET("/session", authRequired, authHandler.Session)
		}

		// Server functions
		functions := v1.Group("/functions")
		{
			functions.GET("/get-agreement-template", functionHandler.GetAgreementTemplate)
			functions.GET("/get-user-profile", authRequired, functionHandler.GetUserProfile)
			functions.POST("/send-email", authRequired, functionHandler.SendEmail)
			functions.GET("/get-all-users", authRequired, adminRequired, functionHandler.GetAllUsers)
			functions.POST("/create-user-by-admin", authRequired, adminRequired, functionHandler.CreateUserByAdmin)
		}

		// Catalog
		songs := v1.Group("/songs", authRequired)
		{
			songs.GET("", songHandler.ListSongs)
			songs.POST("", songHandler.CreateSong)
			songs.GET("/:id", songHandler.GetSong)
			songs.PATCH("/:id/status", songHandler.UpdateStatus)
			songs.PATCH("/:id/sync-status", songHandler.UpdateSyncStatus)
		}

		writers := v1.Group("/managed-writers", authRequired)
		{
			writers.GET("", songHandler.ListManagedWriters)
			writers.POST("", songHandler.CreateManagedWriter)
		}

		// Royalties
		earnings := v1.Group("/earnings", authRequired)
		{
			earnings.GET("", royaltyHandler.ListEarnings)
			earnings.POST("", adminRequired, royaltyHandler.CreateEarning)
		}

		payouts := v1.Group("/payouts", authRequired)
		{
			payouts.GET("", royaltyHandler.ListPayouts)
			payouts.GET("/balance", royaltyHandler.Balance)
			payouts.POST("", royaltyHandler.RequestPayout)
			payouts.PATCH("/:id/status", adminRequired, royaltyHandler.UpdatePayoutStatus)
		}

		deals := v1.Group("/sync-deals", authRequired)
		{
			deals.GET("", royaltyHandler.ListSyncDeals)
			deals.POST("", adminRequired, royaltyHandler.CreateSyncDeal)
			deals.PATCH("/:id/status", royaltyHandler.UpdateSyncDealStatus)
		}

		// Users and settings
		v1.PUT("/users/profile", authRequired, userHandler.UpsertProfile)
		v1.GET("/roles", authRequired, userHandler.Roles)
		v1.PUT("/settings/agreement-template", authRequired, adminRequired, userHandler.UpdateAgreementTemplate)

		admin := v1.Group("/admin", authRequired, adminRequired)
		{
			admin.PATCH("/users/:id", userHandler.UpdateAccess)
			admin.GET("/contacts", adminHandler.GetAdminContacts)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}

		// Live support
		chat := v1.Group("/chat", authRequired)
		{
			chat.GET("/sessions", chatHandler.ListSessions)
			chat.GET("/sessions/:id/messages", chatHandler.ListMessages)
			chat.PATCH("/sessions/:id/read", adminRequired, chatHandler.MarkRead)
			chat.POST("/messages", chatHandler.SendMessage)
		}

		// Assistant
		ai := v1.Group("/ai", authRequired, limiters.AI.Middleware())
		{
			ai.POST("/summarize-agreement", aiHandler.SummarizeAgreement)
			ai.POST("/chat", aiHandler.Chat)
		}

		v1.POST("/storage/upload", authRequired, limiters.Upload.Middleware(), storageHandler.Upload)

		v1.GET("/realtime", authRequired, realtimeHandler.Subscribe)
	}

	return &App{
		Engine:      r,
		Broadcaster: broadcaster,
		Hub:         hub,
		Chat:        chatService,
		Limiters:    limiters,
	}, nil
}
