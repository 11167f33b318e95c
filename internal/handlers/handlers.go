package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"worksync/api/internal/cache"
	"worksync/api/internal/config"
	"worksync/api/internal/identity"
	"worksync/api/internal/middleware"
	"worksync/api/internal/models"
	"worksync/api/internal/repository"
)

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	db            *pgxpool.Pool
	cache         *redis.Client
	identity      *identity.Service
	users         *repository.UserRepository
	shifts        *repository.ShiftRepository
	notifications *repository.NotificationRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, redisClient *redis.Client, sessionCache cache.Store, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	identityService := identity.NewService(userRepo, sessionCache, cfg, log)

	return HandlerSet{
		log:           log,
		cfg:           cfg,
		db:            db,
		cache:         redisClient,
		identity:      identityService,
		users:         userRepo,
		shifts:        shiftRepo,
		notifications: notificationRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/reset-password/confirm", h.ResetPasswordConfirm)

		protected := v1.Group("/auth")
		protected.Use(middleware.Auth(h.cfg, h.users))
		protected.POST("/logout", h.Logout)
		protected.GET("/me", h.Me)
	}

	accounts := v1.Group("/accounts")
	accounts.Use(
		middleware.Auth(h.cfg, h.users),
		middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
	)
	accounts.POST("", h.CreateAccount)

	shifts := v1.Group("/shifts")
	shifts.Use(middleware.Auth(h.cfg, h.users))
	shifts.GET("", h.ListShifts)
	shifts.POST("/:id/clock-in", h.ClockIn)
	shifts.POST("/:id/clock-out", h.ClockOut)
	shifts.POST("",
		middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
		h.CreateShift,
	)

	notifications := v1.Group("/notifications")
	notifications.Use(middleware.Auth(h.cfg, h.users))
	notifications.GET("", h.ListNotifications)
	notifications.POST("/:id/read", h.MarkNotificationRead)
	notifications.POST("/read-all", h.MarkAllNotificationsRead)
}

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("current_user")
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}
