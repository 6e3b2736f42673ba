package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/smokefree-backend/internal/config"
	"github.com/ignatzorin/smokefree-backend/internal/http/handlers"
	"github.com/ignatzorin/smokefree-backend/internal/http/middleware"
	"github.com/ignatzorin/smokefree-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	planHandler *handlers.PlanHandler,
	trackingHandler *handlers.TrackingHandler,
	coachHandler *handlers.CoachHandler,
	communityHandler *handlers.CommunityHandler,
	membershipHandler *handlers.MembershipHandler,
	notificationHandler *handlers.NotificationHandler,
	mediaHandler *handlers.MediaHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	// Auth эндпоинты под rate limit: защита от перебора кодов и паролей
	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/verify-email", authHandler.VerifyEmail)
		authGroup.POST("/resend-verification", authHandler.ResendVerification)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh-token", authHandler.RefreshToken)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/coaches", coachHandler.ListCoaches)
	api.GET("/coaches/:id", middleware.UUIDValidator("id"), coachHandler.GetCoach)
	api.GET("/membership/plans", membershipHandler.ListPlans)
	api.GET("/media/photos/:id", middleware.UUIDValidator("id"), mediaHandler.GetPhoto)
	api.GET("/posts", communityHandler.ListPosts)
	api.GET("/posts/:id", middleware.UUIDValidator("id"), communityHandler.GetPost)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", profileHandler.GetMe)
		protected.PUT("/profile", profileHandler.UpdateMe)
		protected.DELETE("/profile", profileHandler.DeleteMe)
		protected.POST("/profile/change-password", profileHandler.ChangePassword)
		protected.GET("/profile/sessions", profileHandler.ListSessions)
		protected.DELETE("/profile/sessions/:id", middleware.UUIDValidator("id"), profileHandler.DeleteSession)

		protected.POST("/plans", planHandler.StartPlan)
		protected.GET("/plans", planHandler.ListPlans)
		protected.GET("/plans/current", planHandler.GetCurrent)
		protected.PUT("/plans/current/step", planHandler.SubmitStep)
		protected.POST("/plans/current/activate", planHandler.ActivatePlan)
		protected.POST("/plans/current/stages/:id/complete", middleware.UUIDValidator("id"), planHandler.CompleteStage)
		protected.DELETE("/plans/current", planHandler.AbandonPlan)

		protected.POST("/tracking/mood", trackingHandler.CreateMood)
		protected.GET("/tracking/mood", trackingHandler.ListMood)
		protected.PUT("/tracking/progress", trackingHandler.UpsertProgress)
		protected.GET("/tracking/progress", trackingHandler.ListProgress)
		protected.GET("/tracking/progress/:date", trackingHandler.GetProgressByDate)
		protected.GET("/tracking/summary", trackingHandler.GetSummary)

		protected.POST("/bookings", coachHandler.CreateBooking)
		protected.GET("/bookings", coachHandler.ListBookings)
		protected.POST("/bookings/:id/cancel", middleware.UUIDValidator("id"), coachHandler.CancelBooking)

		protected.POST("/posts", communityHandler.CreatePost)
		protected.PUT("/posts/:id", middleware.UUIDValidator("id"), communityHandler.UpdatePost)
		protected.DELETE("/posts/:id", middleware.UUIDValidator("id"), communityHandler.DeletePost)
		protected.POST("/posts/:id/comments", middleware.UUIDValidator("id"), communityHandler.CreateComment)
		protected.DELETE("/comments/:id", middleware.UUIDValidator("id"), communityHandler.DeleteComment)

		protected.POST("/membership/upgrade", membershipHandler.Upgrade)

		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)

		protected.POST("/media/photos", mediaHandler.UploadPhoto)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), mediaHandler.DeleteMedia)
	}

	return r
}
