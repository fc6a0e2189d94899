package routes

import (
	"time"

	"sparkathon/handlers"
	"sparkathon/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers sign-up, sign-in and session endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/signup", hb.AuthHandler.SignupHandler)
		api.POST("/login", hb.AuthHandler.LoginHandler)
		api.GET("/session", middleware.SessionAuthMiddleware(hb.Auth, true), hb.AuthHandler.SessionHandler)

		protected := api.Group("")
		protected.Use(middleware.SessionAuthMiddleware(hb.Auth, false))
		protected.POST("/logout", hb.AuthHandler.LogoutHandler)
		protected.GET("/session/events", hb.AuthHandler.SessionEventsHandler)
	}
}

// RegisterSchedulingRoutes registers the scheduling view endpoints.
func RegisterSchedulingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/scheduling")
	{
		api.GET("/insights", hb.SchedHandler.InsightsHandler)

		sessions := api.Group("/sessions")
		sessions.Use(middleware.SessionAuthMiddleware(hb.Auth, false))
		sessions.POST("", hb.SchedHandler.CreateSessionHandler)
		sessions.GET("/:id", hb.SchedHandler.GetSessionHandler)
		sessions.PUT("/:id/details", hb.SchedHandler.UpdateDetailsHandler)
		sessions.PUT("/:id/slot", hb.SchedHandler.SelectSlotHandler)
		sessions.POST("/:id/submit", hb.SchedHandler.SubmitHandler)
		sessions.POST("/:id/retry", hb.SchedHandler.RetryHandler)
		sessions.DELETE("/:id", hb.SchedHandler.CloseSessionHandler)
		sessions.GET("/:id/events", hb.SchedHandler.SessionEventsHandler)
	}
}

// RegisterShellRoutes registers the page chrome and health endpoints.
func RegisterShellRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", handlers.HealthHandler)
	r.GET("/api/shell", middleware.SessionAuthMiddleware(hb.Auth, true), handlers.ShellHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.RateLimitMiddleware(hb.RateLimit))

	RegisterShellRoutes(r, hb)
	RegisterAuthRoutes(r, hb)
	RegisterSchedulingRoutes(r, hb)
}
