package routes

import (
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/handlers"
	"github.com/Hiteshmehtaa/yann-app-sub003/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterBookingRoutes sets up the booking lifecycle endpoints. Residents may
// book as guests, so their routes take an optional token; provider actions
// require one.
func RegisterBookingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	optionalAuth := middleware.ActorAuthMiddleware(hb.JWTSecret, true)

	bookingGroup := api.Group("/bookings")
	{
		public := bookingGroup.Group("")
		public.Use(optionalAuth)
		public.POST("", hb.CreateBookingHandler)
		public.GET("/:id", hb.GetBookingHandler)
		public.GET("/:id/status", hb.PollStatusHandler)
		public.POST("/:id/buzzer", hb.SendBuzzerHandler)
		public.POST("/:id/cancel", hb.CancelBookingHandler)

		provider := bookingGroup.Group("")
		provider.Use(middleware.ActorAuthMiddleware(hb.JWTSecret, false), middleware.RequireRole(middleware.RoleProvider))
		provider.POST("/:id/accept", hb.AcceptBookingHandler)
		provider.POST("/:id/reject", hb.RejectBookingHandler)
		provider.POST("/:id/complete", hb.CompleteBookingHandler)
		provider.POST("/:id/negotiation", hb.ProposeNegotiationHandler)
	}

	requestGroup := api.Group("/requests")
	{
		requestGroup.Use(optionalAuth, middleware.RejectRole(middleware.RoleProvider))
		requestGroup.POST("/:id/negotiation", hb.RespondNegotiationHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)

	api := r.Group("/api")
	if hb.RequestsPerMinute > 0 {
		api.Use(middleware.RateLimitMiddleware(hb.RequestsPerMinute))
	}
	RegisterBookingRoutes(api, hb)
}
