package routes

import (
	"time"

	profileRepo "flat2study/database/repository/profile"
	"flat2study/handlers"
	"flat2study/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires all endpoints onto the router.
func RegisterRoutes(r *gin.Engine, ph *handlers.PaymentHandler, profiles profileRepo.ProfileRepository) {
	// Permissive CORS: browsers hit these endpoints directly from the web app,
	// and the preflight OPTIONS must succeed for every route.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Service-Role-Key"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthHandler)

	api := r.Group("/api/payments")
	{
		// Server-to-server reconciliation after the tenant's confirmation flow.
		api.POST("/verify", middleware.ServiceRoleMiddleware(), ph.VerifyPaymentAuthorization)

		// Authenticated endpoints.
		authed := api.Group("")
		authed.Use(middleware.JWTAuthMiddleware(profiles))
		authed.POST("/authorize", ph.CreatePaymentAuthorization)
		authed.POST("/respond", ph.RespondToBooking)
		authed.POST("/capture", middleware.AdminOnlyMiddleware(), ph.ManualCapturePayment)
	}
}
