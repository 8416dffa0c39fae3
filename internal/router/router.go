package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kcastreetfood/reservation-backend/config"
	"github.com/kcastreetfood/reservation-backend/internal/app/controller"
	"github.com/kcastreetfood/reservation-backend/internal/db"
	"github.com/kcastreetfood/reservation-backend/internal/middleware"
	"gorm.io/gorm"
)

type Router struct {
	authController        *controller.AuthController
	restaurantController  *controller.RestaurantController
	tableController       *controller.TableController
	reservationController *controller.ReservationController
	adminController       *controller.AdminController
	uploadController      *controller.UploadController
	authMiddleware        *middleware.AuthMiddleware
	database              *gorm.DB
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	restaurantController *controller.RestaurantController,
	tableController *controller.TableController,
	reservationController *controller.ReservationController,
	adminController *controller.AdminController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	database *gorm.DB,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		restaurantController:  restaurantController,
		tableController:       tableController,
		reservationController: reservationController,
		adminController:       adminController,
		uploadController:      uploadController,
		authMiddleware:        authMiddleware,
		database:              database,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.GET("/verify-email", r.authController.VerifyEmail)
			auth.POST("/resend-verification", r.authController.ResendVerification)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/forgot-password", r.authController.ForgotPassword)
			auth.POST("/reset-password", r.authController.ResetPassword)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
		}

		users := v1.Group("/users")
		users.Use(r.authMiddleware.Authenticate())
		{
			users.GET("/me", r.authController.GetMe)
			users.PUT("/me", r.authController.UpdateMe)
		}

		restaurants := v1.Group("/restaurants")
		{
			restaurants.GET("", r.restaurantController.ListRestaurants)
			restaurants.GET("/:id", r.restaurantController.GetRestaurant)
			restaurants.GET("/:id/tables", r.restaurantController.ListTables)
		}

		tables := v1.Group("/tables")
		{
			tables.GET("/available", r.tableController.AvailableTables)
			tables.GET("/:id", r.tableController.GetTable)
		}

		reservations := v1.Group("/reservations")
		reservations.Use(r.authMiddleware.Authenticate())
		{
			reservations.POST("", r.reservationController.CreateReservation)
			reservations.GET("/my", r.reservationController.MyReservations)
			reservations.GET("/upcoming", r.reservationController.UpcomingReservations)
			reservations.GET("/past", r.reservationController.PastReservations)
			reservations.GET("/:id", r.reservationController.GetReservation)
			reservations.PUT("/:id", r.reservationController.UpdateReservation)
			reservations.PUT("/:id/cancel", r.reservationController.CancelReservation)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireAdmin())
		{
			admin.GET("/reservations", r.adminController.ListReservations)
			admin.GET("/reservations/export", r.adminController.ExportReservations)

			admin.POST("/tables", r.tableController.CreateTable)
			admin.PUT("/tables/:id", r.tableController.UpdateTable)
			admin.DELETE("/tables/:id", r.tableController.DeleteTable)

			admin.POST("/restaurants", r.restaurantController.CreateRestaurant)
			admin.PUT("/restaurants/:id", r.restaurantController.UpdateRestaurant)

			admin.POST("/uploads/restaurant-image", r.uploadController.RestaurantImageURL)

			admin.GET("/users", r.adminController.ListUsers)
			admin.GET("/users/:id", r.adminController.GetUser)
			admin.PUT("/users/:id", r.adminController.UpdateUser)
		}
	}

	return router
}

func (r *Router) health(c *gin.Context) {
	if r.database != nil {
		if err := db.Ping(r.database); err != nil {
			middleware.GetLoggerFromContext(c).Error("Health check failed", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "database unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Reservation API is running",
	})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
