package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"autoport/internal/domain"
	"autoport/internal/handler"
	"autoport/internal/middleware"
	"autoport/internal/repository"
	"autoport/internal/service"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	CarHandler     *handler.CarHandler
	TripHandler    *handler.TripHandler
	BookingHandler *handler.BookingHandler
	AdminHandler   *handler.AdminHandler
	TokenManager   *service.TokenManager
	UserRepo       repository.UserRepository
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	authn := middleware.AuthMiddleware(deps.TokenManager, deps.UserRepo)
	driverOnly := middleware.RequireRole(domain.RoleDriver, domain.RoleAdmin)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Auth routes (public).
		auth := v1.Group("/auth")
		{
			auth.POST("/register/request-otp", deps.AuthHandler.RequestRegistrationOTP)
			auth.POST("/register/verify", deps.AuthHandler.VerifyRegistration)
			auth.POST("/login/request-otp", deps.AuthHandler.RequestLoginOTP)
			auth.POST("/login/verify", deps.AuthHandler.VerifyLogin)
			auth.POST("/register-driver", deps.AuthHandler.RegisterDriver)
		}

		// Profile routes.
		users := v1.Group("/users", authn)
		{
			users.GET("/me", deps.UserHandler.Me)
			users.PATCH("/me", deps.UserHandler.UpdateMe)
		}

		// Car routes (drivers).
		cars := v1.Group("/cars", authn, driverOnly)
		{
			cars.POST("", deps.CarHandler.Create)
			cars.GET("", deps.CarHandler.List)
			cars.GET("/:id", deps.CarHandler.Get)
			cars.PATCH("/:id", deps.CarHandler.Update)
			cars.DELETE("/:id", deps.CarHandler.Delete)
			cars.POST("/:id/default", deps.CarHandler.SetDefault)
		}

		// Trip routes. Search and detail are public; publishing and
		// editing require a driver account.
		trips := v1.Group("/trips")
		{
			trips.GET("", deps.TripHandler.Search)
			trips.GET("/mine", authn, driverOnly, deps.TripHandler.Mine)
			trips.GET("/:id", deps.TripHandler.Get)
			trips.POST("", authn, driverOnly, deps.TripHandler.Publish)
			trips.PATCH("/:id", authn, driverOnly, deps.TripHandler.Update)
			trips.POST("/:id/cancel", authn, driverOnly, deps.TripHandler.Cancel)
		}

		// Booking routes (passengers).
		bookings := v1.Group("/bookings", authn)
		{
			bookings.POST("", deps.BookingHandler.Create)
			bookings.GET("", deps.BookingHandler.List)
			bookings.GET("/:id", deps.BookingHandler.Get)
			bookings.POST("/:id/cancel", deps.BookingHandler.Cancel)
		}

		// Admin routes.
		admin := v1.Group("/admin", authn, adminOnly)
		{
			admin.GET("/drivers/pending", deps.AdminHandler.PendingDrivers)
			admin.POST("/drivers/:id/review", deps.AdminHandler.ReviewDriver)
			admin.GET("/cars/pending", deps.AdminHandler.PendingCars)
			admin.POST("/cars/:id/review", deps.AdminHandler.ReviewCar)
			admin.GET("/trips", deps.AdminHandler.Trips)
		}
	}

	return router
}
