package router

import (
	"cornerconsole/config"
	"cornerconsole/internal/domain"
	"cornerconsole/internal/handler"
	"cornerconsole/internal/middleware"
	"cornerconsole/internal/repository"
	"cornerconsole/internal/service"
	"cornerconsole/pkg/gateway"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, gw gateway.Gateway) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	rentalRepo := repository.NewRentalRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Services
	availabilitySvc := service.NewAvailabilityService(rentalRepo)
	rentalSvc := service.NewRentalService(db, rentalRepo, inventoryRepo)
	paymentSvc := service.NewPaymentService(db, paymentRepo, rentalRepo, userRepo, webhookRepo, gw, &cfg.Payment)
	reviewSvc := service.NewReviewService(reviewRepo, rentalRepo)

	// Handlers
	catalogHandler := handler.NewCatalogHandler(inventoryRepo)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc, inventoryRepo)
	rentalHandler := handler.NewRentalHandler(rentalSvc, rentalRepo)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, paymentRepo)
	webhookHandler := handler.NewWebhookHandler(paymentSvc, gw)
	reviewHandler := handler.NewReviewHandler(reviewSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	api := r.Group("/api/v1")
	{
		catalog := api.Group("/catalog")
		{
			catalog.GET("/consoles", catalogHandler.ListConsoles)
			catalog.GET("/games", catalogHandler.ListGames)
			catalog.GET("/accessories", catalogHandler.ListAccessories)
			catalog.GET("/items/:slug", catalogHandler.GetBySlug)
		}

		api.GET("/availability/:id", availabilityHandler.CheckItem)
		api.POST("/availability/check", availabilityHandler.CheckBulk)

		rentals := api.Group("/rentals")
		rentals.Use(authMw)
		{
			rentals.POST("", rentalHandler.Create)
			rentals.GET("", rentalHandler.ListMine)
			rentals.GET("/:id", rentalHandler.Get)
			rentals.POST("/:id/cancel", rentalHandler.Cancel)
			rentals.POST("/:id/return", adminMw, rentalHandler.Return)
			rentals.POST("/:id/activate", adminMw, rentalHandler.Activate)
		}

		payments := api.Group("/payments")
		payments.Use(authMw)
		{
			payments.POST("/checkout", paymentHandler.CreateCheckout)
			payments.GET("", paymentHandler.ListMine)
			payments.GET("/:id", paymentHandler.Get)
			payments.POST("/:id/refund", adminMw, paymentHandler.Refund)
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("/consoles/:id", reviewHandler.ConsoleStats)
			reviews.POST("", authMw, reviewHandler.Create)
			reviews.PATCH("/:id", authMw, reviewHandler.Update)
			reviews.DELETE("/:id", authMw, reviewHandler.Delete)
			reviews.GET("/reviewable", authMw, reviewHandler.Reviewable)
		}

		// Gateway callbacks are signature-verified, not JWT-authenticated.
		api.POST("/webhooks/stripe", webhookHandler.HandleStripe)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
