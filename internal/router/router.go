package router

import (
	"github.com/gin-gonic/gin"
	"github.com/trouvetonartisan/backend/config"
	"github.com/trouvetonartisan/backend/internal/app/controller"
	apperrors "github.com/trouvetonartisan/backend/internal/errors"
	"github.com/trouvetonartisan/backend/internal/middleware"
)

type Router struct {
	artisanController  *controller.ArtisanController
	categoryController *controller.CategoryController
	contactController  *controller.ContactController
	healthController   *controller.HealthController
	imageController    *controller.ImageController
	authMiddleware     *middleware.AuthMiddleware
	rateLimitStore     middleware.RateLimitStore
	config             *config.Config
}

func NewRouter(
	artisanController *controller.ArtisanController,
	categoryController *controller.CategoryController,
	contactController *controller.ContactController,
	healthController *controller.HealthController,
	imageController *controller.ImageController,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitStore middleware.RateLimitStore,
	cfg *config.Config,
) *Router {
	return &Router{
		artisanController:  artisanController,
		categoryController: categoryController,
		contactController:  contactController,
		healthController:   healthController,
		imageController:    imageController,
		authMiddleware:     authMiddleware,
		rateLimitStore:     rateLimitStore,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.Recovery(r.config.Server.IsDevelopment()))
	router.Use(middleware.SecureHeaders())
	router.Use(middleware.CORS(r.config.CORS.AllowedOrigins))

	router.GET("/uploads/*filepath", r.imageController.ServeImage)

	api := router.Group("/api",
		middleware.RateLimit(r.rateLimitStore, middleware.RateLimitRule{
			Name:    "api",
			Window:  r.config.RateLimit.Window,
			Max:     r.config.RateLimit.Max,
			Code:    apperrors.RateLimited,
			Message: "Trop de requêtes depuis cette IP. Veuillez réessayer dans 15 minutes.",
		}),
		middleware.BodyLimit(r.config.Server.BodyLimit),
		middleware.QueryTimeout(r.config.Server.QueryTimeout),
	)

	api.GET("/health", r.healthController.Health)

	protected := api.Group("", r.authMiddleware.RequireAPIKey())
	{
		categories := protected.Group("/categories")
		{
			categories.GET("", r.categoryController.ListCategories)
			categories.GET("/:slug", r.categoryController.GetCategoryBySlug)
			categories.GET("/:slug/artisans", r.categoryController.GetArtisansByCategory)
		}

		artisans := protected.Group("/artisans")
		{
			artisans.GET("", r.artisanController.ListArtisans)
			artisans.GET("/top", r.artisanController.GetTopArtisans)
			artisans.GET("/search", r.artisanController.SearchArtisans)
			artisans.GET("/:id", r.artisanController.GetArtisanByID)
		}

		protected.POST("/contact",
			middleware.RateLimit(r.rateLimitStore, middleware.RateLimitRule{
				Name:    "contact",
				Window:  r.config.RateLimit.ContactWindow,
				Max:     r.config.RateLimit.ContactMax,
				Code:    apperrors.ContactRateLimited,
				Message: "Limite d'envoi de messages atteinte. Veuillez réessayer plus tard.",
			}),
			r.contactController.SendMessage,
		)
	}

	router.NoRoute(func(c *gin.Context) {
		apperrors.NotFound(c, apperrors.RouteNotFound, "Route non trouvée")
	})

	return router
}
