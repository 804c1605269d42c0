package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trouvetonartisan/backend/internal/app/model"
	"github.com/trouvetonartisan/backend/internal/app/service"
	apperrors "github.com/trouvetonartisan/backend/internal/errors"
	"github.com/trouvetonartisan/backend/internal/middleware"
)

type CategoryController struct {
	errorResponder
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService, exposeDetails bool) *CategoryController {
	return &CategoryController{
		errorResponder:  errorResponder{exposeDetails: exposeDetails},
		categoryService: categoryService,
	}
}

// ListCategories returns every category with its specialties
// GET /api/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	categories, err := ctrl.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		ctrl.respondError(c, err, "list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}

	c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Data:    categories,
		Count:   int64Ptr(int64(len(categories))),
	})
}

// GetCategoryBySlug returns one category
// GET /api/categories/:slug
func (ctrl *CategoryController) GetCategoryBySlug(c *gin.Context) {
	category, err := ctrl.categoryService.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		ctrl.respondError(c, err, "category")
		return
	}

	c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Data:    category,
	})
}

// GetArtisansByCategory returns every artisan of a category
// GET /api/categories/:slug/artisans
func (ctrl *CategoryController) GetArtisansByCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	result, err := ctrl.categoryService.GetArtisansByCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		ctrl.respondError(c, err, "category")
		return
	}

	log.Info("Category artisans fetched", map[string]interface{}{
		"slug":  result.Category.Slug,
		"count": len(result.Artisans),
	})

	c.JSON(http.StatusOK, apperrors.Response{
		Success:   true,
		Data:      nonNilArtisans(result.Artisans),
		Count:     int64Ptr(int64(len(result.Artisans))),
		Categorie: result.Category,
	})
}
