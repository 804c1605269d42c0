package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trouvetonartisan/backend/internal/app/model"
	"github.com/trouvetonartisan/backend/internal/app/service"
	apperrors "github.com/trouvetonartisan/backend/internal/errors"
	"github.com/trouvetonartisan/backend/internal/middleware"
)

type ArtisanController struct {
	errorResponder
	artisanService service.ArtisanService
}

func NewArtisanController(artisanService service.ArtisanService, exposeDetails bool) *ArtisanController {
	return &ArtisanController{
		errorResponder: errorResponder{exposeDetails: exposeDetails},
		artisanService: artisanService,
	}
}

func nonNilArtisans(artisans []model.Artisan) []model.Artisan {
	if artisans == nil {
		return []model.Artisan{}
	}
	return artisans
}

// ListArtisans returns a page of artisans
// GET /api/artisans?page=&limit=&categorie=&search=
func (ctrl *ArtisanController) ListArtisans(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query, err := service.ParseArtisanQuery(
		c.Query("page"),
		c.Query("limit"),
		c.Query("categorie"),
		c.Query("search"),
	)
	if err != nil {
		log.Warn("Invalid artisan listing query", map[string]interface{}{
			"error": err.Error(),
		})
		ctrl.respondError(c, err, "list artisans")
		return
	}

	page, err := ctrl.artisanService.ListArtisans(c.Request.Context(), query)
	if err != nil {
		ctrl.respondError(c, err, "list artisans")
		return
	}

	log.Info("Artisans listed", map[string]interface{}{
		"count": len(page.Artisans),
		"total": page.Total,
		"page":  page.CurrentPage,
	})

	c.JSON(http.StatusOK, apperrors.Response{
		Success:     true,
		Data:        nonNilArtisans(page.Artisans),
		Count:       int64Ptr(page.Total),
		TotalPages:  intPtr(page.TotalPages),
		CurrentPage: intPtr(page.CurrentPage),
	})
}

// GetTopArtisans returns the featured artisans
// GET /api/artisans/top
func (ctrl *ArtisanController) GetTopArtisans(c *gin.Context) {
	artisans, err := ctrl.artisanService.GetFeaturedArtisans(c.Request.Context())
	if err != nil {
		ctrl.respondError(c, err, "featured artisans")
		return
	}

	c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Data:    nonNilArtisans(artisans),
		Count:   int64Ptr(int64(len(artisans))),
	})
}

// SearchArtisans searches artisans by name
// GET /api/artisans/search?q=
func (ctrl *ArtisanController) SearchArtisans(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	artisans, err := ctrl.artisanService.SearchArtisans(c.Request.Context(), c.Query("q"))
	if err != nil {
		ctrl.respondError(c, err, "search artisans")
		return
	}

	log.Info("Artisan search completed", map[string]interface{}{
		"count": len(artisans),
	})

	c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Data:    nonNilArtisans(artisans),
		Count:   int64Ptr(int64(len(artisans))),
	})
}

// GetArtisanByID returns one artisan
// GET /api/artisans/:id
func (ctrl *ArtisanController) GetArtisanByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := service.ParseArtisanID(idStr)
	if err != nil {
		log.Warn("Invalid artisan ID format", map[string]interface{}{
			"artisan_id": idStr,
		})
		ctrl.respondError(c, err, "artisan")
		return
	}

	artisan, err := ctrl.artisanService.GetArtisanByID(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err, "artisan")
		return
	}

	c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Data:    artisan,
	})
}
