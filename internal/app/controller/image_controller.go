package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/trouvetonartisan/backend/internal/errors"
	"github.com/trouvetonartisan/backend/internal/middleware"
	"github.com/trouvetonartisan/backend/internal/storage"
)

type ImageController struct {
	local *storage.LocalStorage
	s3    *storage.S3Storage // nil when images are served from disk
}

func NewImageController(local *storage.LocalStorage, s3 *storage.S3Storage) *ImageController {
	return &ImageController{
		local: local,
		s3:    s3,
	}
}

// ServeImage serves an artisan image from disk, or redirects to the bucket
// when S3 is configured.
// GET /uploads/*filepath
func (ctrl *ImageController) ServeImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	key := c.Param("filepath")

	if ctrl.s3 != nil {
		url, err := ctrl.s3.ImageURL(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, storage.ErrInvalidKey) {
				apperrors.NotFound(c, apperrors.ResourceNotFound, "Image non trouvée")
				return
			}
			log.Error("Failed to generate image URL", err, map[string]interface{}{
				"key": key,
			})
			apperrors.InternalError(c, "")
			return
		}
		c.Redirect(http.StatusFound, url)
		return
	}

	path, err := ctrl.local.Path(key)
	if err != nil {
		log.Debug("Image not served", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Image non trouvée")
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}
