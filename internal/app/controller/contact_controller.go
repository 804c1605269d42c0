package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trouvetonartisan/backend/internal/app/service"
	apperrors "github.com/trouvetonartisan/backend/internal/errors"
	"github.com/trouvetonartisan/backend/internal/middleware"
)

type ContactController struct {
	errorResponder
	contactService service.ContactService
}

func NewContactController(contactService service.ContactService, exposeDetails bool) *ContactController {
	return &ContactController{
		errorResponder: errorResponder{exposeDetails: exposeDetails},
		contactService: contactService,
	}
}

// SendMessage forwards a visitor's message to an artisan
// POST /api/contact
func (ctrl *ContactController) SendMessage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid contact request body", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindError(c, err)
		return
	}

	if err := ctrl.contactService.SendMessage(c.Request.Context(), req); err != nil {
		ctrl.respondError(c, err, "contact artisan")
		return
	}

	log.Info("Contact message sent", map[string]interface{}{
		"artisan_id": req.ArtisanID,
	})

	c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Message: service.ContactSuccessMessage,
	})
}
