package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trouvetonartisan/backend/internal/app/service"
	apperrors "github.com/trouvetonartisan/backend/internal/errors"
	"github.com/trouvetonartisan/backend/internal/middleware"
)

const (
	msgSearchTooShort  = "La recherche doit contenir au moins 2 caractères"
	msgMailDelivery    = "Erreur lors de l'envoi du message. Veuillez réessayer plus tard."
	msgInvalidJSONBody = "Corps de requête JSON invalide"
)

// errorResponder translates service errors into envelopes. exposeDetails
// puts the raw error message of unexpected failures in the response.
type errorResponder struct {
	exposeDetails bool
}

func (r errorResponder) respondError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]apperrors.FieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, apperrors.FieldError{Field: f.Field, Message: f.Message})
		}
		apperrors.RespondWithValidationError(c, fields)
		return

	case errors.Is(err, service.ErrSearchTooShort):
		apperrors.BadRequest(c, apperrors.ValidationTooShort, msgSearchTooShort)
		return

	case errors.Is(err, service.ErrArtisanNotFound):
		apperrors.NotFound(c, apperrors.ArtisanNotFound, "Artisan non trouvé")
		return

	case errors.Is(err, service.ErrCategoryNotFound):
		apperrors.NotFound(c, apperrors.CategoryNotFound, "Catégorie non trouvée")
		return

	case errors.Is(err, service.ErrMailDelivery):
		log.Error("Mail delivery failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.MailDeliveryFailed, r.message(err, msgMailDelivery))
		return
	}

	info := apperrors.ParseError(err, context)
	log.Error("Request failed", err, map[string]interface{}{
		"context": context,
		"code":    info.Code,
	})

	status := http.StatusInternalServerError
	if info.Code == apperrors.InternalTimeout || info.Code == apperrors.InternalDatabaseError {
		status = http.StatusServiceUnavailable
	}
	apperrors.RespondWithError(c, status, info.Code, r.message(err, info.Message))
}

func (r errorResponder) message(err error, fallback string) string {
	if r.exposeDetails {
		return err.Error()
	}
	return fallback
}

// respondBindError answers a body that could not be decoded.
func respondBindError(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		apperrors.RespondWithError(c, http.StatusRequestEntityTooLarge, apperrors.ValidationBodyTooLarge, "Requête trop volumineuse")
		return
	}

	field := "body"
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field = typeErr.Field
	}
	apperrors.RespondWithValidationError(c, []apperrors.FieldError{{Field: field, Message: msgInvalidJSONBody}})
}

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }
