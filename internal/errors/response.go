package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint answers with, success or not.
type Response struct {
	Success     bool         `json:"success"`
	Error       string       `json:"error,omitempty"` // error code, see codes.go
	Message     string       `json:"message,omitempty"`
	Data        interface{}  `json:"data,omitempty"`
	Count       *int64       `json:"count,omitempty"`
	TotalPages  *int         `json:"totalPages,omitempty"`
	CurrentPage *int         `json:"currentPage,omitempty"`
	Categorie   interface{}  `json:"categorie,omitempty"`
	Errors      []FieldError `json:"errors,omitempty"`
}

// FieldError is one failed rule of a validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondWithError writes a failed envelope and aborts the handler chain.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Error:   errorCode,
		Message: message,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Clé API manquante. Accès non autorisé."
	}
	RespondWithError(c, http.StatusUnauthorized, AuthAPIKeyMissing, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Clé API invalide. Accès refusé."
	}
	RespondWithError(c, http.StatusForbidden, AuthAPIKeyInvalid, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func TooManyRequests(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusTooManyRequests, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Erreur interne du serveur"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// RespondWithValidationError answers 400 with one entry per failed field.
func RespondWithValidationError(c *gin.Context, fields []FieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   ValidationInvalidInput,
		Message: "Données de validation invalides",
		Errors:  fields,
	})
}
