package errors

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with the message shown to the caller.
type ErrorInfo struct {
	Code    string
	Message string
}

// MySQL server error numbers the catalog can run into.
const (
	mysqlDuplicateEntry     = 1062
	mysqlRowIsReferenced    = 1451
	mysqlNoReferencedRow    = 1452
	mysqlCheckConstraintErr = 3819
)

// ParseError turns a storage error into a code and a message that hides
// driver details. context names the operation, e.g. "artisan" or "category".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Erreur interne du serveur",
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    notFoundCode(context),
			Message: getNotFoundMessage(context),
		}
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlDuplicateEntry:
			return parseDuplicateKeyError(mysqlErr.Message)
		case mysqlRowIsReferenced, mysqlNoReferencedRow:
			return parseForeignKeyError(context)
		case mysqlCheckConstraintErr:
			return parseCheckConstraintError(mysqlErr.Message)
		}
	}

	// postgres and sqlite only surface text
	errLower := strings.ToLower(err.Error())

	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}
	if strings.Contains(errLower, "foreign key constraint") {
		return parseForeignKeyError(context)
	}
	if strings.Contains(errLower, "check constraint") {
		return parseCheckConstraintError(errLower)
	}

	if strings.Contains(errLower, "context deadline exceeded") {
		return ErrorInfo{
			Code:    InternalTimeout,
			Message: "La requête a expiré. Veuillez réessayer plus tard.",
		}
	}
	if strings.Contains(errLower, "connection refused") || strings.Contains(errLower, "no such host") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "Service temporairement indisponible. Veuillez réessayer plus tard.",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Erreur interne du serveur",
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") {
		return ErrorInfo{Code: ArtisanEmailExists, Message: "Un artisan utilise déjà cet email"}
	}
	if strings.Contains(errLower, "slug") || strings.Contains(errLower, "categories") {
		return ErrorInfo{Code: CategoryExists, Message: "Cette catégorie existe déjà"}
	}

	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Cette donnée existe déjà"}
}

func parseForeignKeyError(context string) ErrorInfo {
	if strings.Contains(strings.ToLower(context), "artisan") {
		return ErrorInfo{Code: ResourceConflict, Message: "La spécialité indiquée n'existe pas"}
	}
	return ErrorInfo{Code: ResourceConflict, Message: "Donnée liée introuvable"}
}

func parseCheckConstraintError(errStr string) ErrorInfo {
	if strings.Contains(strings.ToLower(errStr), "note") {
		return ErrorInfo{Code: ArtisanInvalidRating, Message: "La note doit être comprise entre 0 et 5"}
	}
	return ErrorInfo{Code: ValidationInvalidInput, Message: "Données de validation invalides"}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "artisan"):
		return ArtisanNotFound
	case strings.Contains(contextLower, "categor"):
		return CategoryNotFound
	}
	return ResourceNotFound
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "artisan"):
		return "Artisan non trouvé"
	case strings.Contains(contextLower, "categor"):
		return "Catégorie non trouvée"
	}
	return "Ressource non trouvée"
}
