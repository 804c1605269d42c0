package errors

// Error codes returned in the "error" field of failed responses.
// Format: CATEGORY_SPECIFIC_DETAIL. The frontend maps its messages on these.

const (
	// ==================== Auth (AUTH_) ====================
	AuthAPIKeyMissing = "AUTH_API_KEY_MISSING" // no x-api-key header
	AuthAPIKeyInvalid = "AUTH_API_KEY_INVALID" // header present but wrong

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationTooShort     = "VALIDATION_TOO_SHORT"
	ValidationBodyTooLarge = "VALIDATION_BODY_TOO_LARGE"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"
	RouteNotFound         = "ROUTE_NOT_FOUND"

	// ==================== Catalog ====================
	ArtisanNotFound      = "ARTISAN_NOT_FOUND"
	ArtisanEmailExists   = "ARTISAN_EMAIL_EXISTS"
	ArtisanInvalidRating = "ARTISAN_INVALID_RATING"
	CategoryNotFound     = "CATEGORY_NOT_FOUND"
	CategoryExists       = "CATEGORY_EXISTS"

	// ==================== Throttling ====================
	RateLimited        = "RATE_LIMITED"
	ContactRateLimited = "CONTACT_RATE_LIMITED"

	// ==================== Mail ====================
	MailDeliveryFailed = "MAIL_DELIVERY_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalTimeout       = "INTERNAL_TIMEOUT"
)
