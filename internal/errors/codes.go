package errors

// Error codes returned in ErrorResponse.Error.
// Format: CATEGORY_SPECIFIC_DETAIL; the client maps these to messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong login/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // access token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed or forged token
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // token was logged out
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // email taken
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"     // username taken
	AuthEmailNotVerified   = "AUTH_EMAIL_NOT_VERIFIED"  // login before verification
	AuthCodeInvalid        = "AUTH_CODE_INVALID"        // bad verification/reset token
	AuthCodeExpired        = "AUTH_CODE_EXPIRED"        // verification/reset token expired
	AuthAlreadyVerified    = "AUTH_ALREADY_VERIFIED"    // email already verified

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // no access
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY" // admin console only
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // reservation owner only

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Restaurants & tables ====================
	RestaurantNotFound = "RESTAURANT_NOT_FOUND"
	TableNotFound      = "TABLE_NOT_FOUND"
	TableInUse         = "TABLE_IN_USE" // active reservations still hold it

	// ==================== Reservations (RESERVATION_) ====================
	ReservationNotFound     = "RESERVATION_NOT_FOUND"
	ReservationSlotTaken    = "RESERVATION_SLOT_TAKEN"    // lost the race, re-query availability
	ReservationInvalidState = "RESERVATION_INVALID_STATE" // illegal status transition
	ReservationPastDate     = "RESERVATION_PAST_DATE"
	ReservationPartySize    = "RESERVATION_PARTY_SIZE"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"
	UploadNotConfigured   = "UPLOAD_NOT_CONFIGURED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
