package httputil

// Machine-readable error codes returned alongside error messages so clients
// can branch without parsing English text.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"

	// Validation
	CodeNameRequired       = "NAME_REQUIRED"
	CodeEmailRequired      = "EMAIL_REQUIRED"
	CodePasswordRequired   = "PASSWORD_REQUIRED"
	CodePasswordTooShort   = "PASSWORD_TOO_SHORT"
	CodeInvalidEmailFormat = "INVALID_EMAIL_FORMAT"
	CodeInvalidRole        = "INVALID_ROLE"
	CodeInvalidProvider    = "INVALID_PROVIDER"
	CodeInvalidUserID      = "INVALID_USER_ID"

	// Authentication / authorization
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeMissingAuth        = "MISSING_AUTHENTICATION"
	CodeInvalidAuthHeader  = "INVALID_AUTH_HEADER"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeForbidden          = "FORBIDDEN"

	// Users
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeUserNotFound       = "USER_NOT_FOUND"
)
