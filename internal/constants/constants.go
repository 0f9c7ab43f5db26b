package constants

import "time"

// Context keys
const (
	ContextKeyPrincipal = "principal"
	ContextKeyRequestID = "request_id"
)

// Credentials
const (
	BcryptCost        = 8
	MinPasswordLength = 6
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeReset   = "reset"
)

// Default token lifetimes
const (
	DefaultAccessTokenTTL  = 8 * time.Hour
	DefaultRefreshTokenTTL = 5 * 7 * 24 * time.Hour
	DefaultResetTokenTTL   = time.Hour
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Uploads
const (
	MaxUploadBytes  = 5 << 20
	UploadFormField = "file"
)

// AllowedUploadMIMETypes lists the content types accepted by the file upload endpoint.
var AllowedUploadMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/jpg",
	"application/pdf",
}

// Field limits
const (
	MaxProjectNameLength = 30
	MaxDescriptionLength = 500
)
