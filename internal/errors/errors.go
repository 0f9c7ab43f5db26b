package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const statusError = "error"

// Default messages
const (
	MsgUnauthorized   = "Missing Authorization Token"
	MsgInvalidToken   = "Expired or Invalid Authorization Token, kindly login again"
	MsgForbidden      = "Unauthorized request denied"
	MsgNotFound       = "Entity not found"
	MsgInvalidRequest = "Invalid request"
	MsgConflict       = "Resource conflict"
	MsgInternal       = "Internal server error"
	MsgTooManyRequest = "Too many requests, please try again later"
)

// APIError is the error form of the response envelope
type APIError struct {
	StatusCode int          `json:"statusCode"`
	Status     string       `json:"status"`
	Message    string       `json:"message"`
	Errors     []FieldError `json:"errors,omitempty"`
}

// FieldError describes one rejected input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Status:     statusError,
		Message:    message,
	}
}

// RespondWithError sends an error response and stops the handler chain
func RespondWithError(c *gin.Context, err *APIError) {
	c.AbortWithStatusJSON(err.StatusCode, err)
}

// Respond sends an error envelope for an arbitrary status code
func Respond(c *gin.Context, statusCode int, message string) {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	RespondWithError(c, NewAPIError(statusCode, message))
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = MsgUnauthorized
	}
	RespondWithError(c, NewAPIError(http.StatusUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = MsgForbidden
	}
	RespondWithError(c, NewAPIError(http.StatusForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = MsgNotFound
	}
	RespondWithError(c, NewAPIError(http.StatusNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = MsgInvalidRequest
	}
	RespondWithError(c, NewAPIError(http.StatusBadRequest, message))
}

// BadRequestWithDetails sends a 400 response listing the rejected fields
func BadRequestWithDetails(c *gin.Context, message string, details []FieldError) {
	apiErr := NewAPIError(http.StatusBadRequest, message)
	apiErr.Errors = details
	RespondWithError(c, apiErr)
}

// ValidationFailed turns a binding error into a 400 response
func ValidationFailed(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{
				Field:   jsonFieldName(fe),
				Message: describe(fe),
			})
		}
		BadRequestWithDetails(c, "Validation failed", details)
		return
	}
	BadRequest(c, "Invalid request body")
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = MsgConflict
	}
	RespondWithError(c, NewAPIError(http.StatusConflict, message))
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = MsgTooManyRequest
	}
	RespondWithError(c, NewAPIError(http.StatusTooManyRequests, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = MsgInternal
	}
	RespondWithError(c, NewAPIError(http.StatusInternalServerError, message))
}

func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.StructField()
	}
	return toSnake(name)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gt":
		if fe.Param() == "" {
			return "must be in the future"
		}
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gtfield":
		return fmt.Sprintf("must be after %s", toSnake(fe.Param()))
	case "uuid", "uuid4":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// toSnake converts a Go field name such as EstimatedEndTime to estimated_end_time.
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] != '_' && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
