package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pmsworkflow/pms-api/internal/auth"
	"github.com/pmsworkflow/pms-api/internal/constants"
	apierrors "github.com/pmsworkflow/pms-api/internal/errors"
	"github.com/pmsworkflow/pms-api/internal/metrics"
)

// Authenticator resolves the caller behind a bearer token
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*auth.Principal, error)
}

// Authorize verifies the bearer token and attaches the caller's principal,
// permissions included, to the request context
func Authorize(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			metrics.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
			apierrors.Unauthorized(c, apierrors.MsgUnauthorized)
			return
		}

		principal, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
			apierrors.Unauthorized(c, apierrors.MsgInvalidToken)
			return
		}

		c.Set(constants.ContextKeyPrincipal, *principal)
		c.Next()
	}
}

// RequirePermission stops the chain with 403 unless the caller holds perm
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		if !principal.Can(perm) {
			metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
			apierrors.Forbidden(c, "")
			return
		}
		c.Next()
	}
}

// GetPrincipal retrieves the authenticated caller from context
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return auth.Principal{}, false
	}
	principal, ok := value.(auth.Principal)
	return principal, ok
}

func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
