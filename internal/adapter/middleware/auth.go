package middleware

import (
	"net/http"
	"strings"

	"flendly-backend/internal/domain/user"
	"flendly-backend/pkg/token"

	"github.com/labstack/echo/v4"
)

const callerKey = "caller"

// TokenValidator verifies bearer tokens; *token.Issuer satisfies it.
type TokenValidator interface {
	Validate(tokenString string) (*token.Claims, error)
}

// Auth requires "Authorization: Bearer <jwt>". A missing token is 401,
// an invalid or expired one 403.
func Auth(v TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			scheme, tok, found := strings.Cut(raw, " ")
			tok = strings.TrimSpace(tok)
			if raw == "" || !found || !strings.EqualFold(scheme, "Bearer") || tok == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "access token required"})
			}

			claims, err := v.Validate(tok)
			if err != nil {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "invalid or expired token"})
			}
			c.Set(callerKey, user.Caller{
				UserID: claims.UserID,
				Email:  claims.Email,
				Name:   claims.Name,
				Role:   user.Role(claims.Role),
			})
			return next(c)
		}
	}
}

// AdminOnly must run after Auth.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		caller, ok := CallerFrom(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "access token required"})
		}
		if !caller.IsAdmin() {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "admin access required"})
		}
		return next(c)
	}
}

func CallerFrom(c echo.Context) (user.Caller, bool) {
	caller, ok := c.Get(callerKey).(user.Caller)
	return caller, ok
}

// WithCaller attaches caller to c as Auth would.
func WithCaller(c echo.Context, caller user.Caller) { c.Set(callerKey, caller) }
