package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

type Guard struct {
	Codec *tokens.Codec
}

func NewGuard(codec *tokens.Codec) *Guard {
	return &Guard{Codec: codec}
}

// RequireAuth admits only requests with a verifiable bearer access
// token and stores the caller's identity on the echo context.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "token was not provided")
		}

		claims, err := g.Codec.ParseAccess(raw)
		if err != nil {
			if errors.Is(err, tokens.ErrExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxRole, claims.Role)

		return next(c)
	}
}

// RequireOwnerOrAdmin allows a profile mutation only when the caller is
// the addressed subject or carries the admin role. Runs after
// RequireAuth, so a mismatch here is authenticated-but-forbidden.
func RequireOwnerOrAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _ := c.Get(CtxUserID).(string)
		role, _ := c.Get(CtxRole).(string)

		if userID != c.Param("uuid") && role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "you're not authorized")
		}

		return next(c)
	}
}

// RequireAdmin restricts a route to admin callers.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, _ := c.Get(CtxRole).(string)
		if role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "you don't have permission")
		}
		return next(c)
	}
}
