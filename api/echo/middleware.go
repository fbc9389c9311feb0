package echo

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/socialkit-dev/identity/domain"
	"github.com/socialkit-dev/identity/services"
)

const (
	userContextKey   = "identity.user"
	claimsContextKey = "identity.claims"
)

// RequireAuth validates the bearer token and stores the resolved user and
// claims on the request context.
func (a *IdentityAPI) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		}

		user, claims, err := a.auth.Verify(c.Request().Context(), token)
		if err != nil {
			return writeError(c, err)
		}
		c.Set(userContextKey, user)
		c.Set(claimsContextKey, claims)
		return next(c)
	}
}

// RequireAdmin allows only admin users past. Must run after RequireAuth.
func (a *IdentityAPI) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := currentUser(c)
		if user == nil || user.Role != domain.RoleAdmin {
			return c.JSON(http.StatusForbidden, errorResponse{Error: "admin access required"})
		}
		return next(c)
	}
}

// RequireSelfOrAdmin allows a user to act on their own resource, and admins
// on anyone's. Must run after RequireAuth.
func (a *IdentityAPI) RequireSelfOrAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := currentUser(c)
		if user == nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		}
		if user.ID != c.Param("id") && user.Role != domain.RoleAdmin {
			return c.JSON(http.StatusForbidden, errorResponse{Error: "access denied"})
		}
		return next(c)
	}
}

func currentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userContextKey).(*domain.User)
	return user
}

func currentClaims(c echo.Context) *services.AccessClaims {
	claims, _ := c.Get(claimsContextKey).(*services.AccessClaims)
	return claims
}
