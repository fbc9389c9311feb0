package echo

import (
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"

	"github.com/socialkit-dev/identity/services"
)

const minPasswordLength = 8

// RegisterHandler creates a new account and opens its first session.
func (a *IdentityAPI) RegisterHandler(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if req.UserName == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "userName is required"})
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "a valid email is required"})
	}
	if len(req.Password) < minPasswordLength {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "password must be at least 8 characters"})
	}

	result, err := a.auth.Register(c.Request().Context(), services.RegisterInput{
		UserName:    req.UserName,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Location:    req.Location,
		Website:     req.Website,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toAuthResponse(result))
}

// LoginHandler verifies credentials and opens a session.
func (a *IdentityAPI) LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}

	result, err := a.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResponse(result))
}

// RefreshHandler rotates the refresh token and mints a fresh access token.
func (a *IdentityAPI) RefreshHandler(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "refreshToken is required"})
	}

	result, err := a.auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResponse(result))
}

// VerifyHandler echoes the authenticated user back. Clients use it to check
// token validity.
func (a *IdentityAPI) VerifyHandler(c echo.Context) error {
	claims := currentClaims(c)
	return c.JSON(http.StatusOK, map[string]any{
		"user":         toUserView(currentUser(c)),
		"sessionId":    claims.SessionID,
		"serverAccess": claims.ServerAccess,
	})
}

// LogoutHandler ends the caller's session.
func (a *IdentityAPI) LogoutHandler(c echo.Context) error {
	if err := a.auth.Logout(c.Request().Context(), currentUser(c).ID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ServerTokenHandler mints a non-expiring machine token. Admin only.
func (a *IdentityAPI) ServerTokenHandler(c echo.Context) error {
	var req serverTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if req.UserID == "" {
		req.UserID = currentUser(c).ID
	}

	token, err := a.auth.ServerToken(c.Request().Context(), req.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"accessToken": token})
}
