package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/socialkit-dev/identity/services"
)

// InitiateLinkHandler starts a provider authorization flow and redirects the
// browser to the provider's consent screen.
func (a *IdentityAPI) InitiateLinkHandler(c echo.Context) error {
	authURL, err := a.links.InitiateLink(c.Request().Context(), currentUser(c).ID, c.Param("provider"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Redirect(http.StatusFound, authURL)
}

// LinkCallbackHandler receives the provider redirect. It always answers with
// a redirect to the client app, success or not, so the browser never lands on
// an API error page.
func (a *IdentityAPI) LinkCallbackHandler(c echo.Context) error {
	redirect := a.links.CompleteLink(c.Request().Context(), c.Param("provider"), services.CallbackParams{
		State:         c.QueryParam("state"),
		Code:          c.QueryParam("code"),
		OAuthToken:    c.QueryParam("oauth_token"),
		OAuthVerifier: c.QueryParam("oauth_verifier"),
	})
	return c.Redirect(http.StatusFound, redirect)
}

// DisconnectHandler removes a linked provider account.
func (a *IdentityAPI) DisconnectHandler(c echo.Context) error {
	if err := a.links.Disconnect(c.Request().Context(), currentUser(c).ID, c.Param("provider")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
