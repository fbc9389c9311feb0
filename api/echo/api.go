// Package echo exposes the identity service over HTTP.
package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/socialkit-dev/identity/domain"
	"github.com/socialkit-dev/identity/internal/realtime"
	"github.com/socialkit-dev/identity/payment"
	"github.com/socialkit-dev/identity/services"
)

// WebhookSecrets holds the per-gateway webhook signing secrets.
type WebhookSecrets struct {
	Razorpay string
	Cashfree string
}

// IdentityAPI wires the service layer to HTTP routes.
type IdentityAPI struct {
	auth     *services.AuthService
	users    *services.UserService
	links    *services.LinkService
	payments *payment.Service
	hub      *realtime.Hub
	secrets  WebhookSecrets
}

func NewIdentityAPI(
	auth *services.AuthService,
	users *services.UserService,
	links *services.LinkService,
	payments *payment.Service,
	hub *realtime.Hub,
	secrets WebhookSecrets,
) *IdentityAPI {
	return &IdentityAPI{
		auth:     auth,
		users:    users,
		links:    links,
		payments: payments,
		hub:      hub,
		secrets:  secrets,
	}
}

// RegisterRoutes registers all routes on the Echo instance.
func (a *IdentityAPI) RegisterRoutes(e *echo.Echo) {
	e.Use(middleware.Recover())

	e.POST("/auth/register", a.RegisterHandler)
	e.POST("/auth/login", a.LoginHandler)
	e.POST("/auth/refresh", a.RefreshHandler)
	e.GET("/auth/verify", a.VerifyHandler, a.RequireAuth)
	e.POST("/auth/logout", a.LogoutHandler, a.RequireAuth)
	e.POST("/auth/server-token", a.ServerTokenHandler, a.RequireAuth, a.RequireAdmin)

	e.GET("/connect/:provider", a.InitiateLinkHandler, a.RequireAuth)
	// The provider redirects the browser here; no bearer token is present.
	e.GET("/connect/:provider/callback", a.LinkCallbackHandler)
	e.DELETE("/connect/:provider", a.DisconnectHandler, a.RequireAuth)

	e.GET("/users", a.ListUsersHandler, a.RequireAuth, a.RequireAdmin)
	e.GET("/users/:id", a.GetUserHandler, a.RequireAuth, a.RequireSelfOrAdmin)
	e.PATCH("/users/:id", a.UpdateUserHandler, a.RequireAuth, a.RequireSelfOrAdmin)
	e.GET("/users/:id/accounts", a.ListAccountsHandler, a.RequireAuth, a.RequireSelfOrAdmin)

	// Websocket upgrade; the access token travels as a query parameter.
	e.GET("/realtime/chat", a.ChatSocketHandler)

	e.POST("/orders", a.CreateOrderHandler, a.RequireAuth)
	e.POST("/webhooks/razorpay", a.RazorpayWebhookHandler)
	e.POST("/webhooks/cashfree", a.CashfreeWebhookHandler)
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels to HTTP status codes.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEntity),
		errors.Is(err, domain.ErrAlreadyConnected):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidRefreshToken):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotConnected):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamProvider):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
		return c.JSON(status, errorResponse{Error: "internal server error"})
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}
