package echo

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/socialkit-dev/identity/domain"
	"github.com/socialkit-dev/identity/payment"
)

// CreateOrderHandler creates a gateway order for a catalog product.
func (a *IdentityAPI) CreateOrderHandler(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}

	var gateway domain.Gateway
	switch req.Gateway {
	case string(domain.GatewayRazorpay):
		gateway = domain.GatewayRazorpay
	case string(domain.GatewayCashfree):
		gateway = domain.GatewayCashfree
	default:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "gateway must be razorpay or cashfree"})
	}

	result, err := a.payments.CreateOrder(c.Request().Context(), currentUser(c).ID, req.ProductID, gateway)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, orderView{
		ID:               result.Order.ID,
		Gateway:          result.Order.Gateway,
		GatewayOrderID:   result.Order.GatewayOrderID,
		ProductID:        result.Order.ProductID,
		Receipt:          result.Order.Receipt,
		Amount:           result.Order.Amount,
		Currency:         result.Order.Currency,
		Status:           result.Order.Status,
		PaymentSessionID: result.PaymentSessionID,
	})
}

// RazorpayWebhookHandler verifies and applies a Razorpay notification. The
// signature covers the raw body, so the body is read before any decoding.
func (a *IdentityAPI) RazorpayWebhookHandler(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "unreadable body"})
	}

	signature := c.Request().Header.Get("X-Razorpay-Signature")
	if err := payment.VerifyRazorpaySignature(body, signature, a.secrets.Razorpay); err != nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
	}

	ev, err := payment.ParseRazorpayEvent(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed webhook body"})
	}
	if err := a.payments.HandleEvent(c.Request().Context(), ev); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// CashfreeWebhookHandler verifies and applies a Cashfree notification.
func (a *IdentityAPI) CashfreeWebhookHandler(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "unreadable body"})
	}

	timestamp := c.Request().Header.Get("x-webhook-timestamp")
	signature := c.Request().Header.Get("x-webhook-signature")
	if err := payment.VerifyCashfreeSignature(body, timestamp, signature, a.secrets.Cashfree); err != nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
	}

	ev, err := payment.ParseCashfreeEvent(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed webhook body"})
	}
	if err := a.payments.HandleEvent(c.Request().Context(), ev); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusOK)
}
