package payment

import (
	"context"

	"github.com/socialkit-dev/identity/domain"
)

// CreateOrderRequest is the gateway-neutral order creation input. Amount is
// in the currency's smallest unit.
type CreateOrderRequest struct {
	Receipt       string
	Amount        int64
	Currency      string
	CustomerID    string
	CustomerEmail string
	CustomerPhone string
}

// GatewayOrder is what a gateway hands back on order creation.
// PaymentSessionID is only set by gateways whose checkout needs it (Cashfree).
type GatewayOrder struct {
	OrderID          string
	PaymentSessionID string
}

// Gateway creates orders against one payment provider.
type Gateway interface {
	Name() domain.Gateway
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error)
}
