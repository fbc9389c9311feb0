package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/socialkit-dev/identity/domain"
)

// Product is one purchasable item. Amount is in the currency's smallest unit.
type Product struct {
	ID       string
	Name     string
	Amount   int64
	Currency string
}

// OrderResult pairs the locally persisted order with the gateway's checkout
// handle.
type OrderResult struct {
	Order            *domain.PaymentOrder
	PaymentSessionID string
}

// Service creates orders against a configured gateway and applies webhook
// events to the local order ledger.
type Service struct {
	orderRepo domain.OrderRepository
	userRepo  domain.UserRepository
	gateways  map[domain.Gateway]Gateway
	catalog   map[string]Product
}

func NewService(orderRepo domain.OrderRepository, userRepo domain.UserRepository, products []Product) *Service {
	catalog := make(map[string]Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}
	return &Service{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		gateways:  make(map[domain.Gateway]Gateway),
		catalog:   catalog,
	}
}

// RegisterGateway makes a gateway available for order creation.
func (s *Service) RegisterGateway(g Gateway) {
	s.gateways[g.Name()] = g
}

// CreateOrder creates a gateway order for a catalog product and records it
// locally with status CREATED.
func (s *Service) CreateOrder(ctx context.Context, userID, productID string, gatewayName domain.Gateway) (*OrderResult, error) {
	product, ok := s.catalog[productID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown product %q", domain.ErrNotFound, productID)
	}
	gateway, ok := s.gateways[gatewayName]
	if !ok {
		return nil, fmt.Errorf("%w: gateway %q is not configured", domain.ErrNotFound, gatewayName)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	receipt := "rcpt_" + uuid.NewString()
	gwOrder, err := gateway.CreateOrder(ctx, CreateOrderRequest{
		Receipt:       receipt,
		Amount:        product.Amount,
		Currency:      product.Currency,
		CustomerID:    user.ID,
		CustomerEmail: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamProvider, err)
	}

	order := &domain.PaymentOrder{
		UserID:         user.ID,
		Gateway:        gatewayName,
		GatewayOrderID: gwOrder.OrderID,
		ProductID:      product.ID,
		Receipt:        receipt,
		Amount:         product.Amount,
		Currency:       product.Currency,
		Status:         domain.OrderStatusCreated,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return &OrderResult{Order: order, PaymentSessionID: gwOrder.PaymentSessionID}, nil
}

// HandleEvent applies a parsed, signature-verified webhook event to the
// order it references. Events for unknown orders are logged and dropped so
// the gateway does not retry them forever.
func (s *Service) HandleEvent(ctx context.Context, ev *Event) error {
	status, ok := ev.Type.StatusFor()
	if !ok {
		log.Debug().
			Str("gateway", string(ev.Gateway)).
			Str("type", string(ev.Type)).
			Msg("Ignoring webhook event")
		return nil
	}
	if ev.GatewayOrderID == "" {
		return errors.New("webhook event carries no order id")
	}

	err := s.orderRepo.UpdateStatus(ctx, ev.GatewayOrderID, status)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().
			Str("gateway", string(ev.Gateway)).
			Str("gateway_order_id", ev.GatewayOrderID).
			Msg("Webhook event references unknown order")
		return nil
	}
	return err
}
