// Package payment implements gateway order creation and webhook handling
// for Razorpay and Cashfree.
package payment

import (
	"encoding/json"
	"fmt"

	"github.com/socialkit-dev/identity/domain"
)

// Event is the normalized form of one gateway webhook notification. Exactly
// one of the gateway payloads is populated, matching Gateway.
type Event struct {
	Gateway        domain.Gateway
	Type           EventType
	GatewayOrderID string
}

// EventType classifies a webhook notification independent of the gateway's
// own event naming.
type EventType string

const (
	EventOrderAuthorized EventType = "order.authorized"
	EventOrderPaid       EventType = "order.paid"
	EventOrderFailed     EventType = "order.failed"
	EventOrderDropped    EventType = "order.dropped"
	// EventIgnored marks notifications this service does not act on.
	EventIgnored EventType = "ignored"
)

// StatusFor maps an event type to the order status it implies. The ok result
// is false for events that do not change order state.
func (t EventType) StatusFor() (domain.OrderStatus, bool) {
	switch t {
	case EventOrderAuthorized:
		return domain.OrderStatusAuthorized, true
	case EventOrderPaid:
		return domain.OrderStatusPaid, true
	case EventOrderFailed:
		return domain.OrderStatusFailed, true
	case EventOrderDropped:
		return domain.OrderStatusDropped, true
	}
	return "", false
}

// razorpayWebhook is the envelope Razorpay posts. The order id lives in the
// payment entity for payment.* events and in the order entity for order.*.
type razorpayWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// ParseRazorpayEvent decodes a verified Razorpay webhook body.
func ParseRazorpayEvent(body []byte) (*Event, error) {
	var wh razorpayWebhook
	if err := json.Unmarshal(body, &wh); err != nil {
		return nil, fmt.Errorf("malformed razorpay webhook body: %w", err)
	}

	ev := &Event{Gateway: domain.GatewayRazorpay}
	switch wh.Event {
	case "payment.authorized":
		ev.Type = EventOrderAuthorized
		ev.GatewayOrderID = wh.Payload.Payment.Entity.OrderID
	case "payment.captured":
		ev.Type = EventOrderPaid
		ev.GatewayOrderID = wh.Payload.Payment.Entity.OrderID
	case "payment.failed":
		ev.Type = EventOrderFailed
		ev.GatewayOrderID = wh.Payload.Payment.Entity.OrderID
	case "order.paid":
		ev.Type = EventOrderPaid
		ev.GatewayOrderID = wh.Payload.Order.Entity.ID
	default:
		ev.Type = EventIgnored
	}
	return ev, nil
}

// cashfreeWebhook is the envelope Cashfree posts.
type cashfreeWebhook struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
	} `json:"data"`
}

// ParseCashfreeEvent decodes a verified Cashfree webhook body.
func ParseCashfreeEvent(body []byte) (*Event, error) {
	var wh cashfreeWebhook
	if err := json.Unmarshal(body, &wh); err != nil {
		return nil, fmt.Errorf("malformed cashfree webhook body: %w", err)
	}

	ev := &Event{
		Gateway:        domain.GatewayCashfree,
		GatewayOrderID: wh.Data.Order.OrderID,
	}
	switch wh.Type {
	case "PAYMENT_SUCCESS_WEBHOOK":
		ev.Type = EventOrderPaid
	case "PAYMENT_FAILED_WEBHOOK":
		ev.Type = EventOrderFailed
	case "PAYMENT_USER_DROPPED_WEBHOOK":
		ev.Type = EventOrderDropped
	default:
		ev.Type = EventIgnored
	}
	return ev, nil
}
