package domain

import "time"

// Gateway identifies a payment gateway.
type Gateway string

const (
	GatewayRazorpay Gateway = "razorpay"
	GatewayCashfree Gateway = "cashfree"
)

// OrderStatus tracks a payment order through its gateway lifecycle.
type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "CREATED"
	OrderStatusAuthorized OrderStatus = "AUTHORIZED"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusFailed     OrderStatus = "FAILED"
	OrderStatusDropped    OrderStatus = "DROPPED"
)

// PaymentOrder is a locally tracked gateway order. Amount is in the currency's
// smallest unit (paise for INR).
type PaymentOrder struct {
	ID             string      `bson:"_id,omitempty"`
	UserID         string      `bson:"user_id"`
	Gateway        Gateway     `bson:"gateway"`
	GatewayOrderID string      `bson:"gateway_order_id"`
	ProductID      string      `bson:"product_id"`
	Receipt        string      `bson:"receipt"`
	Amount         int64       `bson:"amount"`
	Currency       string      `bson:"currency"`
	Status         OrderStatus `bson:"status"`
	CreatedAt      time.Time   `bson:"created_at"`
	UpdatedAt      time.Time   `bson:"updated_at"`
}
