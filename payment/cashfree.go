package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/socialkit-dev/identity/domain"
)

// Overridable in tests. Production uses https://api.cashfree.com,
// sandbox https://sandbox.cashfree.com.
var CashfreeBaseURL = "https://api.cashfree.com"

const cashfreeAPIVersion = "2023-08-01"

// CashfreeGateway creates orders via the Cashfree PG Orders API.
type CashfreeGateway struct {
	clientID     string
	clientSecret string
	client       *http.Client
}

func NewCashfreeGateway(clientID, clientSecret string) *CashfreeGateway {
	return &CashfreeGateway{
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       http.DefaultClient,
	}
}

func (g *CashfreeGateway) Name() domain.Gateway {
	return domain.GatewayCashfree
}

func (g *CashfreeGateway) CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error) {
	// Cashfree takes the amount in currency units, not subunits.
	payload, err := json.Marshal(map[string]any{
		"order_id":       req.Receipt,
		"order_amount":   float64(req.Amount) / 100,
		"order_currency": req.Currency,
		"customer_details": map[string]string{
			"customer_id":    req.CustomerID,
			"customer_email": req.CustomerEmail,
			"customer_phone": req.CustomerPhone,
		},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		CashfreeBaseURL+"/pg/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-version", cashfreeAPIVersion)
	httpReq.Header.Set("x-client-id", g.clientID)
	httpReq.Header.Set("x-client-secret", g.clientSecret)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("cashfree order creation failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cashfree order creation returned status %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		OrderID          string `json:"order_id"`
		PaymentSessionID string `json:"payment_session_id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("malformed cashfree order response: %w", err)
	}
	return &GatewayOrder{OrderID: out.OrderID, PaymentSessionID: out.PaymentSessionID}, nil
}
