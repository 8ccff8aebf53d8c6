// Package payments adapts the external payment service's confirmation
// endpoint to the PaymentGateway port. The provider protocol (Razorpay,
// Stripe checkout flows) lives entirely in that service; this side only
// reads the resulting signal.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/order"
)

// DefaultTimeout bounds one status lookup.
const DefaultTimeout = 5 * time.Second

// ServiceGateway reads payment confirmation from the payment service over
// HTTP: GET {base}/payments/{orderID}/status yields {"status": "paid"}.
type ServiceGateway struct {
	baseURL string
	client  *http.Client
}

// NewServiceGateway creates a gateway against the given payment service
// base URL.
func NewServiceGateway(baseURL string) *ServiceGateway {
	return &ServiceGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
}

// Status returns the payment confirmation signal for an order.
func (g *ServiceGateway) Status(ctx context.Context, orderID kernel.UUID) (order.PaymentStatus, error) {
	endpoint := fmt.Sprintf("%s/payments/%s/status", g.baseURL, url.PathEscape(orderID.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return order.PaymentUnknown, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return order.PaymentUnknown, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No payment record means the checkout never completed.
		return order.PaymentPending, nil
	}
	if resp.StatusCode != http.StatusOK {
		return order.PaymentUnknown, fmt.Errorf("payment service returned %d", resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return order.PaymentUnknown, err
	}

	return order.ParsePaymentStatus(body.Status)
}
