// Package payment abstracts the charge step of pay_now registrations. The
// gateway client talks to a real acquirer; the stub completes instantly and
// is the default, since settlement is out of scope for this deployment.
package payment

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/mun-hub/munhub/internal/config"
)

type Processor interface {
	Charge(ctx context.Context, registrationID string, amount float64, currency string) error
}

type GatewayClient struct {
	client *resty.Client
}

func NewGatewayClient(cfg *config.Config) *GatewayClient {
	return &GatewayClient{
		client: resty.New().
			SetBaseURL(fmt.Sprintf("https://%s", cfg.PaymentGatewayHost)).
			SetAuthToken(cfg.PaymentGatewayKey),
	}
}

func (g *GatewayClient) Charge(ctx context.Context, registrationID string, amount float64, currency string) error {
	type chargeRequest struct {
		Reference string  `json:"reference"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
	}
	type chargeResponse struct {
		Status string `json:"status"`
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(&chargeRequest{
			Reference: registrationID,
			Amount:    amount,
			Currency:  currency,
		}).
		SetResult(&chargeResponse{}).
		Post("/charges")
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d %s", resp.StatusCode(), string(resp.Body()))
	}

	if result := resp.Result().(*chargeResponse); result.Status != "succeeded" {
		return fmt.Errorf("charge %s: %s", registrationID, result.Status)
	}

	return nil
}

// Stub succeeds (or fails with Err) without any I/O.
type Stub struct {
	Err     error
	Charges []string
}

func (s *Stub) Charge(_ context.Context, registrationID string, _ float64, _ string) error {
	if s.Err != nil {
		return s.Err
	}
	s.Charges = append(s.Charges, registrationID)
	return nil
}
