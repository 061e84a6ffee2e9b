package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// CliqGateway is the challenge-flow payment provider: a debit is initiated
// against a mobile number, the provider sends an OTP out of band, and the
// debit is confirmed with that OTP. No redirect, no persistence.
type CliqGateway interface {
	Initiate(ctx context.Context, amount decimal.Decimal, mobile string) error
	Confirm(ctx context.Context, amount decimal.Decimal, mobile, otp string) (string, error)
}

// cliqEnvelope is the provider's response wrapper. The embedded ErrorObj is
// authoritative: an ErrorCode other than "0" is a failure even when the
// HTTP status is 200.
type cliqEnvelope struct {
	ErrorObj struct {
		ErrorCode    string `json:"ErrorCode"`
		ErrorMessage string `json:"ErrorMessage"`
	} `json:"ErrorObj"`
	TransactionID string `json:"TransactionId"`
}

func (e *cliqEnvelope) err() error {
	if e.ErrorObj.ErrorCode != "" && e.ErrorObj.ErrorCode != "0" {
		return &GatewayError{Code: e.ErrorObj.ErrorCode, Message: e.ErrorObj.ErrorMessage}
	}
	return nil
}

// HTTPCliqGateway talks to the CliQ debit API.
type HTTPCliqGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPCliqGateway creates a gateway client with a bounded request timeout.
func NewHTTPCliqGateway(baseURL, apiKey string, timeout time.Duration) *HTTPCliqGateway {
	return &HTTPCliqGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Ensure HTTPCliqGateway implements CliqGateway
var _ CliqGateway = (*HTTPCliqGateway)(nil)

// Initiate starts a debit: the provider texts an OTP to the mobile number.
func (g *HTTPCliqGateway) Initiate(ctx context.Context, amount decimal.Decimal, mobile string) error {
	body := map[string]interface{}{
		"amount": amount,
		"mobile": mobile,
	}
	env, err := g.post(ctx, "/debit/initiate", body)
	if err != nil {
		return err
	}
	return env.err()
}

// Confirm completes the debit with the OTP and returns the provider's
// transaction reference.
func (g *HTTPCliqGateway) Confirm(ctx context.Context, amount decimal.Decimal, mobile, otp string) (string, error) {
	body := map[string]interface{}{
		"amount": amount,
		"mobile": mobile,
		"otp":    otp,
	}
	env, err := g.post(ctx, "/debit/confirm", body)
	if err != nil {
		return "", err
	}
	if err := env.err(); err != nil {
		return "", err
	}
	return env.TransactionID, nil
}

func (g *HTTPCliqGateway) post(ctx context.Context, path string, body interface{}) (*cliqEnvelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cliq gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{Code: fmt.Sprintf("http_%d", resp.StatusCode)}
	}

	var env cliqEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return &env, nil
}
