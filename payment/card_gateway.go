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

// GatewayError is a payment provider's own error, surfaced verbatim when
// the provider sent a message and as a generic failure otherwise.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "payment gateway request failed"
}

// CardSessionRequest is the payload for the card gateway's create-session
// call. OrderID is the per-attempt session id; it is never reused.
type CardSessionRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	OrderID       string          `json:"orderId"`
	Description   string          `json:"description"`
}

// CardSession is the decoded create-session result.
type CardSession struct {
	RedirectURL string
}

// CardStatus is the decoded payment-status result.
type CardStatus struct {
	Status    string
	PaymentID string
	Reason    string
}

// CardGateway is the redirect-flow payment provider: the client is handed
// off to RedirectURL and comes back with an opaque reference to verify.
type CardGateway interface {
	CreateSession(ctx context.Context, req CardSessionRequest) (*CardSession, error)
	CheckStatus(ctx context.Context, orderRef string) (*CardStatus, error)
}

// HTTPCardGateway talks to the card gateway's HTTP API.
type HTTPCardGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPCardGateway creates a gateway client with a bounded request timeout.
func NewHTTPCardGateway(baseURL, apiKey string, timeout time.Duration) *HTTPCardGateway {
	return &HTTPCardGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Ensure HTTPCardGateway implements CardGateway
var _ CardGateway = (*HTTPCardGateway)(nil)

// CreateSession opens a hosted payment session and returns the redirect URL.
func (g *HTTPCardGateway) CreateSession(ctx context.Context, req CardSessionRequest) (*CardSession, error) {
	var resp struct {
		RedirectURL string `json:"redirect_url"`
		Message     string `json:"message"`
	}
	if err := g.post(ctx, "/v1/session", req, &resp); err != nil {
		return nil, err
	}
	if resp.RedirectURL == "" {
		return nil, &GatewayError{Message: resp.Message, Code: "missing_redirect_url"}
	}
	return &CardSession{RedirectURL: resp.RedirectURL}, nil
}

// CheckStatus asks the gateway for the final state of a payment session.
func (g *HTTPCardGateway) CheckStatus(ctx context.Context, orderRef string) (*CardStatus, error) {
	body := map[string]string{"orderId": orderRef}
	var resp struct {
		Status    string `json:"status"`
		PaymentID string `json:"payment_id"`
		Reason    string `json:"reason"`
	}
	if err := g.post(ctx, "/v1/status", body, &resp); err != nil {
		return nil, err
	}
	return &CardStatus{Status: resp.Status, PaymentID: resp.PaymentID, Reason: resp.Reason}, nil
}

func (g *HTTPCardGateway) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("card gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		return &GatewayError{
			Code:    fmt.Sprintf("http_%d", resp.StatusCode),
			Message: errBody.Message,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
