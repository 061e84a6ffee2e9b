package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"shawarma-station-me/checkout"
	"shawarma-station-me/models"
	"shawarma-station-me/payment"
)

// CheckoutController handles HTTP requests for the checkout flow: quoting,
// validation, and both payment protocols.
type CheckoutController struct {
	orchestrator *payment.Orchestrator
	finalizer    *payment.Finalizer
}

// NewCheckoutController creates a new CheckoutController
func NewCheckoutController(orchestrator *payment.Orchestrator, finalizer *payment.Finalizer) *CheckoutController {
	return &CheckoutController{
		orchestrator: orchestrator,
		finalizer:    finalizer,
	}
}

// quoteResponse pairs the price breakdown with the validation verdict so
// the client can render both from one call.
type quoteResponse struct {
	Summary    models.OrderSummary       `json:"summary"`
	Validation checkout.ValidationResult `json:"validation"`
}

// Quote handles POST /checkout/quote
// Example request:
// POST /checkout/quote
// {
//   "userId": "u-103",
//   "orderType": "delivery",
//   "areaId": 4,
//   "paymentMethod": "card",
//   "details": {"name": "Omar Haddad", "phone": "+962791234567"}
// }
// Example response:
// {
//   "summary": {"subtotal": "12", "originalSubtotal": "12", "savings": "0", "deliveryCost": "2", "total": "14"},
//   "validation": {"isValid": true, "errors": null}
// }
func (c *CheckoutController) Quote(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Quote: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ Quote: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Quote: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		log.Printf("❌ Quote: userId is required")
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	summary, validation, err := c.orchestrator.Quote(ctx, req)
	if err != nil {
		log.Printf("❌ Quote: Error computing quote: %v", err)
		http.Error(w, fmt.Sprintf("Failed to compute quote: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Quote: user=%s total=%s valid=%t", req.UserID, summary.Total, validation.IsValid)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(quoteResponse{Summary: summary, Validation: validation}); err != nil {
		log.Printf("❌ Quote: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// CreateCardSession handles POST /checkout/card/session
// Example request:
// POST /checkout/card/session
// {
//   "userId": "u-103",
//   "orderType": "pickup",
//   "paymentMethod": "card",
//   "details": {"name": "Omar Haddad", "phone": "+962791234567"}
// }
// Example response:
// {
//   "redirectUrl": "https://gateway.example/pay/sess_18271"
// }
func (c *CheckoutController) CreateCardSession(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 CreateCardSession: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ CreateCardSession: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Read body for logging
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("❌ CreateCardSession: Failed to read request body: %v", err)
		http.Error(w, fmt.Sprintf("Failed to read request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	log.Printf("📋 CreateCardSession: Request body: %s", string(bodyBytes))
	r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ CreateCardSession: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		log.Printf("❌ CreateCardSession: userId is required")
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	redirectURL, err := c.orchestrator.StartCardPayment(ctx, req)
	if err != nil {
		writePaymentError(w, "CreateCardSession", err)
		return
	}

	log.Printf("✅ CreateCardSession: Redirecting user=%s to gateway", req.UserID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := map[string]string{"redirectUrl": redirectURL}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ CreateCardSession: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// CardReturn handles GET /checkout/card/return?userId=u-103&ref=sess_18271
// This is the gateway's return URL: the reference is verified with the
// gateway and, on success, the stashed pending order becomes a real order.
// Example response:
// {
//   "id": 12,
//   "userId": "u-103",
//   "status": "processing",
//   "payment": {"method": "card", "status": "paid", "transactionRef": "pay_8841"}
// }
func (c *CheckoutController) CardReturn(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 CardReturn: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ CardReturn: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("userId")
	if strings.TrimSpace(userID) == "" {
		log.Printf("❌ CardReturn: userId is required")
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}
	ref := r.URL.Query().Get("ref")

	ctx := context.Background()
	order, err := c.finalizer.Finalize(ctx, userID, ref)
	if err != nil {
		writePaymentError(w, "CardReturn", err)
		return
	}

	log.Printf("✅ CardReturn: Order id=%d finalized for user=%s", order.ID, userID)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(order); err != nil {
		log.Printf("❌ CardReturn: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// InitiateCliq handles POST /checkout/cliq/initiate
// Starts the OTP challenge: the provider texts a code to the customer.
// Example response:
// {
//   "step": "otp_sent",
//   "resendAfterSeconds": 30
// }
func (c *CheckoutController) InitiateCliq(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 InitiateCliq: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ InitiateCliq: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ InitiateCliq: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		log.Printf("❌ InitiateCliq: userId is required")
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	if err := c.orchestrator.InitiateCliq(ctx, req); err != nil {
		writePaymentError(w, "InitiateCliq", err)
		return
	}

	wait := c.orchestrator.ResendWait(req.UserID)

	log.Printf("✅ InitiateCliq: OTP sent for user=%s", req.UserID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := map[string]interface{}{
		"step":               string(checkout.StepOTPSent),
		"resendAfterSeconds": int(wait.Seconds()),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ InitiateCliq: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ConfirmCliq handles POST /checkout/cliq/confirm
// Completes the challenge with the OTP; on success the order is created
// immediately and returned.
// Example request:
// POST /checkout/cliq/confirm
// {
//   "userId": "u-103",
//   "orderType": "pickup",
//   "paymentMethod": "cliq",
//   "details": {"name": "Omar Haddad", "phone": "+962791234567"},
//   "otp": "482913"
// }
func (c *CheckoutController) ConfirmCliq(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ConfirmCliq: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ ConfirmCliq: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ ConfirmCliq: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		log.Printf("❌ ConfirmCliq: userId is required")
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	order, err := c.orchestrator.ConfirmCliq(ctx, req)
	if err != nil {
		writePaymentError(w, "ConfirmCliq", err)
		return
	}

	log.Printf("✅ ConfirmCliq: Order id=%d created for user=%s", order.ID, req.UserID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(order); err != nil {
		log.Printf("❌ ConfirmCliq: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// writePaymentError maps orchestrator and finalizer errors to HTTP
// responses. Validation failures return the structured error list;
// consistency failures keep the payment id in the message so support can
// act on it.
func writePaymentError(w http.ResponseWriter, op string, err error) {
	log.Printf("❌ %s: %v", op, err)

	var validationErr *payment.ValidationFailedError
	if errors.As(err, &validationErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(validationErr.Result)
		return
	}

	var declined *payment.PaymentDeclinedError
	if errors.As(err, &declined) {
		http.Error(w, declined.Error(), http.StatusPaymentRequired)
		return
	}

	var consistency *payment.ConsistencyError
	if errors.As(err, &consistency) {
		http.Error(w, consistency.Error(), http.StatusInternalServerError)
		return
	}

	var gateway *payment.GatewayError
	if errors.As(err, &gateway) {
		http.Error(w, gateway.Error(), http.StatusBadGateway)
		return
	}

	switch {
	case errors.Is(err, payment.ErrSubmissionInFlight),
		errors.Is(err, payment.ErrVerificationInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, payment.ErrResendCooldown):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, payment.ErrNoActiveChallenge),
		errors.Is(err, payment.ErrStaleChallenge),
		errors.Is(err, payment.ErrMissingReference):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, fmt.Sprintf("Payment operation failed: %v", err), http.StatusInternalServerError)
	}
}
