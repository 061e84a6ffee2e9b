package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"shawarma-station-me/models"
	"shawarma-station-me/repository"
)

// Finalizer errors surfaced to the return-path controller.
var (
	ErrMissingReference       = errors.New("payment reference is missing")
	ErrVerificationInProgress = errors.New("payment verification already in progress")
	ErrPendingOrderMissing    = errors.New("no pending order found for this payment")
	ErrSessionMismatch        = errors.New("payment reference belongs to a different checkout attempt")
)

// PaymentDeclinedError means the gateway reported a non-success final state.
// The customer paid nothing; the checkout can simply be retried.
type PaymentDeclinedError struct {
	Status string
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("payment not completed (status %q): %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("payment not completed (status %q)", e.Status)
}

// ConsistencyError means money moved but the order record could not be
// created. It must never be presented as an ordinary decline; support needs
// the payment id to reconcile manually.
type ConsistencyError struct {
	PaymentID string
	Err       error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("payment %s succeeded but order creation failed: %v", e.PaymentID, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }

// successStatuses are the gateway states accepted as a completed payment.
// Anything else, known or unknown, is treated as not-paid.
var successStatuses = map[string]bool{
	"settled":    true,
	"success":    true,
	"successful": true,
	"completed":  true,
	"paid":       true,
	"captured":   true,
	"approved":   true,
}

// Finalizer turns a gateway return reference into a created order. It is
// the only consumer of the pending-order stash: verify the payment, load
// the stash, create the order, then clear cart and stash.
type Finalizer struct {
	card    CardGateway
	pending repository.PendingOrderRepositoryInterface
	orders  repository.OrderRepositoryInterface
	carts   repository.CartRepositoryInterface

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewFinalizer wires the finalizer to the card gateway and repositories.
func NewFinalizer(
	card CardGateway,
	pending repository.PendingOrderRepositoryInterface,
	orders repository.OrderRepositoryInterface,
	carts repository.CartRepositoryInterface,
) *Finalizer {
	return &Finalizer{
		card:     card,
		pending:  pending,
		orders:   orders,
		carts:    carts,
		inFlight: make(map[string]bool),
	}
}

// Finalize verifies the payment behind ref and creates the order from the
// stashed pending order. A second call for the same ref while the first is
// still running is rejected before any gateway call; the latch is taken
// synchronously so concurrent returns cannot both pass it.
func (f *Finalizer) Finalize(ctx context.Context, userID, ref string) (*models.Order, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, ErrMissingReference
	}

	f.mu.Lock()
	if f.inFlight[ref] {
		f.mu.Unlock()
		log.Printf("⚠️  Finalize: verification already running for ref=%s", ref)
		return nil, ErrVerificationInProgress
	}
	f.inFlight[ref] = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		delete(f.inFlight, ref)
		f.mu.Unlock()
	}()

	status, err := f.card.CheckStatus(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if !successStatuses[strings.ToLower(status.Status)] {
		log.Printf("❌ Finalize: payment not completed ref=%s status=%s", ref, status.Status)
		return nil, &PaymentDeclinedError{Status: status.Status, Reason: status.Reason}
	}

	po, err := f.pending.Load(ctx, PendingKey(userID))
	if err != nil {
		if errors.Is(err, repository.ErrPendingOrderNotFound) {
			// Paid but nothing to build the order from. Same severity as a
			// failed insert: the payment id must reach support.
			log.Printf("❌ Finalize: payment %s verified but pending order missing for user=%s", status.PaymentID, userID)
			return nil, &ConsistencyError{PaymentID: status.PaymentID, Err: ErrPendingOrderMissing}
		}
		return nil, fmt.Errorf("failed to load pending order: %w", err)
	}

	// Save overwrites the single stash key, so a late return from a
	// superseded attempt could otherwise consume the newer stash under the
	// old payment id. The stash stays in place for the matching attempt.
	if po.SessionID != ref {
		log.Printf("❌ Finalize: payment %s verified but ref=%s does not match stashed session=%s for user=%s", status.PaymentID, ref, po.SessionID, userID)
		return nil, &ConsistencyError{PaymentID: status.PaymentID, Err: ErrSessionMismatch}
	}

	order := orderFromPending(po, status.PaymentID)
	created, err := f.orders.Create(ctx, order)
	if err != nil {
		return nil, &ConsistencyError{PaymentID: status.PaymentID, Err: err}
	}

	// Cleanup failures do not fail the finalization; the order exists and
	// the stash upsert makes a leftover pending order harmless.
	if err := f.carts.ClearCart(ctx, userID); err != nil {
		log.Printf("⚠️  Finalize: failed to clear cart for user=%s: %v", userID, err)
	}
	if err := f.pending.Delete(ctx, PendingKey(userID)); err != nil {
		log.Printf("⚠️  Finalize: failed to delete pending order for user=%s: %v", userID, err)
	}

	log.Printf("✅ Finalize: order id=%d created for user=%s payment=%s", created.ID, userID, status.PaymentID)
	return created, nil
}
