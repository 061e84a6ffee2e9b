package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shawarma-station-me/checkout"
	"shawarma-station-me/models"
	"shawarma-station-me/pricing"
	"shawarma-station-me/repository"
	"shawarma-station-me/utils"
)

// Orchestrator-level errors. Gateway errors pass through as *GatewayError.
var (
	ErrSubmissionInFlight = errors.New("a payment submission is already in progress")
	ErrResendCooldown     = errors.New("otp resend not available yet")
	ErrNoActiveChallenge  = errors.New("no otp challenge is active")
	ErrStaleChallenge     = errors.New("challenge flow is no longer active")
)

// ValidationFailedError carries the structured validation result up to the
// HTTP boundary. Validation failures are expected and user-correctable;
// they never reach a gateway.
type ValidationFailedError struct {
	Result checkout.ValidationResult
}

func (e *ValidationFailedError) Error() string {
	codes := make([]string, len(e.Result.Errors))
	for i, c := range e.Result.Errors {
		codes[i] = string(c)
	}
	return "checkout validation failed: " + strings.Join(codes, ", ")
}

// Config holds the orchestrator's tunables.
type Config struct {
	MaxAmount      decimal.Decimal // upper bound accepted by the gateways
	TestAmount     decimal.Decimal // fixed total charged in test mode
	TestMode       bool
	ResendCooldown time.Duration // delay before another OTP may be requested
	StoreName      string        // used in the gateway order description
}

// PendingKey returns the single well-known pending-order storage key for a
// checkout scope. One key per user: a new attempt overwrites the previous
// stash, and the finalizer consumes it exactly once.
func PendingKey(userID string) string {
	return "pending_order:" + userID
}

// cliqAttempt is the server-side state of one challenge flow. It only
// exists between initiate and confirm. The attempt id ties gateway calls
// and log lines of one flow together.
type cliqAttempt struct {
	id       string
	step     checkout.CliqStep
	mobile   string
	amount   decimal.Decimal
	resendAt time.Time
	payload  models.PendingOrder // order-to-be-created, never persisted for cliq
}

// Orchestrator drives both payment protocols behind one interface. The
// redirect (card) flow stashes a PendingOrder and hands the client off to
// the gateway; the challenge (CliQ) flow runs a local state machine and
// creates the order directly once the debit is confirmed.
type Orchestrator struct {
	card      CardGateway
	cliq      CliqGateway
	pending   repository.PendingOrderRepositoryInterface
	orders    repository.OrderRepositoryInterface
	carts     repository.CartRepositoryInterface
	products  repository.ProductRepositoryInterface
	locations repository.LocationRepositoryInterface
	cfg       Config
	now       func() time.Time

	mu         sync.Mutex
	submitting map[string]bool
	attempts   map[string]*cliqAttempt
}

// NewOrchestrator wires the orchestrator to its gateways and repositories.
func NewOrchestrator(
	card CardGateway,
	cliq CliqGateway,
	pending repository.PendingOrderRepositoryInterface,
	orders repository.OrderRepositoryInterface,
	carts repository.CartRepositoryInterface,
	products repository.ProductRepositoryInterface,
	locations repository.LocationRepositoryInterface,
	cfg Config,
) *Orchestrator {
	if cfg.ResendCooldown <= 0 {
		cfg.ResendCooldown = 30 * time.Second
	}
	return &Orchestrator{
		card:       card,
		cliq:       cliq,
		pending:    pending,
		orders:     orders,
		carts:      carts,
		products:   products,
		locations:  locations,
		cfg:        cfg,
		now:        time.Now,
		submitting: make(map[string]bool),
		attempts:   make(map[string]*cliqAttempt),
	}
}

// prepared is the resolved state of one checkout submission: the form built
// through its typed setters, the priced lines, the summary, and the
// validation verdict.
type prepared struct {
	form       *checkout.Form
	cart       *models.Cart
	summary    models.OrderSummary
	lines      []models.PendingOrderLine
	validation checkout.ValidationResult
	areaID     int64
}

// Quote recomputes the order summary and validation for the current cart
// and form inputs. Pure read, safe to call on every input change.
func (o *Orchestrator) Quote(ctx context.Context, req models.CheckoutRequest) (models.OrderSummary, checkout.ValidationResult, error) {
	p, err := o.prepare(ctx, req, false)
	if err != nil {
		return models.OrderSummary{}, checkout.ValidationResult{}, err
	}
	return p.summary, p.validation, nil
}

// StartCardPayment runs the redirect flow up to the hand-off: validate,
// stash the sanitized PendingOrder, open a gateway session with a fresh
// session id, and return the redirect URL. Any failure aborts before
// navigation; a PendingOrder already written stays in place so a retry does
// not rebuild it, but each retry gets a new session id.
func (o *Orchestrator) StartCardPayment(ctx context.Context, req models.CheckoutRequest) (string, error) {
	if err := o.acquireSubmit(req.UserID); err != nil {
		return "", err
	}
	defer o.releaseSubmit(req.UserID)

	p, err := o.prepare(ctx, req, false)
	if err != nil {
		return "", err
	}
	if !p.validation.IsValid {
		return "", &ValidationFailedError{Result: p.validation}
	}

	sessionID := checkout.NewSessionID(o.now())
	details := p.form.Details()

	po := &models.PendingOrder{
		Products:           p.lines,
		UserID:             req.UserID,
		ShippingAddressRef: p.areaID,
		OrderType:          p.form.OrderType(),
		UserDetails:        details,
		TotalPrice:         p.summary.Total,
		PaymentMethod:      models.PaymentMethodCard,
		IsTest:             o.cfg.TestMode,
		SessionID:          sessionID,
	}
	if err := o.pending.Save(ctx, PendingKey(req.UserID), po); err != nil {
		return "", fmt.Errorf("failed to stash pending order: %w", err)
	}

	session, err := o.card.CreateSession(ctx, CardSessionRequest{
		Amount:       p.summary.Total,
		CustomerName: details.Name,
		OrderID:      sessionID,
		Description:  fmt.Sprintf("%s order for %s", o.cfg.StoreName, details.Name),
	})
	if err != nil {
		// The pending order stays behind for the retry; the retry will
		// overwrite it with a fresh session id.
		log.Printf("❌ StartCardPayment: session creation failed for user=%s: %v", req.UserID, err)
		return "", err
	}

	log.Printf("✅ StartCardPayment: user=%s session=%s amount=%s", req.UserID, sessionID, p.summary.Total)
	return session.RedirectURL, nil
}

// InitiateCliq starts (or, after the cooldown, restarts) the challenge
// flow: the gateway texts an OTP to the customer's mobile and the attempt
// moves to the otp_sent step.
func (o *Orchestrator) InitiateCliq(ctx context.Context, req models.CheckoutRequest) error {
	if err := o.acquireSubmit(req.UserID); err != nil {
		return err
	}
	defer o.releaseSubmit(req.UserID)

	p, err := o.prepare(ctx, req, false)
	if err != nil {
		return err
	}
	if !p.validation.IsValid {
		return &ValidationFailedError{Result: p.validation}
	}

	mobile := utils.SanitizePhone(req.Details.Phone)
	if mobile == "" {
		return &ValidationFailedError{Result: checkout.ValidationResult{
			Errors: []checkout.ErrorCode{checkout.ErrPhoneInvalid},
		}}
	}

	now := o.now()
	o.mu.Lock()
	if a, ok := o.attempts[req.UserID]; ok && a.step == checkout.StepOTPSent && now.Before(a.resendAt) {
		o.mu.Unlock()
		return ErrResendCooldown
	}
	o.mu.Unlock()

	if err := o.cliq.Initiate(ctx, p.summary.Total, mobile); err != nil {
		log.Printf("❌ InitiateCliq: initiate failed for user=%s: %v", req.UserID, err)
		return err
	}

	attemptID := uuid.NewString()
	o.mu.Lock()
	o.attempts[req.UserID] = &cliqAttempt{
		id:       attemptID,
		step:     checkout.StepOTPSent,
		mobile:   mobile,
		amount:   p.summary.Total,
		resendAt: now.Add(o.cfg.ResendCooldown),
		payload: models.PendingOrder{
			Products:           p.lines,
			UserID:             req.UserID,
			ShippingAddressRef: p.areaID,
			OrderType:          p.form.OrderType(),
			UserDetails:        p.form.Details(),
			TotalPrice:         p.summary.Total,
			PaymentMethod:      models.PaymentMethodCliq,
			IsTest:             o.cfg.TestMode,
		},
	}
	o.mu.Unlock()

	log.Printf("✅ InitiateCliq: otp sent for user=%s amount=%s attempt=%s", req.UserID, p.summary.Total, attemptID)
	return nil
}

// ConfirmCliq completes the challenge flow. The order is created only after
// the gateway confirms the debit; a failed confirm reverts the attempt to
// init so the user can retry without losing entered details.
func (o *Orchestrator) ConfirmCliq(ctx context.Context, req models.CheckoutRequest) (*models.Order, error) {
	if err := o.acquireSubmit(req.UserID); err != nil {
		return nil, err
	}
	defer o.releaseSubmit(req.UserID)

	o.mu.Lock()
	attempt, ok := o.attempts[req.UserID]
	if !ok || attempt.step != checkout.StepOTPSent {
		o.mu.Unlock()
		return nil, ErrNoActiveChallenge
	}
	o.mu.Unlock()

	otp := utils.DigitsOnly(req.OTP)
	if len(otp) < 4 {
		return nil, &ValidationFailedError{Result: checkout.ValidationResult{
			Errors: []checkout.ErrorCode{checkout.ErrOTPInvalid},
		}}
	}

	txRef, confirmErr := o.cliq.Confirm(ctx, attempt.amount, attempt.mobile, otp)

	// The response may arrive after the flow moved on (another attempt
	// replaced it, or it was already confirmed). Re-check before acting.
	o.mu.Lock()
	current, ok := o.attempts[req.UserID]
	if !ok || current != attempt || current.step != checkout.StepOTPSent {
		o.mu.Unlock()
		log.Printf("⚠️  ConfirmCliq: dropping stale gateway response for user=%s attempt=%s", req.UserID, attempt.id)
		return nil, ErrStaleChallenge
	}
	if confirmErr != nil {
		current.step = checkout.StepInit
		o.mu.Unlock()
		log.Printf("❌ ConfirmCliq: confirm failed for user=%s: %v", req.UserID, confirmErr)
		return nil, confirmErr
	}
	current.step = checkout.StepConfirmed
	o.mu.Unlock()

	order := orderFromPending(&attempt.payload, txRef)
	created, err := o.orders.Create(ctx, order)
	if err != nil {
		// The debit went through but the order does not exist; this must
		// surface as a consistency failure, not a plain payment error.
		return nil, &ConsistencyError{PaymentID: txRef, Err: err}
	}

	if err := o.carts.ClearCart(ctx, req.UserID); err != nil {
		log.Printf("⚠️  ConfirmCliq: failed to clear cart for user=%s: %v", req.UserID, err)
	}

	o.mu.Lock()
	delete(o.attempts, req.UserID)
	o.mu.Unlock()

	log.Printf("✅ ConfirmCliq: order id=%d created for user=%s ref=%s", created.ID, req.UserID, txRef)
	return created, nil
}

// ResendWait reports how long until another OTP may be requested. Zero
// means resend is available (or no challenge is active).
func (o *Orchestrator) ResendWait(userID string) time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.attempts[userID]
	if !ok || a.step != checkout.StepOTPSent {
		return 0
	}
	wait := a.resendAt.Sub(o.now())
	if wait < 0 {
		return 0
	}
	return wait
}

// CliqStep exposes the current challenge step for a user.
func (o *Orchestrator) CliqStep(userID string) checkout.CliqStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	if a, ok := o.attempts[userID]; ok {
		return a.step
	}
	return checkout.StepInit
}

// acquireSubmit gates re-submission while a payment call is outstanding.
func (o *Orchestrator) acquireSubmit(userID string) error {
	if userID == "" {
		return fmt.Errorf("userId is required")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.submitting[userID] {
		return ErrSubmissionInFlight
	}
	o.submitting[userID] = true
	return nil
}

func (o *Orchestrator) releaseSubmit(userID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.submitting, userID)
}

// prepare resolves one submission end to end: form state, cart, priced
// lines, summary, validation. It does not talk to any gateway.
func (o *Orchestrator) prepare(ctx context.Context, req models.CheckoutRequest, requireOTP bool) (*prepared, error) {
	form := checkout.NewForm()
	if req.OrderType != "" {
		if err := form.SetOrderType(req.OrderType); err != nil {
			return nil, err
		}
	}
	if req.PaymentMethod != "" {
		if err := form.SetPaymentMethod(req.PaymentMethod); err != nil {
			return nil, err
		}
	}
	form.SetDetails(req.Details)
	form.SetOTP(req.OTP)

	var areaID int64
	if form.OrderType() == models.OrderTypeDelivery && req.AreaID != 0 {
		area, err := o.locations.GetByID(ctx, req.AreaID)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				log.Printf("⚠️  prepare: delivery area %d not found, leaving unselected", req.AreaID)
			} else {
				return nil, err
			}
		} else {
			form.SelectArea(area)
			areaID = area.ID
		}
	}

	cart, err := o.carts.GetCart(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	specs := make(map[int64]models.PriceSpec)
	for _, line := range cart.Lines {
		if _, ok := specs[line.ProductID]; ok {
			continue
		}
		product, err := o.products.GetByID(ctx, line.ProductID)
		if err != nil {
			// A line whose product vanished contributes nothing instead of
			// failing the whole checkout.
			log.Printf("⚠️  prepare: product %d unavailable: %v", line.ProductID, err)
			continue
		}
		specs[line.ProductID] = product.PriceSpec()
	}

	summary := pricing.ComputeSummary(pricing.SummaryInput{
		Lines:        cart.Lines,
		Specs:        specs,
		OrderType:    form.OrderType(),
		SelectedArea: form.SelectedArea(),
		TestMode:     o.cfg.TestMode,
		TestAmount:   o.cfg.TestAmount,
	})

	lines := make([]models.PendingOrderLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		spec, ok := specs[line.ProductID]
		if !ok {
			continue
		}
		lp := pricing.ResolveLine(line, spec)
		lines = append(lines, models.PendingOrderLine{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			SelectedProtein: line.SelectedProtein,
			SelectedType:    line.SelectedType,
			Additions:       line.Additions,
			Notes:           utils.SanitizeText(line.Notes),
			IsSpicy:         line.IsSpicy,
			UnitPrice:       lp.UnitPrice,
		})
	}

	validation := checkout.Validate(checkout.ValidationInput{
		Cart:         *cart,
		OrderType:    form.OrderType(),
		SelectedArea: form.SelectedArea(),
		Details:      form.Details(),
		OTP:          form.OTP(),
		RequireOTP:   requireOTP,
		Amount:       summary.Total,
		MaxAmount:    o.cfg.MaxAmount,
		TestMode:     o.cfg.TestMode,
	})

	return &prepared{
		form:       form,
		cart:       cart,
		summary:    summary,
		lines:      lines,
		validation: validation,
		areaID:     areaID,
	}, nil
}

// orderFromPending rebuilds the order-creation payload from a pending-order
// snapshot, re-deriving each line's variant, spicy, notes and additions
// fields. Shared by the cliq confirm path and the card return-path
// finalizer.
func orderFromPending(po *models.PendingOrder, paymentRef string) *models.Order {
	lines := make([]models.OrderLine, 0, len(po.Products))
	for _, p := range po.Products {
		lines = append(lines, models.OrderLine{
			ProductID:       p.ProductID,
			Quantity:        p.Quantity,
			SelectedProtein: p.SelectedProtein,
			SelectedType:    p.SelectedType,
			Additions:       p.Additions,
			Notes:           p.Notes,
			IsSpicy:         p.IsSpicy,
			UnitPrice:       p.UnitPrice,
		})
	}
	return &models.Order{
		UserID:             po.UserID,
		Status:             models.OrderStatusProcessing,
		OrderType:          po.OrderType,
		ShippingAddressRef: po.ShippingAddressRef,
		CustomerName:       po.UserDetails.Name,
		CustomerPhone:      po.UserDetails.Phone,
		CustomerApartment:  po.UserDetails.Apartment,
		TotalPrice:         po.TotalPrice,
		IsTest:             po.IsTest,
		Payment: models.OrderPayment{
			Method:         po.PaymentMethod,
			Status:         models.PaymentStatusPaid,
			TransactionRef: paymentRef,
		},
		Lines: lines,
	}
}
