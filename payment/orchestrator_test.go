package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shawarma-station-me/checkout"
	"shawarma-station-me/models"
	"shawarma-station-me/repository"
)

type orchestratorDeps struct {
	card    *fakeCardGateway
	cliq    *fakeCliqGateway
	pending *repository.MemoryPendingOrderRepository
	orders  *fakeOrderRepo
	carts   *fakeCartRepo
}

func newTestOrchestrator(t *testing.T, cfg Config) (*Orchestrator, *orchestratorDeps) {
	t.Helper()

	deps := &orchestratorDeps{
		card:    &fakeCardGateway{session: &CardSession{RedirectURL: "https://gateway.example/pay/sess_1"}},
		cliq:    &fakeCliqGateway{confirmRef: "tx_7001"},
		pending: repository.NewMemoryPendingOrderRepository(),
		orders:  newFakeOrderRepo(),
		carts:   newFakeCartRepo(),
	}

	deps.carts.carts["u-103"] = models.Cart{
		UserID: "u-103",
		Lines: []models.CartLine{
			{
				ProductID: 7,
				Quantity:  2,
				Additions: []models.Addition{{ID: 1, Name: "Garlic sauce", Price: d("1.00")}},
			},
		},
	}

	products := &fakeProductRepo{products: map[int64]models.Product{
		7: {ID: 7, Name: "Shawarma Arabi", BasePrice: d("5.00"), IsAvailable: true},
	}}
	locations := &fakeLocationRepo{areas: map[int64]models.DeliveryArea{
		4: {ID: 4, Name: "Abdoun", DeliveryCost: d("2.00")},
	}}

	o := NewOrchestrator(deps.card, deps.cliq, deps.pending, deps.orders, deps.carts, products, locations, cfg)
	return o, deps
}

func testConfig() Config {
	return Config{
		MaxAmount:      d("500.00"),
		TestAmount:     d("0.10"),
		ResendCooldown: 30 * time.Second,
		StoreName:      "Shawarma Station",
	}
}

func checkoutReq(method string) models.CheckoutRequest {
	return models.CheckoutRequest{
		UserID:        "u-103",
		OrderType:     models.OrderTypePickup,
		PaymentMethod: method,
		Details: models.CustomerDetails{
			Name:  "Omar Haddad",
			Phone: "+962791234567",
		},
	}
}

func TestQuoteComputesSummary(t *testing.T) {
	o, _ := newTestOrchestrator(t, testConfig())

	req := checkoutReq(models.PaymentMethodCard)
	req.OrderType = models.OrderTypeDelivery
	req.AreaID = 4

	summary, validation, err := o.Quote(context.Background(), req)
	require.NoError(t, err)

	// (5 + 1) * 2 = 12 plus the area's delivery cost.
	assert.Equal(t, "12.00", summary.Subtotal.StringFixed(2))
	assert.Equal(t, "2.00", summary.DeliveryCost.StringFixed(2))
	assert.Equal(t, "14.00", summary.Total.StringFixed(2))
	assert.True(t, validation.IsValid)
}

func TestQuoteReportsViolations(t *testing.T) {
	o, _ := newTestOrchestrator(t, testConfig())

	req := checkoutReq(models.PaymentMethodCard)
	req.OrderType = models.OrderTypeDelivery // no area selected
	req.Details.Name = "Om"

	_, validation, err := o.Quote(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, validation.IsValid)
	assert.Contains(t, validation.Errors, checkout.ErrDeliveryAreaRequired)
	assert.Contains(t, validation.Errors, checkout.ErrNameTooShort)
}

func TestStartCardPaymentStashesPendingBeforeRedirect(t *testing.T) {
	o, deps := newTestOrchestrator(t, testConfig())

	redirectURL, err := o.StartCardPayment(context.Background(), checkoutReq(models.PaymentMethodCard))
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example/pay/sess_1", redirectURL)

	po, err := deps.pending.Load(context.Background(), PendingKey("u-103"))
	require.NoError(t, err)
	assert.Equal(t, "u-103", po.UserID)
	assert.Equal(t, models.PaymentMethodCard, po.PaymentMethod)
	assert.Equal(t, "12.00", po.TotalPrice.StringFixed(2))
	assert.NotEmpty(t, po.SessionID)
	require.Len(t, po.Products, 1)
	assert.Equal(t, "6.00", po.Products[0].UnitPrice.StringFixed(2))

	// The gateway saw the same session id and amount that were stashed.
	assert.Equal(t, po.SessionID, deps.card.lastSession.OrderID)
	assert.Equal(t, "12.00", deps.card.lastSession.Amount.StringFixed(2))
}

func TestStartCardPaymentValidationStopsBeforeGateway(t *testing.T) {
	o, deps := newTestOrchestrator(t, testConfig())

	req := checkoutReq(models.PaymentMethodCard)
	req.Details.Phone = "123"

	_, err := o.StartCardPayment(context.Background(), req)

	var validationErr *ValidationFailedError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Result.Errors, checkout.ErrPhoneInvalid)
	assert.Equal(t, 0, deps.card.sessionCalls)

	_, loadErr := deps.pending.Load(context.Background(), PendingKey("u-103"))
	assert.ErrorIs(t, loadErr, repository.ErrPendingOrderNotFound)
}

func TestStartCardPaymentSessionFailureLeavesPendingForRetry(t *testing.T) {
	o, deps := newTestOrchestrator(t, testConfig())
	deps.card.sessionErr = &GatewayError{Code: "http_503"}

	_, err := o.StartCardPayment(context.Background(), checkoutReq(models.PaymentMethodCard))
	require.Error(t, err)

	// The stash survives the failed hand-off; the retry overwrites it.
	po, loadErr := deps.pending.Load(context.Background(), PendingKey("u-103"))
	require.NoError(t, loadErr)
	firstSession := po.SessionID

	deps.card.sessionErr = nil
	_, err = o.StartCardPayment(context.Background(), checkoutReq(models.PaymentMethodCard))
	require.NoError(t, err)

	po, loadErr = deps.pending.Load(context.Background(), PendingKey("u-103"))
	require.NoError(t, loadErr)
	assert.Equal(t, po.SessionID, deps.card.lastSession.OrderID)
	_ = firstSession // ids are per-attempt; equality is possible but not required
}

func TestStartCardPaymentRejectsOverlappingSubmission(t *testing.T) {
	o, deps := newTestOrchestrator(t, testConfig())
	deps.card.sessionStarted = make(chan struct{}, 1)
	deps.card.sessionUnblock = make(chan struct{})

	firstErr := make(chan error, 1)
	go func() {
		_, err := o.StartCardPayment(context.Background(), checkoutReq(models.PaymentMethodCard))
		firstErr <- err
	}()

	// With the first submission held inside the gateway call, a second one
	// for the same user is turned away before it reaches the gateway.
	<-deps.card.sessionStarted
	_, err := o.StartCardPayment(context.Background(), checkoutReq(models.PaymentMethodCard))
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(deps.card.sessionUnblock)
	require.NoError(t, <-firstErr)
	assert.Equal(t, 1, deps.card.sessionCalls)

	// Once the first submission finishes, the user can submit again.
	_, err = o.StartCardPayment(context.Background(), checkoutReq(models.PaymentMethodCard))
	assert.NoError(t, err)
}

func TestInitiateCliqMovesToOTPSent(t *testing.T) {
	o, deps := newTestOrchestrator(t, testConfig())

	req := checkoutReq(models.PaymentMethodCliq)
	require.NoError(t, o.InitiateCliq(context.Background(), req))

	assert.Equal(t, checkout.StepOTPSent, o.CliqStep("u-103"))
	assert.Equal(t, 1, deps.cliq.initiateCalls)
	assert.Greater(t, o.ResendWait("u-103"), time.Duration(0))
}

func TestInitiateCliqCooldownBlocksImmediateResend(t *testing.T) {
	o, deps := newTestOrchestrator(t, testConfig())

	now := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return now }

	req := checkoutReq(models.PaymentMethodCliq)
	require.NoError(t, o.InitiateCliq(context.Background(), req))

	err := o.InitiateCliq(context.Background(), req)
	assert.ErrorIs(t, err, ErrResendCooldown)
	assert.Equal(t, 1, deps.cliq.initiateCalls)

	// After the cooldown the OTP can be resent.
	now = now.Add(31 * time.Second)
	require.NoError(t, o.InitiateCliq(context.Background(), req))
	assert.Equal(t, 2, deps.cliq.initiateCalls)
}

func TestConfirmCliqWithoutChallenge(t *testing.T) {
	o, _ := newTestOrchestrator(t, testConfig())

	req := checkoutReq(models.PaymentMethodCliq)
	req.OTP = "4829"

	_, err := o.ConfirmCliq(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoActiveChallenge)
}

func TestConfirmCliqCreatesOrder(t *testing.T) {
	o, deps := newTestOrchestrator(t, testConfig())

	req := checkoutReq(models.PaymentMethodCliq)
	require.NoError(t, o.InitiateCliq(context.Background(), req))

	req.OTP = "4829"
	order, err := o.ConfirmCliq(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentMethodCliq, order.Payment.Method)
	assert.Equal(t, models.PaymentStatusPaid, order.Payment.Status)
	assert.Equal(t, "tx_7001", order.Payment.TransactionRef)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, "12.00", order.TotalPrice.StringFixed(2))
	require.Len(t, order.Lines, 1)

	assert.Equal(t, "4829", deps.cliq.lastOTP)
	assert.Contains(t, deps.carts.cleared, "u-103")
	assert.Equal(t, checkout.StepInit, o.CliqStep("u-103"))
}

func TestConfirmCliqRejectsShortOTP(t *testing.T) {
	o, deps := newTestOrchestrator(t, testConfig())

	req := checkoutReq(models.PaymentMethodCliq)
	require.NoError(t, o.InitiateCliq(context.Background(), req))

	req.OTP = "12"
	_, err := o.ConfirmCliq(context.Background(), req)

	var validationErr *ValidationFailedError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Result.Errors, checkout.ErrOTPInvalid)
	assert.Equal(t, 0, deps.cliq.confirmCalls)
	assert.Equal(t, checkout.StepOTPSent, o.CliqStep("u-103"))
}

func TestConfirmCliqFailureRevertsChallenge(t *testing.T) {
	o, deps := newTestOrchestrator(t, testConfig())
	// Provider-level failure: error object present even on HTTP 200.
	deps.cliq.confirmErr = &GatewayError{Code: "1", Message: "wrong otp"}

	req := checkoutReq(models.PaymentMethodCliq)
	require.NoError(t, o.InitiateCliq(context.Background(), req))

	req.OTP = "9999"
	_, err := o.ConfirmCliq(context.Background(), req)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "wrong otp", gatewayErr.Message)

	// Back to init; no order, cart untouched, confirm requires a fresh OTP.
	assert.Equal(t, checkout.StepInit, o.CliqStep("u-103"))
	assert.Equal(t, 0, deps.orders.count())
	assert.Empty(t, deps.carts.cleared)

	_, err = o.ConfirmCliq(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoActiveChallenge)
}

func TestConfirmCliqDropsResponseAfterChallengeReplaced(t *testing.T) {
	o, deps := newTestOrchestrator(t, testConfig())

	req := checkoutReq(models.PaymentMethodCliq)
	require.NoError(t, o.InitiateCliq(context.Background(), req))

	// The challenge is replaced while the confirm response is still on the
	// wire; the late response must be dropped, not turned into an order.
	deps.cliq.confirmHook = func() {
		o.mu.Lock()
		o.attempts["u-103"] = &cliqAttempt{id: "a-replacement", step: checkout.StepOTPSent}
		o.mu.Unlock()
	}

	req.OTP = "4829"
	_, err := o.ConfirmCliq(context.Background(), req)
	assert.ErrorIs(t, err, ErrStaleChallenge)

	assert.Equal(t, 0, deps.orders.count())
	assert.Empty(t, deps.carts.cleared)
	assert.Equal(t, checkout.StepOTPSent, o.CliqStep("u-103"))
}

func TestConfirmCliqOrderCreationFailureIsConsistencyError(t *testing.T) {
	o, deps := newTestOrchestrator(t, testConfig())
	deps.orders.createErr = assert.AnError

	req := checkoutReq(models.PaymentMethodCliq)
	require.NoError(t, o.InitiateCliq(context.Background(), req))

	req.OTP = "4829"
	_, err := o.ConfirmCliq(context.Background(), req)

	var consistency *ConsistencyError
	require.ErrorAs(t, err, &consistency)
	assert.Equal(t, "tx_7001", consistency.PaymentID)
}

func TestTestModeChargesFixedAmount(t *testing.T) {
	cfg := testConfig()
	cfg.TestMode = true
	o, deps := newTestOrchestrator(t, cfg)

	// Test mode relaxes cart and detail rules; an empty request still works.
	req := models.CheckoutRequest{UserID: "u-900", PaymentMethod: models.PaymentMethodCard}
	_, err := o.StartCardPayment(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "0.10", deps.card.lastSession.Amount.StringFixed(2))

	po, loadErr := deps.pending.Load(context.Background(), PendingKey("u-900"))
	require.NoError(t, loadErr)
	assert.True(t, po.IsTest)
}
