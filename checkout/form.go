package checkout

import (
	"fmt"

	"shawarma-station-me/models"
	"shawarma-station-me/utils"
)

// CliqStep is the state of the CliQ challenge flow.
type CliqStep string

const (
	StepInit      CliqStep = "init"
	StepOTPSent   CliqStep = "otp_sent"
	StepConfirmed CliqStep = "confirmed"
)

// CanTransitionTo reports whether the step machine allows moving to next.
// otp_sent may fall back to init (failed or abandoned confirm); confirmed
// is terminal.
func (s CliqStep) CanTransitionTo(next CliqStep) bool {
	switch s {
	case StepInit:
		return next == StepOTPSent
	case StepOTPSent:
		return next == StepConfirmed || next == StepInit
	default:
		return false
	}
}

func (s CliqStep) String() string {
	return string(s)
}

// Form is the checkout form state. Fields are only mutated through the
// typed update methods so sanitization and transition checks stay in one
// place; the presentation layer never assigns fields directly.
type Form struct {
	orderType     string
	selectedArea  *models.DeliveryArea
	paymentMethod string
	details       models.CustomerDetails
	cliqStep      CliqStep
	otp           string
}

// NewForm returns a form in its initial state: pickup, card, cliq step init.
func NewForm() *Form {
	return &Form{
		orderType:     models.OrderTypePickup,
		paymentMethod: models.PaymentMethodCard,
		cliqStep:      StepInit,
	}
}

// SetOrderType switches between pickup and delivery.
func (f *Form) SetOrderType(t string) error {
	if t != models.OrderTypePickup && t != models.OrderTypeDelivery {
		return fmt.Errorf("unknown order type: %q", t)
	}
	f.orderType = t
	return nil
}

// SelectArea records the chosen delivery area. Passing nil clears it.
func (f *Form) SelectArea(area *models.DeliveryArea) {
	f.selectedArea = area
}

// SetPaymentMethod switches the payment protocol. Switching resets the CliQ
// step so a half-finished challenge flow cannot leak into a card attempt.
func (f *Form) SetPaymentMethod(m string) error {
	if m != models.PaymentMethodCard && m != models.PaymentMethodCliq {
		return fmt.Errorf("unknown payment method: %q", m)
	}
	if f.paymentMethod != m {
		f.cliqStep = StepInit
		f.otp = ""
	}
	f.paymentMethod = m
	return nil
}

// SetDetails stores the customer details, sanitized.
func (f *Form) SetDetails(d models.CustomerDetails) {
	f.details = models.CustomerDetails{
		Name:      utils.SanitizeText(d.Name),
		Phone:     utils.SanitizePhone(d.Phone),
		Apartment: utils.SanitizeText(d.Apartment),
	}
}

// SetOTP stores the entered OTP, digits only.
func (f *Form) SetOTP(otp string) {
	f.otp = utils.DigitsOnly(otp)
}

// AdvanceCliq moves the challenge flow to the next step, rejecting moves
// the machine does not allow (e.g. confirm while still in init).
func (f *Form) AdvanceCliq(next CliqStep) error {
	if !f.cliqStep.CanTransitionTo(next) {
		return fmt.Errorf("invalid cliq transition: %s -> %s", f.cliqStep, next)
	}
	f.cliqStep = next
	if next == StepInit {
		f.otp = ""
	}
	return nil
}

func (f *Form) OrderType() string                   { return f.orderType }
func (f *Form) SelectedArea() *models.DeliveryArea  { return f.selectedArea }
func (f *Form) PaymentMethod() string               { return f.paymentMethod }
func (f *Form) Details() models.CustomerDetails     { return f.details }
func (f *Form) CliqStep() CliqStep                  { return f.cliqStep }
func (f *Form) OTP() string                         { return f.otp }
