package checkout

import (
	"github.com/shopspring/decimal"

	"shawarma-station-me/models"
	"shawarma-station-me/utils"
)

// ErrorCode identifies a single checkout validation failure. Validation
// errors are expected, user-correctable, and never returned as Go errors.
type ErrorCode string

const (
	ErrCartEmpty            ErrorCode = "cart_empty"
	ErrDeliveryAreaRequired ErrorCode = "delivery_area_required"
	ErrNameTooShort         ErrorCode = "name_too_short"
	ErrPhoneInvalid         ErrorCode = "phone_invalid"
	ErrOTPInvalid           ErrorCode = "otp_invalid"
	ErrAmountNotPositive    ErrorCode = "amount_not_positive"
	ErrAmountTooLarge       ErrorCode = "amount_too_large"
)

// ValidationInput is a checkout submission to be validated.
type ValidationInput struct {
	Cart         models.Cart
	OrderType    string
	SelectedArea *models.DeliveryArea
	Details      models.CustomerDetails
	OTP          string
	RequireOTP   bool
	Amount       decimal.Decimal
	MaxAmount    decimal.Decimal
	TestMode     bool
}

// ValidationResult collects every violated rule, not just the first.
type ValidationResult struct {
	IsValid bool        `json:"isValid"`
	Errors  []ErrorCode `json:"errors"`
}

// Validate checks a checkout submission against all rules independently.
// It always returns a structured result and never panics on bad input.
// Test mode relaxes the cart, area, and customer-detail rules so gateway
// integration can be exercised end to end.
func Validate(in ValidationInput) ValidationResult {
	var errs []ErrorCode

	if !in.TestMode && in.Cart.IsEmpty() {
		errs = append(errs, ErrCartEmpty)
	}

	if !in.TestMode && in.OrderType == models.OrderTypeDelivery && in.SelectedArea == nil {
		errs = append(errs, ErrDeliveryAreaRequired)
	}

	if !in.TestMode {
		name := utils.SanitizeText(in.Details.Name)
		if len([]rune(name)) < 3 {
			errs = append(errs, ErrNameTooShort)
		}
		phone := utils.SanitizePhone(in.Details.Phone)
		if len(phone) < 10 {
			errs = append(errs, ErrPhoneInvalid)
		}
	}

	if in.RequireOTP {
		if len(utils.DigitsOnly(in.OTP)) < 4 {
			errs = append(errs, ErrOTPInvalid)
		}
	}

	if !in.Amount.IsPositive() {
		errs = append(errs, ErrAmountNotPositive)
	} else if in.MaxAmount.IsPositive() && in.Amount.GreaterThan(in.MaxAmount) {
		errs = append(errs, ErrAmountTooLarge)
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
