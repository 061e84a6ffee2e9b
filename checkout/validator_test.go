package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"shawarma-station-me/models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func validInput() ValidationInput {
	return ValidationInput{
		Cart: models.Cart{
			UserID: "u-103",
			Lines:  []models.CartLine{{ProductID: 7, Quantity: 1}},
		},
		OrderType: models.OrderTypePickup,
		Details: models.CustomerDetails{
			Name:  "Omar Haddad",
			Phone: "+962791234567",
		},
		Amount:    d("12.00"),
		MaxAmount: d("500.00"),
	}
}

func TestValidatePasses(t *testing.T) {
	result := Validate(validInput())
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateCollectsAllViolations(t *testing.T) {
	in := ValidationInput{
		OrderType: models.OrderTypeDelivery,
		Details:   models.CustomerDetails{Name: "Om", Phone: "123"},
		Amount:    decimal.Zero,
		MaxAmount: d("500.00"),
	}

	result := Validate(in)

	assert.False(t, result.IsValid)
	assert.ElementsMatch(t, []ErrorCode{
		ErrCartEmpty,
		ErrDeliveryAreaRequired,
		ErrNameTooShort,
		ErrPhoneInvalid,
		ErrAmountNotPositive,
	}, result.Errors)
}

func TestValidateDeliveryRequiresArea(t *testing.T) {
	in := validInput()
	in.OrderType = models.OrderTypeDelivery

	result := Validate(in)
	assert.Contains(t, result.Errors, ErrDeliveryAreaRequired)

	in.SelectedArea = &models.DeliveryArea{ID: 4, DeliveryCost: d("2.00")}
	result = Validate(in)
	assert.True(t, result.IsValid)
}

func TestValidateNameSanitizedBeforeLengthCheck(t *testing.T) {
	in := validInput()
	in.Details.Name = "<script>alert(1)</script>ab"

	result := Validate(in)
	assert.Contains(t, result.Errors, ErrNameTooShort)
}

func TestValidateOTPOnlyWhenRequired(t *testing.T) {
	in := validInput()
	in.OTP = ""

	result := Validate(in)
	assert.True(t, result.IsValid)

	in.RequireOTP = true
	result = Validate(in)
	assert.Contains(t, result.Errors, ErrOTPInvalid)

	in.OTP = "4829"
	result = Validate(in)
	assert.True(t, result.IsValid)
}

func TestValidateAmountBounds(t *testing.T) {
	in := validInput()
	in.Amount = d("500.01")

	result := Validate(in)
	assert.Contains(t, result.Errors, ErrAmountTooLarge)

	in.Amount = d("500.00")
	result = Validate(in)
	assert.True(t, result.IsValid)

	in.Amount = d("-1.00")
	result = Validate(in)
	assert.Contains(t, result.Errors, ErrAmountNotPositive)
}

func TestValidateTestModeRelaxesCustomerRulesNotAmountRules(t *testing.T) {
	in := ValidationInput{
		OrderType: models.OrderTypeDelivery,
		TestMode:  true,
		Amount:    d("0.10"),
		MaxAmount: d("500.00"),
	}

	result := Validate(in)
	assert.True(t, result.IsValid)

	// OTP and amount rules still hold in test mode.
	in.RequireOTP = true
	in.Amount = decimal.Zero
	result = Validate(in)
	assert.ElementsMatch(t, []ErrorCode{ErrOTPInvalid, ErrAmountNotPositive}, result.Errors)
}
