package models

import "github.com/shopspring/decimal"

// Order type selected at checkout
const (
	OrderTypePickup   = "pickup"
	OrderTypeDelivery = "delivery"
)

// Payment methods
const (
	PaymentMethodCard = "card"
	PaymentMethodCliq = "cliq"
)

// DeliveryArea is a serviced delivery zone with its flat delivery cost.
type DeliveryArea struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	DeliveryCost decimal.Decimal `json:"deliveryCost"`
}

// CustomerDetails are the free-text customer fields collected at checkout.
// They are sanitized before validation and before being persisted anywhere.
type CustomerDetails struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Apartment string `json:"apartment,omitempty"`
}

// CheckoutRequest is the wire shape of a checkout submission. The cart
// itself is server-side state keyed by userId and is not part of the
// request.
// Example request:
// {
//   "userId": "u-103",
//   "orderType": "delivery",
//   "areaId": 4,
//   "paymentMethod": "card",
//   "details": {"name": "Omar Haddad", "phone": "+962791234567"}
// }
type CheckoutRequest struct {
	UserID        string          `json:"userId"`
	OrderType     string          `json:"orderType"`     // "pickup" or "delivery"
	AreaID        int64           `json:"areaId,omitempty"`
	PaymentMethod string          `json:"paymentMethod"` // "card" or "cliq"
	Details       CustomerDetails `json:"details"`
	OTP           string          `json:"otp,omitempty"`
}

// OrderSummary is the derived price breakdown of a cart. It is recomputed
// on every relevant input change and never persisted on its own.
type OrderSummary struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	OriginalSubtotal decimal.Decimal `json:"originalSubtotal"`
	Savings          decimal.Decimal `json:"savings"` // originalSubtotal - subtotal
	DeliveryCost     decimal.Decimal `json:"deliveryCost"`
	Total            decimal.Decimal `json:"total"`
}
