package models

import "github.com/shopspring/decimal"

// PendingOrderLine is a sanitized snapshot of a cart line, carrying every
// field needed to rebuild the order-creation payload after the redirect
// round-trip to the card gateway.
type PendingOrderLine struct {
	ProductID       int64           `json:"productId"`
	Quantity        int             `json:"quantity"`
	SelectedProtein string          `json:"selectedProtein,omitempty"`
	SelectedType    string          `json:"selectedType,omitempty"`
	Additions       []Addition      `json:"additions,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	IsSpicy         bool            `json:"isSpicy,omitempty"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
}

// PendingOrder is the order-to-be-created, stashed durably right before the
// browser is handed off to the card gateway. Lifecycle: written once per
// checkout attempt, read at most once by the return-path finalizer, deleted
// immediately after the order is created. A failed finalize leaves it in
// place for manual recovery.
type PendingOrder struct {
	Products           []PendingOrderLine `json:"products"`
	UserID             string             `json:"userId"`
	ShippingAddressRef int64              `json:"shippingAddressRef,omitempty"` // delivery area id, 0 for pickup
	OrderType          string             `json:"orderType"`
	UserDetails        CustomerDetails    `json:"userDetails"`
	TotalPrice         decimal.Decimal    `json:"totalPrice"`
	PaymentMethod      string             `json:"paymentMethod"`
	IsTest             bool               `json:"isTest"`
	SessionID          string             `json:"sessionId"` // gateway session id of the hand-off attempt
	CreatedAt          string             `json:"createdAt,omitempty"`
}
