package models

import "github.com/shopspring/decimal"

// Order statuses
const (
	OrderStatusProcessing = "processing"
	OrderStatusDelivered  = "delivered"
	OrderStatusCanceled   = "canceled"
)

// Payment statuses
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
)

// OrderPayment records how an order was paid.
type OrderPayment struct {
	Method         string `json:"method"` // "card" or "cliq"
	Status         string `json:"status"` // "paid" or "pending"
	TransactionRef string `json:"transactionRef,omitempty"`
}

// OrderLine is a priced line of a materialized order.
type OrderLine struct {
	ID              int64           `json:"id,omitempty"`
	ProductID       int64           `json:"productId"`
	Quantity        int             `json:"quantity"`
	SelectedProtein string          `json:"selectedProtein,omitempty"`
	SelectedType    string          `json:"selectedType,omitempty"`
	Additions       []Addition      `json:"additions,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	IsSpicy         bool            `json:"isSpicy,omitempty"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
}

// Order represents a materialized order document.
// Example response for GET /orders/12:
// {
//   "id": 12,
//   "userId": "u-103",
//   "status": "processing",
//   "orderType": "delivery",
//   "customerName": "Omar Haddad",
//   "customerPhone": "+962791234567",
//   "totalPrice": "14",
//   "payment": {"method": "card", "status": "paid", "transactionRef": "pay_8841"},
//   "lines": [{"productId": 7, "quantity": 2, "unitPrice": "6"}],
//   "createdAt": "2026-08-30T18:12:00Z"
// }
type Order struct {
	ID                 int64           `json:"id"`
	UserID             string          `json:"userId"`
	Status             string          `json:"status"`
	OrderType          string          `json:"orderType"`
	ShippingAddressRef int64           `json:"shippingAddressRef,omitempty"`
	CustomerName       string          `json:"customerName"`
	CustomerPhone      string          `json:"customerPhone"`
	CustomerApartment  string          `json:"customerApartment,omitempty"`
	TotalPrice         decimal.Decimal `json:"totalPrice"`
	IsTest             bool            `json:"isTest,omitempty"`
	Payment            OrderPayment    `json:"payment"`
	Lines              []OrderLine     `json:"lines"`
	CreatedAt          string          `json:"createdAt,omitempty"`
}

// OrderListItem is an order row in a list response, without its lines.
type OrderListItem struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"userId"`
	Status        string          `json:"status"`
	OrderType     string          `json:"orderType"`
	CustomerName  string          `json:"customerName"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	PaymentMethod string          `json:"paymentMethod"`
	LineCount     int             `json:"lineCount"`
	CreatedAt     string          `json:"createdAt,omitempty"`
}

// OrderListResponse is the response for listing orders.
type OrderListResponse struct {
	Orders []OrderListItem `json:"orders"`
}
