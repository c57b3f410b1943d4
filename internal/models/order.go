package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType distinguishes direct purchases from quote requests.
type OrderType string

const (
	OrderTypePurchase OrderType = "order"
	OrderTypeQuote    OrderType = "quote"
)

// PaymentStatus tracks the mocked payment flow.
type PaymentStatus string

const (
	PaymentStatusPaid        PaymentStatus = "paid"
	PaymentStatusWirePending PaymentStatus = "wire_pending"
	PaymentStatusNone        PaymentStatus = "none" // quote requests carry no payment
)

// OrderLine is a single line persisted with an order. Price is the unit
// price captured from the cart at submission time.
type OrderLine struct {
	ProductID string              `json:"productId"`
	Name      string              `json:"name"`
	Quantity  int                 `json:"quantity"`
	Price     decimal.NullDecimal `json:"price"`
}

// ShippingAddress is the contact/shipping block collected at checkout. For
// quote requests only the contact fields are filled.
type ShippingAddress struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// Order is a persisted checkout submission: either a direct purchase
// (id AET-xxx) or a quote request (id QR-xxx).
type Order struct {
	ID    string    `db:"id" json:"id"`
	Type  OrderType `db:"type" json:"type"`
	Owner string    `db:"owner" json:"owner"`
	Email string    `db:"email" json:"email"`

	Items    []OrderLine     `db:"-" json:"items"`
	Shipping ShippingAddress `db:"-" json:"shippingAddress"`

	Subtotal     decimal.Decimal `db:"subtotal" json:"subtotal"`
	ShippingCost decimal.Decimal `db:"shipping_cost" json:"shippingCost"`
	Tax          decimal.Decimal `db:"tax" json:"tax"`
	Total        decimal.Decimal `db:"total" json:"total"`

	PaymentMethod string        `db:"payment_method" json:"paymentMethod,omitempty"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`

	QuoteNotes    string `db:"quote_notes" json:"quoteNotes,omitempty"`
	EPACertNumber string `db:"epa_cert_number" json:"epaCertNumber,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
