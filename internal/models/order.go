package models

import "time"

const (
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Email           string      `json:"email"`
	Status          string      `json:"status"`
	Items           []OrderItem `json:"items"`
	Currency        string      `json:"currency"`
	SubtotalCents   int64       `json:"subtotal_cents"`
	ShippingCents   int64       `json:"shipping_cents"`
	TaxCents        int64       `json:"tax_cents"`
	TotalCents      int64       `json:"total_cents"`
	ShippingAddress Address     `json:"shipping_address"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem snapshots the product at purchase time.
type OrderItem struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Size           string `json:"size"`
	Color          string `json:"color"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type Address struct {
	Name       string `json:"name" binding:"required,max=100"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
}

type CheckoutInput struct {
	ShippingAddress Address `json:"shipping_address"`
}

// Totals is the priced summary of a cart.
type Totals struct {
	Currency      string `json:"currency"`
	SubtotalCents int64  `json:"subtotal_cents"`
	ShippingCents int64  `json:"shipping_cents"`
	TaxCents      int64  `json:"tax_cents"`
	TotalCents    int64  `json:"total_cents"`
}
