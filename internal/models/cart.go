package models

import "time"

// MaxItemQuantity caps a single cart line.
const MaxItemQuantity = 10

// CartItem is one cart line. A line is identified by product, size and color.
type CartItem struct {
	ProductID string    `json:"product_id"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`

	// Resolved from the catalog when the cart is read.
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	ModelURL       string `json:"model_url"`
	ThumbnailURL   string `json:"thumbnail_url"`
	Stock          int    `json:"stock"`
}

func (i CartItem) LineTotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

type Cart struct {
	UserID        string     `json:"user_id"`
	Items         []CartItem `json:"items"`
	ItemCount     int        `json:"item_count"`
	SubtotalCents int64      `json:"subtotal_cents"`
}

// NewCart totals the given lines.
func NewCart(userID string, items []CartItem) Cart {
	c := Cart{UserID: userID, Items: items}
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	for _, it := range c.Items {
		c.ItemCount += it.Quantity
		c.SubtotalCents += it.LineTotalCents()
	}
	return c
}

type CartItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=10"`
}

// CartMergeInput carries the guest cart kept in the browser before sign-in.
type CartMergeInput struct {
	Items []CartItemInput `json:"items" binding:"required,max=50,dive"`
}
