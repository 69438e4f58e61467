package models

import "time"

const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

const (
	TableProfiles = "profiles"
	TableProducts = "products"
	TableOutfits  = "outfits"
	TableCart     = "cart_items"
	TableOrders   = "orders"
)

// ChangeEvent mirrors a row change. An empty UserID marks a public event.
type ChangeEvent struct {
	Table  string    `json:"table"`
	Type   string    `json:"type"`
	UserID string    `json:"user_id,omitempty"`
	Record any       `json:"record,omitempty"`
	At     time.Time `json:"at"`
}

type UserStats struct {
	CartItems       int   `json:"cart_items"`
	SavedOutfits    int   `json:"saved_outfits"`
	PublicOutfits   int   `json:"public_outfits"`
	Orders          int   `json:"orders"`
	TotalSpentCents int64 `json:"total_spent_cents"`
}
