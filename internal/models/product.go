package models

import "time"

const (
	CategoryTop       = "top"
	CategoryBottom    = "bottom"
	CategoryShoes     = "shoes"
	CategoryOuterwear = "outerwear"
	CategoryAccessory = "accessory"
)

// Categories lists the outfit picker slots in display order.
var Categories = []string{CategoryTop, CategoryBottom, CategoryShoes, CategoryOuterwear, CategoryAccessory}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// Product is a catalog entry. ModelURL points at the glTF asset the 3D viewer loads.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	PriceCents   int64     `json:"price_cents"`
	Currency     string    `json:"currency"`
	ModelURL     string    `json:"model_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Colors       []string  `json:"colors"`
	Sizes        []string  `json:"sizes"`
	Stock        int       `json:"stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasColor reports whether color is offered; products without colors accept "".
func (p Product) HasColor(color string) bool {
	return hasOption(p.Colors, color)
}

func (p Product) HasSize(size string) bool {
	return hasOption(p.Sizes, size)
}

func hasOption(options []string, v string) bool {
	if len(options) == 0 {
		return v == ""
	}
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

type ProductFilter struct {
	Category string
	Query    string
	Limit    int
	Offset   int
}

// ProductInput is the admin create/update body.
type ProductInput struct {
	Name         string   `json:"name" binding:"required,max=120"`
	Description  string   `json:"description" binding:"max=2000"`
	Category     string   `json:"category" binding:"required,oneof=top bottom shoes outerwear accessory"`
	PriceCents   int64    `json:"price_cents" binding:"required,gt=0"`
	Currency     string   `json:"currency" binding:"omitempty,len=3"`
	ModelURL     string   `json:"model_url" binding:"required"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Colors       []string `json:"colors"`
	Sizes        []string `json:"sizes"`
	Stock        int      `json:"stock" binding:"gte=0"`
}
