package models

import "time"

// SavedOutfit is a named combination of products built in the outfit picker.
type SavedOutfit struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Name         string       `json:"name"`
	Items        []OutfitItem `json:"items"`
	ThumbnailURL string       `json:"thumbnail_url"`
	IsPublic     bool         `json:"is_public"`
	Likes        int          `json:"likes"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type OutfitItem struct {
	Slot      string `json:"slot" binding:"required,oneof=top bottom shoes outerwear accessory"`
	ProductID string `json:"product_id" binding:"required"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

type OutfitInput struct {
	Name         string       `json:"name" binding:"required,max=80"`
	Items        []OutfitItem `json:"items" binding:"required,min=1,max=5,dive"`
	ThumbnailURL string       `json:"thumbnail_url"`
	IsPublic     bool         `json:"is_public"`
}

const (
	GallerySortNewest  = "newest"
	GallerySortPopular = "popular"
)
