// Package catalog holds the launch catalog loaded into an empty database.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"CosmicOutfits_OutfitBuilder/internal/models"
)

const assetBase = "/assets/models/"

var seedProducts = map[string]models.Product{
	"nebula-hoodie": {
		Name:        "Nebula Hoodie",
		Description: "Heavyweight fleece hoodie with a reflective galaxy print.",
		Category:    models.CategoryTop,
		PriceCents:  5900,
		Colors:      []string{"midnight", "violet"},
		Sizes:       []string{"S", "M", "L", "XL"},
		Stock:       40,
	},
	"orbit-tee": {
		Name:        "Orbit Tee",
		Description: "Soft cotton tee with an embroidered orbit ring.",
		Category:    models.CategoryTop,
		PriceCents:  2400,
		Colors:      []string{"white", "black", "cosmic-blue"},
		Sizes:       []string{"XS", "S", "M", "L", "XL"},
		Stock:       120,
	},
	"stardust-joggers": {
		Name:        "Stardust Joggers",
		Description: "Tapered joggers with speckled stardust knit.",
		Category:    models.CategoryBottom,
		PriceCents:  4800,
		Colors:      []string{"charcoal", "silver"},
		Sizes:       []string{"S", "M", "L", "XL"},
		Stock:       60,
	},
	"comet-cargo": {
		Name:        "Comet Cargo Pants",
		Description: "Utility cargo pants with six pockets.",
		Category:    models.CategoryBottom,
		PriceCents:  6200,
		Colors:      []string{"olive", "black"},
		Sizes:       []string{"28", "30", "32", "34", "36"},
		Stock:       35,
	},
	"lunar-runners": {
		Name:        "Lunar Runners",
		Description: "Cushioned sneakers with a crater-textured sole.",
		Category:    models.CategoryShoes,
		PriceCents:  11900,
		Colors:      []string{"white", "grey"},
		Sizes:       []string{"39", "40", "41", "42", "43", "44", "45"},
		Stock:       25,
	},
	"supernova-bomber": {
		Name:        "Supernova Bomber",
		Description: "Satin bomber jacket with a flare-orange lining.",
		Category:    models.CategoryOuterwear,
		PriceCents:  13500,
		Colors:      []string{"black", "flare"},
		Sizes:       []string{"S", "M", "L", "XL"},
		Stock:       15,
	},
	"aurora-cap": {
		Name:        "Aurora Cap",
		Description: "Six-panel cap with a holographic patch.",
		Category:    models.CategoryAccessory,
		PriceCents:  2200,
		Colors:      []string{"black", "teal"},
		Stock:       80,
	},
}

// Products returns the seed catalog sorted by id.
func Products() []models.Product {
	ids := make([]string, 0, len(seedProducts))
	for id := range seedProducts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p := seedProducts[id]
		p.ID = id
		p.Currency = "USD"
		p.ModelURL = assetBase + id + ".glb"
		p.ThumbnailURL = assetBase + id + ".png"
		out = append(out, p)
	}
	return out
}

// ProductStore is the subset of storage the seeder needs.
type ProductStore interface {
	CountProducts(ctx context.Context) (int, error)
	CreateProduct(ctx context.Context, p models.Product) (*models.Product, error)
}

// Seed loads the catalog when the products table is empty and returns the number inserted.
func Seed(ctx context.Context, store ProductStore) (int, error) {
	n, err := store.CountProducts(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	products := Products()
	for _, p := range products {
		if _, err := store.CreateProduct(ctx, p); err != nil {
			return 0, fmt.Errorf("seed %s: %w", p.ID, err)
		}
	}
	return len(products), nil
}
