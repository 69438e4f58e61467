package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"CosmicOutfits_OutfitBuilder/internal/models"
)

const selectCartQuery = `
	SELECT c.product_id, c.size, c.color, c.quantity, c.added_at,
	       p.name, p.price_cents, p.model_url, p.thumbnail_url, p.stock
	FROM cart_items c
	JOIN products p ON p.id = c.product_id
	WHERE c.user_id = ?
	ORDER BY c.added_at, c.product_id, c.size, c.color`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// GetCart returns the user's cart priced at current catalog prices.
func (s *Store) GetCart(ctx context.Context, userID string) (models.Cart, error) {
	items, err := cartItems(ctx, s.db, userID)
	if err != nil {
		return models.Cart{}, err
	}
	return models.NewCart(userID, items), nil
}

func cartItems(ctx context.Context, q queryer, userID string) ([]models.CartItem, error) {
	rows, err := q.QueryContext(ctx, selectCartQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	items := make([]models.CartItem, 0)
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ProductID, &it.Size, &it.Color, &it.Quantity, &it.AddedAt,
			&it.Name, &it.UnitPriceCents, &it.ModelURL, &it.ThumbnailURL, &it.Stock); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart: %w", err)
	}
	return items, nil
}

// AddCartItem adds in.Quantity to the matching line, creating it if needed.
// The line is capped at models.MaxItemQuantity and must fit in stock.
func (s *Store) AddCartItem(ctx context.Context, userID string, in models.CartItemInput) (models.Cart, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return addCartLine(ctx, tx, userID, in, s.now(), true)
	})
	if err != nil {
		return models.Cart{}, err
	}
	return s.GetCart(ctx, userID)
}

// SetCartItemQuantity overwrites a line's quantity. Zero removes the line.
func (s *Store) SetCartItemQuantity(ctx context.Context, userID string, in models.CartItemInput) (models.Cart, error) {
	if in.Quantity <= 0 {
		return s.RemoveCartItem(ctx, userID, in.ProductID, in.Size, in.Color)
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var current int
		err := tx.QueryRowContext(ctx,
			`SELECT quantity FROM cart_items WHERE user_id = ? AND product_id = ? AND size = ? AND color = ?`,
			userID, in.ProductID, in.Size, in.Color,
		).Scan(&current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lookup cart line: %w", err)
		}
		return addCartLine(ctx, tx, userID, in, s.now(), false)
	})
	if err != nil {
		return models.Cart{}, err
	}
	return s.GetCart(ctx, userID)
}

func (s *Store) RemoveCartItem(ctx context.Context, userID, productID, size, color string) (models.Cart, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = ? AND product_id = ? AND size = ? AND color = ?`,
		userID, productID, size, color,
	)
	if err != nil {
		return models.Cart{}, fmt.Errorf("remove cart line: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return models.Cart{}, err
	}
	return s.GetCart(ctx, userID)
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// MergeCart folds a guest cart into the stored one. Quantities are summed and
// capped; lines that reference unknown products or options, or that no longer
// fit in stock, are skipped and reported back.
func (s *Store) MergeCart(ctx context.Context, userID string, guest []models.CartItemInput) (models.Cart, []models.CartItemInput, error) {
	var skipped []models.CartItemInput
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		skipped = skipped[:0]
		for _, in := range guest {
			err := addCartLine(ctx, tx, userID, in, s.now(), true)
			switch {
			case err == nil:
			case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidOption), errors.Is(err, ErrOutOfStock):
				skipped = append(skipped, in)
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Cart{}, nil, err
	}
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return models.Cart{}, nil, err
	}
	return cart, skipped, nil
}

func addCartLine(ctx context.Context, tx *sql.Tx, userID string, in models.CartItemInput, now time.Time, accumulate bool) error {
	p, err := getProduct(ctx, tx, in.ProductID)
	if err != nil {
		return err
	}
	if !p.HasColor(in.Color) || !p.HasSize(in.Size) {
		return fmt.Errorf("%w: %s size=%q color=%q", ErrInvalidOption, p.ID, in.Size, in.Color)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOption)
	}

	qty := in.Quantity
	if accumulate {
		var current int
		err := tx.QueryRowContext(ctx,
			`SELECT quantity FROM cart_items WHERE user_id = ? AND product_id = ? AND size = ? AND color = ?`,
			userID, in.ProductID, in.Size, in.Color,
		).Scan(&current)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup cart line: %w", err)
		}
		qty += current
	}
	if qty > models.MaxItemQuantity {
		qty = models.MaxItemQuantity
	}
	if qty > p.Stock {
		return ErrOutOfStock
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cart_items(user_id, product_id, size, color, quantity, added_at) VALUES(?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, product_id, size, color) DO UPDATE SET quantity = excluded.quantity`,
		userID, in.ProductID, in.Size, in.Color, qty, now,
	)
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}
