package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"CosmicOutfits_OutfitBuilder/internal/models"

	"github.com/google/uuid"
)

const (
	defaultOrderLimit = 20
	maxOrderLimit     = 100

	orderColumns = `id, user_id, email, status, currency, subtotal_cents, shipping_cents, tax_cents, total_cents, shipping_address, created_at, updated_at`
)

// PriceFunc turns the cart lines read inside the checkout transaction into totals.
type PriceFunc func(items []models.CartItem) models.Totals

// CreateOrder converts the user's cart into an order. Inside one transaction it
// re-reads the cart at current prices, reserves stock, writes the order and
// empties the cart.
func (s *Store) CreateOrder(ctx context.Context, userID, email string, addr models.Address, price PriceFunc) (*models.Order, error) {
	var order *models.Order
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		items, err := cartItems(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		for _, it := range items {
			res, err := tx.ExecContext(ctx,
				`UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?`,
				it.Quantity, s.now(), it.ProductID, it.Quantity,
			)
			if err != nil {
				return fmt.Errorf("reserve stock: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("%w: %s", ErrOutOfStock, it.ProductID)
			}
		}

		totals := price(items)
		now := s.now()
		o := &models.Order{
			ID:              uuid.NewString(),
			UserID:          userID,
			Email:           email,
			Status:          models.OrderStatusConfirmed,
			Items:           make([]models.OrderItem, 0, len(items)),
			Currency:        totals.Currency,
			SubtotalCents:   totals.SubtotalCents,
			ShippingCents:   totals.ShippingCents,
			TaxCents:        totals.TaxCents,
			TotalCents:      totals.TotalCents,
			ShippingAddress: addr,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		addrJSON, err := json.Marshal(addr)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orders(`+orderColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.UserID, o.Email, o.Status, o.Currency, o.SubtotalCents, o.ShippingCents, o.TaxCents, o.TotalCents,
			string(addrJSON), o.CreatedAt, o.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i, it := range items {
			oi := models.OrderItem{
				ProductID:      it.ProductID,
				Name:           it.Name,
				Size:           it.Size,
				Color:          it.Color,
				Quantity:       it.Quantity,
				UnitPriceCents: it.UnitPriceCents,
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO order_items(order_id, position, product_id, name, size, color, quantity, unit_price_cents) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
				o.ID, i, oi.ProductID, oi.Name, oi.Size, oi.Color, oi.Quantity, oi.UnitPriceCents,
			); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			o.Items = append(o.Items, oi)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o    models.Order
		addr string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.Email, &o.Status, &o.Currency, &o.SubtotalCents, &o.ShippingCents,
		&o.TaxCents, &o.TotalCents, &addr, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(addr), &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	return &o, nil
}

func orderItems(ctx context.Context, q queryer, orderID string) ([]models.OrderItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT product_id, name, size, color, quantity, unit_price_cents FROM order_items WHERE order_id = ? ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make([]models.OrderItem, 0)
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Size, &it.Color, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListOrders returns the user's orders, newest first, with their items.
func (s *Store) ListOrders(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	limit, _ = clampPage(limit, 0, defaultOrderLimit, maxOrderLimit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	orders := make([]models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	// Items are loaded after the order cursor is closed; the pool holds a single connection.
	for i := range orders {
		items, err := orderItems(ctx, s.db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, id, userID string) (*models.Order, error) {
	return getOrder(ctx, s.db, id, userID)
}

type queryRowerQueryer interface {
	queryRower
	queryer
}

func getOrder(ctx context.Context, q queryRowerQueryer, id, userID string) (*models.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	items, err := orderItems(ctx, q, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// CancelOrder cancels a confirmed order and returns its items to stock.
func (s *Store) CancelOrder(ctx context.Context, id, userID string) (*models.Order, error) {
	var cancelled *models.Order
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		o, err := getOrder(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if o.Status != models.OrderStatusConfirmed {
			return ErrNotCancellable
		}
		now := s.now()
		for _, it := range o.Items {
			if _, err := tx.ExecContext(ctx,
				`UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ?`, it.Quantity, now, it.ProductID,
			); err != nil {
				return fmt.Errorf("restock: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, models.OrderStatusCancelled, now, id,
		); err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}
		o.Status, o.UpdatedAt = models.OrderStatusCancelled, now
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// UserStats aggregates the dashboard counters.
func (s *Store) UserStats(ctx context.Context, userID string) (models.UserStats, error) {
	var st models.UserStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE user_id = ?),
			(SELECT COUNT(*) FROM outfits WHERE user_id = ?),
			(SELECT COUNT(*) FROM outfits WHERE user_id = ? AND is_public = 1),
			(SELECT COUNT(*) FROM orders WHERE user_id = ?),
			(SELECT COALESCE(SUM(total_cents), 0) FROM orders WHERE user_id = ? AND status <> ?)`,
		userID, userID, userID, userID, userID, models.OrderStatusCancelled,
	).Scan(&st.CartItems, &st.SavedOutfits, &st.PublicOutfits, &st.Orders, &st.TotalSpentCents)
	if err != nil {
		return st, fmt.Errorf("user stats: %w", err)
	}
	return st, nil
}
