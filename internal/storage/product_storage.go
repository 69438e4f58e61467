package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"CosmicOutfits_OutfitBuilder/internal/models"

	"github.com/google/uuid"
)

const (
	defaultProductLimit = 50
	maxProductLimit     = 100

	productColumns = `id, name, description, category, price_cents, currency, model_url, thumbnail_url, colors, sizes, stock, created_at, updated_at`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p             models.Product
		colors, sizes string
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.PriceCents, &p.Currency,
		&p.ModelURL, &p.ThumbnailURL, &colors, &sizes, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(colors), &p.Colors); err != nil {
		return nil, fmt.Errorf("decode colors: %w", err)
	}
	if err := json.Unmarshal([]byte(sizes), &p.Sizes); err != nil {
		return nil, fmt.Errorf("decode sizes: %w", err)
	}
	return &p, nil
}

// ListProducts returns products ordered by category then name.
func (s *Store) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "(name LIKE ? OR description LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like)
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY category, name LIMIT ? OFFSET ?"
	limit, offset := clampPage(f.Limit, f.Offset, defaultProductLimit, maxProductLimit)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return getProduct(ctx, s.db, id)
}

func getProduct(ctx context.Context, q queryRower, id string) (*models.Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// CreateProduct inserts p. An empty ID gets a generated one.
func (s *Store) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	normalizeOptions(&p)

	colors, sizes, err := encodeOptions(p)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO products(`+productColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Category, p.PriceCents, p.Currency, p.ModelURL, p.ThumbnailURL,
		colors, sizes, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrProductExists
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

// UpdateProduct replaces the editable fields of product id.
func (s *Store) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	var updated *models.Product
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		p, err := getProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		p.Name, p.Description, p.Category = in.Name, in.Description, in.Category
		p.PriceCents, p.ModelURL, p.ThumbnailURL = in.PriceCents, in.ModelURL, in.ThumbnailURL
		p.Colors, p.Sizes, p.Stock = in.Colors, in.Sizes, in.Stock
		if in.Currency != "" {
			p.Currency = in.Currency
		}
		p.UpdatedAt = s.now()
		normalizeOptions(p)

		colors, sizes, err := encodeOptions(*p)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET name = ?, description = ?, category = ?, price_cents = ?, currency = ?, model_url = ?,
			 thumbnail_url = ?, colors = ?, sizes = ?, stock = ?, updated_at = ? WHERE id = ?`,
			p.Name, p.Description, p.Category, p.PriceCents, p.Currency, p.ModelURL,
			p.ThumbnailURL, colors, sizes, p.Stock, p.UpdatedAt, id,
		); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectAffected(res)
}

func normalizeOptions(p *models.Product) {
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
}

func encodeOptions(p models.Product) (string, string, error) {
	colors, err := json.Marshal(p.Colors)
	if err != nil {
		return "", "", err
	}
	sizes, err := json.Marshal(p.Sizes)
	if err != nil {
		return "", "", err
	}
	return string(colors), string(sizes), nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func clampPage(limit, offset, defLimit, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = defLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
