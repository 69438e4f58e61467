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
	defaultGalleryLimit = 24
	maxGalleryLimit     = 100

	outfitColumns = `id, user_id, name, items, thumbnail_url, is_public, likes, created_at, updated_at`
)

func scanOutfit(row rowScanner) (*models.SavedOutfit, error) {
	var (
		o        models.SavedOutfit
		items    string
		isPublic int
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.Name, &items, &o.ThumbnailURL, &isPublic, &o.Likes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.IsPublic = isPublic != 0
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("decode outfit items: %w", err)
	}
	return &o, nil
}

func (s *Store) queryOutfits(ctx context.Context, query string, args ...any) ([]models.SavedOutfit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outfits: %w", err)
	}
	defer rows.Close()

	outfits := make([]models.SavedOutfit, 0)
	for rows.Next() {
		o, err := scanOutfit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outfit: %w", err)
		}
		outfits = append(outfits, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outfits: %w", err)
	}
	return outfits, nil
}

// checkOutfitItems verifies every referenced product exists and offers the chosen options.
func checkOutfitItems(ctx context.Context, q queryRower, items []models.OutfitItem) error {
	for _, it := range items {
		p, err := getProduct(ctx, q, it.ProductID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: unknown product %s", ErrInvalidOption, it.ProductID)
			}
			return err
		}
		if p.Category != it.Slot {
			return fmt.Errorf("%w: %s is not a %s", ErrInvalidOption, p.ID, it.Slot)
		}
		if it.Color != "" && !p.HasColor(it.Color) {
			return fmt.Errorf("%w: color %q for %s", ErrInvalidOption, it.Color, p.ID)
		}
		if it.Size != "" && !p.HasSize(it.Size) {
			return fmt.Errorf("%w: size %q for %s", ErrInvalidOption, it.Size, p.ID)
		}
	}
	return nil
}

func (s *Store) CreateOutfit(ctx context.Context, userID string, in models.OutfitInput) (*models.SavedOutfit, error) {
	now := s.now()
	o := &models.SavedOutfit{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         in.Name,
		Items:        in.Items,
		ThumbnailURL: in.ThumbnailURL,
		IsPublic:     in.IsPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkOutfitItems(ctx, tx, o.Items); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO outfits(`+outfitColumns+`) VALUES(?, ?, ?, ?, ?, ?, 0, ?, ?)`,
			o.ID, o.UserID, o.Name, string(items), o.ThumbnailURL, boolToInt(o.IsPublic), o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert outfit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// GetOutfit returns an outfit visible to viewerID: its own outfits or any public one.
func (s *Store) GetOutfit(ctx context.Context, id, viewerID string) (*models.SavedOutfit, error) {
	o, err := scanOutfit(s.db.QueryRowContext(ctx, `SELECT `+outfitColumns+` FROM outfits WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get outfit: %w", err)
	}
	if !o.IsPublic && o.UserID != viewerID {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *Store) ListOutfitsByUser(ctx context.Context, userID string, limit int) ([]models.SavedOutfit, error) {
	limit, _ = clampPage(limit, 0, maxGalleryLimit, maxGalleryLimit)
	return s.queryOutfits(ctx,
		`SELECT `+outfitColumns+` FROM outfits WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ?`, userID, limit)
}

// ListPublicOutfits backs the gallery page.
func (s *Store) ListPublicOutfits(ctx context.Context, sort string, limit, offset int) ([]models.SavedOutfit, error) {
	order := "created_at DESC, id"
	if sort == models.GallerySortPopular {
		order = "likes DESC, created_at DESC, id"
	}
	limit, offset = clampPage(limit, offset, defaultGalleryLimit, maxGalleryLimit)
	return s.queryOutfits(ctx,
		`SELECT `+outfitColumns+` FROM outfits WHERE is_public = 1 ORDER BY `+order+` LIMIT ? OFFSET ?`, limit, offset)
}

// UpdateOutfit replaces an outfit owned by userID. wasPublic reports the
// visibility before the update.
func (s *Store) UpdateOutfit(ctx context.Context, id, userID string, in models.OutfitInput) (updated *models.SavedOutfit, wasPublic bool, err error) {
	items, err := json.Marshal(in.Items)
	if err != nil {
		return nil, false, err
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var prevPublic int
		err := tx.QueryRowContext(ctx, `SELECT is_public FROM outfits WHERE id = ? AND user_id = ?`, id, userID).Scan(&prevPublic)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lookup outfit: %w", err)
		}
		wasPublic = prevPublic == 1

		if err := checkOutfitItems(ctx, tx, in.Items); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE outfits SET name = ?, items = ?, thumbnail_url = ?, is_public = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
			in.Name, string(items), in.ThumbnailURL, boolToInt(in.IsPublic), s.now(), id, userID,
		)
		if err != nil {
			return fmt.Errorf("update outfit: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}
		o, err := scanOutfit(tx.QueryRowContext(ctx, `SELECT `+outfitColumns+` FROM outfits WHERE id = ?`, id))
		if err != nil {
			return fmt.Errorf("reload outfit: %w", err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return updated, wasPublic, nil
}

// DeleteOutfit removes an outfit owned by userID and returns the deleted row.
func (s *Store) DeleteOutfit(ctx context.Context, id, userID string) (*models.SavedOutfit, error) {
	var deleted *models.SavedOutfit
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		o, err := scanOutfit(tx.QueryRowContext(ctx,
			`SELECT `+outfitColumns+` FROM outfits WHERE id = ? AND user_id = ?`, id, userID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("get outfit: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM outfits WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete outfit: %w", err)
		}
		deleted = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// LikeOutfit records a like on a public outfit. Repeated likes are ignored.
func (s *Store) LikeOutfit(ctx context.Context, id, userID string) (int, error) {
	return s.setLike(ctx, id, userID, true)
}

func (s *Store) UnlikeOutfit(ctx context.Context, id, userID string) (int, error) {
	return s.setLike(ctx, id, userID, false)
}

func (s *Store) setLike(ctx context.Context, id, userID string, like bool) (int, error) {
	var likes int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var isPublic int
		if err := tx.QueryRowContext(ctx, `SELECT is_public FROM outfits WHERE id = ?`, id).Scan(&isPublic); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lookup outfit: %w", err)
		}
		if isPublic == 0 {
			return ErrNotFound
		}

		var (
			res sql.Result
			err error
		)
		if like {
			res, err = tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO outfit_likes(outfit_id, user_id, created_at) VALUES(?, ?, ?)`, id, userID, s.now())
		} else {
			res, err = tx.ExecContext(ctx, `DELETE FROM outfit_likes WHERE outfit_id = ? AND user_id = ?`, id, userID)
		}
		if err != nil {
			return fmt.Errorf("set like: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE outfits SET likes = (SELECT COUNT(*) FROM outfit_likes WHERE outfit_id = ?) WHERE id = ?`, id, id,
			); err != nil {
				return fmt.Errorf("recount likes: %w", err)
			}
		}
		return tx.QueryRowContext(ctx, `SELECT likes FROM outfits WHERE id = ?`, id).Scan(&likes)
	})
	if err != nil {
		return 0, err
	}
	return likes, nil
}
