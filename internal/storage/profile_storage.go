package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"CosmicOutfits_OutfitBuilder/internal/models"
)

const selectProfileQuery = `SELECT user_id, full_name, username, avatar_url, bio, settings, updated_at FROM profiles WHERE user_id = ?`

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return getProfile(ctx, s.db, userID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getProfile(ctx context.Context, q queryRower, userID string) (*models.Profile, error) {
	var (
		p        models.Profile
		username sql.NullString
		settings string
	)
	err := q.QueryRowContext(ctx, selectProfileQuery, userID).Scan(
		&p.UserID, &p.FullName, &username, &p.AvatarURL, &p.Bio, &settings, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	if username.Valid {
		p.Username = &username.String
	}
	p.Settings = models.DefaultSettings()
	if err := json.Unmarshal([]byte(settings), &p.Settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &p, nil
}

// UpdateProfile merges upd into the stored profile. The second result reports
// whether a row was actually changed.
func (s *Store) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, bool, error) {
	var (
		profile *models.Profile
		changed bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		p, err := getProfile(ctx, tx, userID)
		if err != nil {
			return err
		}
		profile = p
		if changed = upd.Apply(p); !changed {
			return nil
		}

		settings, err := json.Marshal(p.Settings)
		if err != nil {
			return err
		}
		var username any
		if p.Username != nil {
			username = *p.Username
		}
		p.UpdatedAt = s.now()
		_, err = tx.ExecContext(ctx,
			`UPDATE profiles SET full_name = ?, username = ?, avatar_url = ?, bio = ?, settings = ?, updated_at = ? WHERE user_id = ?`,
			p.FullName, username, p.AvatarURL, p.Bio, string(settings), p.UpdatedAt, userID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("update profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return profile, changed, nil
}
