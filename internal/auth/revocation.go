package auth

import (
	"context"
	"time"

	"CosmicOutfits_OutfitBuilder/internal/cache"
)

const revokedPrefix = "revoked:"

// Revocations remembers signed-out token ids until the tokens would expire anyway.
type Revocations struct {
	cache cache.Cache
}

func NewRevocations(c cache.Cache) *Revocations {
	return &Revocations{cache: c}
}

func (r *Revocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.cache.Set(ctx, revokedPrefix+tokenID, []byte{1}, ttl)
}

func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return r.cache.Exists(ctx, revokedPrefix+tokenID)
}
