package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/universe-app/universe/internal/cache"
	"github.com/universe-app/universe/internal/models"
)

const sessionCachePrefix = "session:"

// StoreSessionCache adapts a cache.Store into a SessionCache.
type StoreSessionCache struct {
	store cache.Store
}

// NewStoreSessionCache wraps the shared cache store for session lookups.
func NewStoreSessionCache(store cache.Store) *StoreSessionCache {
	return &StoreSessionCache{store: store}
}

func (c *StoreSessionCache) Get(ctx context.Context, refreshToken string) (*models.Session, error) {
	data, ok, err := c.store.Get(ctx, sessionCachePrefix+refreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("session cache: decode: %w", err)
	}
	return &session, nil
}

func (c *StoreSessionCache) Set(ctx context.Context, session *models.Session, ttl time.Duration) error {
	if session == nil {
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session cache: encode: %w", err)
	}
	return c.store.Set(ctx, sessionCachePrefix+session.RefreshToken, data, ttl)
}

func (c *StoreSessionCache) Delete(ctx context.Context, refreshToken string) error {
	return c.store.Delete(ctx, sessionCachePrefix+refreshToken)
}
