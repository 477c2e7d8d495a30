// Package cache serves immutable credential records from Redis.
//
// Only credentials are cached: they never change after issuance, so a cached
// copy can never disagree with the store. Delegates and running totals are
// always read from the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"impactledger/internal/registry/models"
	id "impactledger/pkg/domain"
	"impactledger/pkg/platform/sentinel"
)

// ErrNotFound is returned on a cache miss.
var ErrNotFound = sentinel.ErrNotFound

const keyPrefix = "impactledger:credential:"

// Metrics observes cache effectiveness. A nil Metrics is allowed.
type Metrics interface {
	IncCacheHit()
	IncCacheMiss()
}

// RedisCache stores credentials as JSON under a per-ID key.
type RedisCache struct {
	client  redis.Cmdable
	ttl     time.Duration
	metrics Metrics
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration, metrics Metrics) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, metrics: metrics}
}

// FindCredential returns the cached credential or ErrNotFound.
func (c *RedisCache) FindCredential(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	raw, err := c.client.Get(ctx, key(credentialID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.miss()
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get cached credential: %w", err)
	}
	var credential models.Credential
	if err := json.Unmarshal(raw, &credential); err != nil {
		return nil, fmt.Errorf("decode cached credential: %w", err)
	}
	c.hit()
	return &credential, nil
}

// SaveCredential caches credential for the configured TTL.
func (c *RedisCache) SaveCredential(ctx context.Context, credential *models.Credential) error {
	raw, err := json.Marshal(credential)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	if err := c.client.Set(ctx, key(credential.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache credential: %w", err)
	}
	return nil
}

func key(credentialID id.CredentialID) string {
	return keyPrefix + credentialID.String()
}

func (c *RedisCache) hit() {
	if c.metrics != nil {
		c.metrics.IncCacheHit()
	}
}

func (c *RedisCache) miss() {
	if c.metrics != nil {
		c.metrics.IncCacheMiss()
	}
}
