package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/backoffice_ledger/internal/core/ports/services"
	"github.com/SscSPs/backoffice_ledger/internal/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	balanceVersionKey = "ledger:balances:version"
	balanceKeyPrefix  = "ledger:balances"
)

// BalanceCache caches the fund balance list under a versioned key.
// Invalidate bumps the version, so entries written by readers that raced a mutation are never served.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBalanceCache instantiates the cache. A nil client disables caching.
func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{client: client, ttl: ttl}
}

var _ portssvc.BalanceCache = (*BalanceCache)(nil)

func (c *BalanceCache) enabled() bool {
	return c != nil && c.client != nil
}

// version returns the current cache version, initialising when missing.
func (c *BalanceCache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, balanceVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// SETNX so concurrent initialisers agree on the first version.
		if err := c.client.SetNX(ctx, balanceVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, balanceVersionKey).Int64()
	}
	return ver, err
}

// FetchBalances returns cached balances or populates the cache using load.
// Redis failures fall back to load.
func (c *BalanceCache) FetchBalances(ctx context.Context, load func(context.Context) ([]domain.FundBalance, error)) ([]domain.FundBalance, error) {
	if load == nil {
		return nil, errors.New("cache: loader required")
	}
	if !c.enabled() {
		return load(ctx)
	}
	logger := middleware.GetLoggerFromCtx(ctx)

	ver, err := c.version(ctx)
	if err != nil {
		logger.Warn("Balance cache unavailable", slog.String("error", err.Error()))
		return load(ctx)
	}
	key := fmt.Sprintf("%s:%d", balanceKeyPrefix, ver)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var balances []domain.FundBalance
		if err := json.Unmarshal(payload, &balances); err == nil {
			return balances, nil
		}
		logger.Warn("Discarding unreadable balance cache entry", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn("Balance cache read failed", slog.String("error", err.Error()))
		return load(ctx)
	}

	balances, err := load(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(balances)
	if err != nil {
		return balances, nil
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Warn("Balance cache write failed", slog.String("error", err.Error()))
	}
	return balances, nil
}

// Invalidate bumps the version so the next read reloads from the database.
func (c *BalanceCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	if err := c.client.Incr(ctx, balanceVersionKey).Err(); err != nil {
		return fmt.Errorf("cache: bump balance version: %w", err)
	}
	return nil
}
