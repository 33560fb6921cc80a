package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrohub/marketplace/internal/domain"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the user's cart, or an empty cart when the key is missing,
// the payload is corrupt, or the store is unreachable. Reads never surface
// an error to the caller.
func (s *RedisStore) Get(ctx context.Context, userID int64) (domain.Cart, error) {
	cart := domain.Cart{UserID: userID}

	data, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart, nil
	}
	if err != nil {
		s.logger.WarnContext(ctx, "cart read failed, serving empty cart",
			"user_id", userID, "error", err)
		return cart, nil
	}

	if err := json.Unmarshal(data, &cart.Lines); err != nil {
		s.logger.WarnContext(ctx, "cart payload corrupt, serving empty cart",
			"user_id", userID, "error", err)
		cart.Lines = nil
	}

	return cart, nil
}

// Set replaces the whole cart and resets its TTL.
func (s *RedisStore) Set(ctx context.Context, cart domain.Cart) error {
	data, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(cart.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", errors.Join(ErrCartUnavailable, err))
	}

	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", errors.Join(ErrCartUnavailable, err))
	}

	return nil
}

func (s *RedisStore) Add(ctx context.Context, userID int64, line domain.CartLine) error {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("s.Get: %w", err)
	}

	cart.Upsert(line)

	if err := s.Set(ctx, cart); err != nil {
		return fmt.Errorf("s.Set: %w", err)
	}

	return nil
}

func (s *RedisStore) Remove(ctx context.Context, userID int64, productID int64) error {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("s.Get: %w", err)
	}

	cart.Remove(productID)

	if err := s.Set(ctx, cart); err != nil {
		return fmt.Errorf("s.Set: %w", err)
	}

	return nil
}

func cartKey(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}
