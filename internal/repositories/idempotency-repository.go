package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const idempotencyPending = "pending"

// IdempotencyState describes what a reservation attempt found.
type IdempotencyState int

const (
	IdempotencyReserved IdempotencyState = iota + 1
	IdempotencyInFlight
	IdempotencyCompleted
)

type IdempotencyRepositoryInterface interface {
	// Reserve claims key. When the key was already completed the stored result is returned.
	Reserve(ctx context.Context, key string) (IdempotencyState, string, error)
	Complete(ctx context.Context, key string, result string) error
	Lookup(ctx context.Context, key string) (string, bool, error)
	Release(ctx context.Context, key string) error
}

type RedisIdempotencyRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyRepository(client *redis.Client, ttl time.Duration) IdempotencyRepositoryInterface {
	return &RedisIdempotencyRepository{client: client, ttl: ttl}
}

func (r *RedisIdempotencyRepository) Reserve(ctx context.Context, key string) (IdempotencyState, string, error) {
	ok, err := r.client.SetNX(ctx, key, idempotencyPending, r.ttl).Result()
	if err != nil {
		return 0, "", err
	}
	if ok {
		return IdempotencyReserved, "", nil
	}
	stored, found, err := r.Lookup(ctx, key)
	if err != nil {
		return 0, "", err
	}
	if !found {
		// expired between SETNX and GET
		return r.Reserve(ctx, key)
	}
	if stored == idempotencyPending {
		return IdempotencyInFlight, "", nil
	}
	return IdempotencyCompleted, stored, nil
}

func (r *RedisIdempotencyRepository) Complete(ctx context.Context, key string, result string) error {
	return r.client.Set(ctx, key, result, r.ttl).Err()
}

func (r *RedisIdempotencyRepository) Lookup(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *RedisIdempotencyRepository) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
