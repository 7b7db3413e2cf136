package genstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisGenStore shares generations across processes and survives restarts.
// It does not own the client; Close leaves it open for the provider using it.
type RedisGenStore struct {
	rdb redis.UniversalClient
}

var _ GenStore = (*RedisGenStore)(nil)

func NewRedisGenStore(client redis.UniversalClient) *RedisGenStore {
	return &RedisGenStore{rdb: client}
}

func (s *RedisGenStore) key(name string) string { return "gen:" + name }

// Current returns the current generation. Missing keys are treated as generation 0.
func (s *RedisGenStore) Current(ctx context.Context, name string) (uint64, error) {
	res, err := s.rdb.Get(ctx, s.key(name)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis gen parse: %w", err)
	}
	return u, nil
}

// Bump is a single INCR, atomic across processes.
func (s *RedisGenStore) Bump(ctx context.Context, name string) (uint64, error) {
	return s.rdb.Incr(ctx, s.key(name)).Uint64()
}

func (s *RedisGenStore) Close(context.Context) error { return nil }
