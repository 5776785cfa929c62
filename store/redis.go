package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps records as plain string values
type RedisStore struct {
	rdb   *redis.Client
	limit int
}

// NewRedisStore connects to addr and checks the connection
func NewRedisStore(ctx context.Context, addr string, maxBytes int) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreFromClient(rdb, maxBytes), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(rdb *redis.Client, maxBytes int) *RedisStore {
	return &RedisStore{rdb: rdb, limit: limitOrDefault(maxBytes)}
}

func (r *RedisStore) SaveRecord(ctx context.Context, key string, blob []byte) error {
	if err := checkSize(key, blob, r.limit); err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, key, blob, 0).Err(); err != nil {
		if isOutOfMemory(err) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) LoadRecord(ctx context.Context, key string) ([]byte, bool, error) {
	blob, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return blob, true, nil
}

func (r *RedisStore) DeleteRecord(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys with the given prefix in sorted order
func (r *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	iter := r.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

func isOutOfMemory(err error) bool {
	var rerr redis.Error
	if errors.As(err, &rerr) {
		return strings.HasPrefix(rerr.Error(), "OOM")
	}
	return false
}
