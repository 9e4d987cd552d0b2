package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.vocdoni.io/dvote/log"
)

// RedisStorage implements Storage over a Redis (or Dragonfly) server using
// plain string values.
type RedisStorage struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisStorage connects to the Redis server at addr and checks the
// connection.
func NewRedisStorage(addr, password string, database int) (*RedisStorage, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address is not defined")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})
	rs := &RedisStorage{client: client, timeout: 5 * time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), rs.timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cannot connect to redis: %w", err)
	}
	log.Infow("connected to redis", "addr", addr, "db", database)
	return rs, nil
}

// Load decodes the value stored at key into v.
func (rs *RedisStorage) Load(key string, v any) error {
	ctx, cancel := context.WithTimeout(context.Background(), rs.timeout)
	defer cancel()
	data, err := rs.client.Get(ctx, Namespace+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: cannot decode %s: %v", ErrInvalidData, key, err)
	}
	return nil
}

// Save stores the JSON encoding of v at key, without expiration.
func (rs *RedisStorage) Save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), rs.timeout)
	defer cancel()
	if err := rs.client.Set(ctx, Namespace+key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (rs *RedisStorage) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rs.timeout)
	defer cancel()
	if err := rs.client.Del(ctx, Namespace+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close closes the client connections.
func (rs *RedisStorage) Close() {
	if err := rs.client.Close(); err != nil {
		log.Warnw("failed to close redis client", "error", err)
	}
}
