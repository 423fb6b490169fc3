// Package redisstore keeps session tokens in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/caronte/pkg/credstore"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces session keys.
const DefaultPrefix = "caronte:session"

// Store writes tokens to "<prefix>:<id>" keys.
type Store struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a Store. A zero ttl keeps records until they are deleted.
func New(client *redis.Client, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{redis: client, prefix: prefix, ttl: ttl}
}

// NewFromURL parses a redis:// URL and creates a Store on a new client.
func NewFromURL(url string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redisstore: parse url: %w", err)
	}
	return New(redis.NewClient(opts), DefaultPrefix, ttl), nil
}

func (s *Store) key(id string) string {
	return s.prefix + ":" + id
}

// Get returns the token under id. With a ttl set, reading it restarts the
// expiry so sessions in use do not lapse.
func (s *Store) Get(ctx context.Context, id string) (string, error) {
	var cmd *redis.StringCmd
	if s.ttl > 0 {
		cmd = s.redis.GetEx(ctx, s.key(id), s.ttl)
	} else {
		cmd = s.redis.Get(ctx, s.key(id))
	}
	raw, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return "", credstore.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redisstore: get: %w", err)
	}
	return raw, nil
}

func (s *Store) Put(ctx context.Context, id, raw string) error {
	if err := s.redis.Set(ctx, s.key(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redisstore: del: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// Close releases the client.
func (s *Store) Close() error {
	return s.redis.Close()
}
