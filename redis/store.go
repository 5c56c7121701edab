// Package redis implements a shared object store and a progress bus on Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/docgap"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "docgap:"

// Open connects to the Redis server at addr and verifies the connection.
func Open(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

var _ docgap.ObjectStore = (*ObjectStore)(nil)

// ObjectStore stores blobs as Redis string values.
type ObjectStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// StoreOption configures an ObjectStore.
type StoreOption func(*ObjectStore)

// WithPrefix replaces DefaultPrefix.
func WithPrefix(prefix string) StoreOption {
	return func(s *ObjectStore) { s.prefix = prefix }
}

// WithTTL expires values after ttl. Zero keeps values until deleted.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *ObjectStore) { s.ttl = ttl }
}

// NewObjectStore creates a new ObjectStore.
func NewObjectStore(client *redis.Client, opts ...StoreOption) *ObjectStore {
	s := &ObjectStore{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, docgap.Errorf(docgap.ENOTFOUND, "object %q not found", key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (s *ObjectStore) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return docgap.Errorf(docgap.EINVALID, "key required")
	}
	if err := s.client.Set(ctx, s.prefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every key that starts with prefix and returns how
// many were removed.
func (s *ObjectStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	iter := s.client.Scan(ctx, 0, s.prefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return n, fmt.Errorf("redis del %s: %w", iter.Val(), err)
		}
		n++
	}
	if err := iter.Err(); err != nil {
		return n, fmt.Errorf("redis scan: %w", err)
	}
	return n, nil
}
