//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

// Package redis provides a redis-backed cache backend implementation.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trpc.group/trpc-go/trpc-evalkit-go/cache"
)

// DefaultKeyPrefix namespaces evalkit entries inside a shared instance.
const DefaultKeyPrefix = "evalkit:cache:"

var _ cache.Backend = (*backend)(nil)

type backend struct {
	client    redis.UniversalClient
	keyPrefix string
}

// Options configure the redis backend.
type Options struct {
	// KeyPrefix is prepended to every cache key.
	KeyPrefix string
}

// Option configures Options.
type Option func(*Options)

// WithKeyPrefix overrides the key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(o *Options) {
		o.KeyPrefix = prefix
	}
}

// New creates a redis-backed cache backend over an existing client.
// Entries have no expiry; eviction is the instance's concern.
func New(client redis.UniversalClient, opts ...Option) (cache.Backend, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	options := &Options{KeyPrefix: DefaultKeyPrefix}
	for _, o := range opts {
		o(options)
	}
	return &backend{client: client, keyPrefix: options.KeyPrefix}, nil
}

func (b *backend) key(key string) string {
	return b.keyPrefix + key
}

// Get returns the value stored under key, or cache.ErrNotFound.
func (b *backend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cache entry %s: %w", key, err)
	}
	return data, nil
}

// Set stores value under key with no expiry. SET is idempotent, so
// duplicate writes from concurrent callers are harmless.
func (b *backend) Set(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, b.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set cache entry %s: %w", key, err)
	}
	return nil
}

// Has reports whether an entry exists for key.
func (b *backend) Has(ctx context.Context, key string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check cache entry %s: %w", key, err)
	}
	return n > 0, nil
}
