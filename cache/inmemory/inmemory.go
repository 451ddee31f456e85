//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory cache backend implementation.
package inmemory

import (
	"context"
	"sync"

	"trpc.group/trpc-go/trpc-evalkit-go/cache"
)

var _ cache.Backend = (*backend)(nil)

// backend implements cache.Backend backed by a map. Entries are copied on
// the way in and out to avoid accidental mutation.
type backend struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// New creates an in-memory cache backend.
func New() cache.Backend {
	return &backend{
		entries: make(map[string][]byte),
	}
}

// Get returns the value stored under key, or cache.ErrNotFound.
func (b *backend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok := b.entries[key]
	if !ok {
		return nil, cache.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores value under key, replacing any existing entry.
func (b *backend) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = stored
	return nil
}

// Has reports whether an entry exists for key.
func (b *backend) Has(_ context.Context, key string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[key]
	return ok, nil
}
