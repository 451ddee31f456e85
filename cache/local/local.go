//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides the reference disk-backed cache backend. Each
// entry is one JSON file under the base directory, named by the opaque
// digest key. There is no expiry and no size bound.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trpc.group/trpc-go/trpc-evalkit-go/cache"
)

// DefaultBaseDir is the default base directory for cache entries.
const DefaultBaseDir = ".evalkit-cache"

const entryExtension = ".json"

var _ cache.Backend = (*backend)(nil)

type backend struct {
	baseDir string
}

// New creates a disk-backed cache backend rooted at baseDir.
func New(baseDir string) cache.Backend {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	return &backend{baseDir: baseDir}
}

// NewFromEnv builds a memoizer over a disk backend using the process
// environment (EVALKIT_CACHE_ENABLED, EVALKIT_CACHE_DIR).
func NewFromEnv(ctx context.Context) (*cache.Memoizer, error) {
	cfg, err := cache.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return cache.New(
		cache.WithEnabled(cfg.Enabled),
		cache.WithBackend(New(cfg.Dir)),
	), nil
}

func (b *backend) entryPath(key string) (string, error) {
	// Keys are hex digests; reject anything that could escape baseDir.
	if key == "" || strings.ContainsAny(key, `/\.`) {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(b.baseDir, key+entryExtension), nil
}

// Get returns the value stored under key, or cache.ErrNotFound.
func (b *backend) Get(_ context.Context, key string) ([]byte, error) {
	path, err := b.entryPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry %s: %w", key, err)
	}
	return data, nil
}

// Set stores value under key. The write goes to a temporary file first
// and is renamed into place, so readers never observe a partial entry.
func (b *backend) Set(_ context.Context, key string, value []byte) error {
	path, err := b.entryPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(b.baseDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", b.baseDir, err)
	}
	tmp, err := os.CreateTemp(b.baseDir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp entry for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache entry %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store cache entry %s: %w", key, err)
	}
	return nil
}

// Has reports whether an entry exists for key.
func (b *backend) Has(_ context.Context, key string) (bool, error) {
	path, err := b.entryPath(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("stat cache entry %s: %w", key, err)
	}
	return true, nil
}
