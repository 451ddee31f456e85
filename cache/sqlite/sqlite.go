//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

// Package sqlite provides a sqlite-backed cache backend implementation.
// It keeps all entries in a single key/value table inside one database
// file, which makes the cache easy to ship around or inspect.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"trpc.group/trpc-go/trpc-evalkit-go/cache"
)

// DefaultTableName is the default table holding cache entries.
const DefaultTableName = "evalkit_cache"

const defaultInitTimeout = 10 * time.Second

var _ cache.Backend = (*backend)(nil)

type backend struct {
	db    *sql.DB
	table string
}

// Options configure the sqlite backend.
type Options struct {
	// TableName is the table holding cache entries.
	TableName string
	// InitTimeout bounds schema initialization.
	InitTimeout time.Duration
}

// Option configures Options.
type Option func(*Options)

// WithTableName overrides the entry table name.
func WithTableName(name string) Option {
	return func(o *Options) {
		o.TableName = name
	}
}

// WithInitTimeout overrides the schema initialization timeout.
func WithInitTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.InitTimeout = d
	}
}

// New opens (creating if needed) the database file at path and ensures
// the entry table exists.
func New(path string, opts ...Option) (cache.Backend, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	options := &Options{
		TableName:   DefaultTableName,
		InitTimeout: defaultInitTimeout,
	}
	for _, o := range opts {
		o(options)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database %s: %w", path, err)
	}
	b := &backend{db: db, table: options.TableName}
	ctx, cancel := context.WithTimeout(context.Background(), options.InitTimeout)
	defer cancel()
	if err := b.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cache database %s: %w", path, err)
	}
	return b, nil
}

// Close releases the underlying database handle.
func (b *backend) Close() error {
	return b.db.Close()
}

func (b *backend) ensureSchema(ctx context.Context) error {
	query := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (cache_key TEXT PRIMARY KEY, value BLOB NOT NULL, created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)",
		b.table,
	)
	_, err := b.db.ExecContext(ctx, query)
	return err
}

// Get returns the value stored under key, or cache.ErrNotFound.
func (b *backend) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf("SELECT value FROM %s WHERE cache_key = ?", b.table)
	var value []byte
	if err := b.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cache.ErrNotFound
		}
		return nil, fmt.Errorf("get cache entry %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key. INSERT OR REPLACE keeps duplicate writes
// from concurrent callers idempotent.
func (b *backend) Set(ctx context.Context, key string, value []byte) error {
	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (cache_key, value) VALUES (?, ?)", b.table)
	if _, err := b.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set cache entry %s: %w", key, err)
	}
	return nil
}

// Has reports whether an entry exists for key.
func (b *backend) Has(ctx context.Context, key string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE cache_key = ?", b.table)
	var one int
	if err := b.db.QueryRowContext(ctx, query, key).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check cache entry %s: %w", key, err)
	}
	return true, nil
}
