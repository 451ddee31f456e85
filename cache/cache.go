//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

// Package cache provides transparent memoization of model calls keyed by a
// deterministic fingerprint of the call's logical arguments.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sethvargo/go-envconfig"

	"trpc.group/trpc-go/trpc-evalkit-go/log"
	"trpc.group/trpc-go/trpc-evalkit-go/telemetry"
)

// ErrNotFound is returned by Backend.Get when no entry exists for a key.
var ErrNotFound = errors.New("cache: entry not found")

// Backend is the minimal key/value capability the memoizer depends on.
// Values are opaque serialized payloads. Implementations must support
// concurrent reads and writes, and must tolerate duplicate writes to the
// same key (concurrent callers that both miss are each allowed to compute
// and store; the values are expected to be equal).
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any existing entry.
	Set(ctx context.Context, key string, value []byte) error
	// Has reports whether an entry exists for key.
	Has(ctx context.Context, key string) (bool, error)
}

// Memoizer memoizes call results in a pluggable backend. The enable switch
// is fixed at construction; a disabled memoizer passes every call through
// without touching the backend, so toggling caching off behaves exactly
// like caching against an empty store (modulo latency).
type Memoizer struct {
	enabled  bool
	backend  Backend
	excluded map[string]struct{}
}

// New creates a Memoizer. Caching is off by default.
func New(opts ...Option) *Memoizer {
	options := newOptions(opts...)
	m := &Memoizer{
		enabled:  options.Enabled,
		backend:  options.Backend,
		excluded: make(map[string]struct{}, len(options.ExcludedParams)),
	}
	for _, name := range options.ExcludedParams {
		m.excluded[name] = struct{}{}
	}
	return m
}

// Enabled reports whether the memoizer reads and writes its backend.
func (m *Memoizer) Enabled() bool {
	return m != nil && m.enabled && m.backend != nil
}

// Key computes the cache key for a call after applying the memoizer's
// excluded-parameter set.
func (m *Memoizer) Key(call Call) (string, error) {
	return Fingerprint(call, m.excluded)
}

// Do runs fn through the memoizer m under the identity of call.
//
// With caching disabled the call passes through untouched. Otherwise the
// call's fingerprint is computed synchronously, the backend is consulted,
// and on a miss fn is invoked; only a fully completed, successful result
// is stored. Errors from fn propagate unchanged and are never cached.
// Backend failures degrade to pass-through-without-caching: they are
// logged, never surfaced as the call's result.
//
// Do makes no single-flight guarantee: concurrent callers sharing one
// fingerprint may each invoke fn and each write the result.
func Do[T any](ctx context.Context, m *Memoizer, call Call, fn func(context.Context) (T, error)) (T, error) {
	if !m.Enabled() {
		return fn(ctx)
	}
	key, err := m.Key(call)
	if err != nil {
		// Unkeyable arguments disable caching for this call only.
		log.Warnf("cache: fingerprint %s: %v", call.Callee, err)
		return fn(ctx)
	}
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.OperationCacheLookup)
	defer span.End()
	span.SetAttributes(telemetry.KeyCacheKey.String(key))
	var zero T
	data, err := m.backend.Get(ctx, key)
	if err == nil {
		var stored T
		if uerr := json.Unmarshal(data, &stored); uerr == nil {
			span.SetAttributes(telemetry.KeyCacheHit.Bool(true))
			return stored, nil
		} else {
			log.Warnf("cache: decode entry %s: %v", key, uerr)
		}
	} else if !errors.Is(err, ErrNotFound) {
		log.Warnf("cache: get %s: %v", key, err)
	}
	span.SetAttributes(telemetry.KeyCacheHit.Bool(false))
	out, err := fn(ctx)
	if err != nil {
		return zero, err
	}
	payload, err := json.Marshal(out)
	if err != nil {
		log.Warnf("cache: encode result %s: %v", key, err)
		return out, nil
	}
	if serr := m.backend.Set(ctx, key, payload); serr != nil {
		log.Warnf("cache: set %s: %v", key, serr)
	}
	return out, nil
}

// Config is the environment-driven cache configuration.
type Config struct {
	// Enabled toggles caching process-wide.
	Enabled bool `env:"EVALKIT_CACHE_ENABLED, default=false"`
	// Dir is the base directory used by the disk backend.
	Dir string `env:"EVALKIT_CACHE_DIR, default=.evalkit-cache"`
}

// LoadConfig reads the cache configuration from the process environment.
func LoadConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load cache config: %w", err)
	}
	return &cfg, nil
}
