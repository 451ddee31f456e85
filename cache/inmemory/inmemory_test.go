//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-evalkit-go/cache"
)

func TestBackendRoundTrip(t *testing.T) {
	b := New()
	ctx := context.Background()

	_, err := b.Get(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	ok, err := b.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Set(ctx, "k", []byte("v1")))
	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	ok, err = b.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	// Replace is allowed.
	require.NoError(t, b.Set(ctx, "k", []byte("v2")))
	got, err = b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestBackendCopiesValues(t *testing.T) {
	b := New()
	ctx := context.Background()

	in := []byte("value")
	require.NoError(t, b.Set(ctx, "k", in))
	in[0] = 'X'

	out, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), out)

	out[0] = 'Y'
	again, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), again)
}

func TestBackendConcurrentAccess(t *testing.T) {
	b := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = b.Set(ctx, "shared", []byte("payload"))
				_, _ = b.Get(ctx, "shared")
				_, _ = b.Has(ctx, "shared")
			}
		}()
	}
	wg.Wait()

	got, err := b.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}
