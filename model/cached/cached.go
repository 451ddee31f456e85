//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

// Package cached wraps a model with the memoizer so that repeated logical
// calls are answered from the cache. The wrapper is transparent: callers
// observe the same contract as the inner model, including error behavior.
package cached

import (
	"context"
	"errors"

	"trpc.group/trpc-go/trpc-evalkit-go/cache"
	"trpc.group/trpc-go/trpc-evalkit-go/model"
)

// calleeName is the fingerprint identity of the generate operation. The
// model name travels in the keyword arguments, so two wrappers around
// different models never share entries.
const calleeName = "model.generate_content"

var _ model.Model = (*Model)(nil)

// Model memoizes an inner model's GenerateContent results.
type Model struct {
	inner model.Model
	memo  *cache.Memoizer
}

// New wraps inner with memoizer memo. A nil or disabled memoizer leaves
// every call passing straight through.
func New(inner model.Model, memo *cache.Memoizer) (*Model, error) {
	if inner == nil {
		return nil, errors.New("inner model is required")
	}
	return &Model{inner: inner, memo: memo}, nil
}

// Info implements the model.Model interface.
func (m *Model) Info() model.Info {
	return m.inner.Info()
}

// GenerateContent implements the model.Model interface. The call is keyed
// by the model name, the messages in order, and the generation
// parameters; the client handle itself never enters the fingerprint.
// Function-level errors from the inner model propagate unchanged and are
// never stored.
func (m *Model) GenerateContent(
	ctx context.Context,
	request *model.Request,
) (*model.Response, error) {
	if request == nil {
		return nil, errors.New("request cannot be nil")
	}
	call := cache.Call{
		Callee: calleeName,
		KWArgs: map[string]any{
			"model":      m.inner.Info().Name,
			"messages":   request.Messages,
			"generation": request.GenerationConfig,
		},
	}
	return cache.Do(ctx, m.memo, call, func(ctx context.Context) (*model.Response, error) {
		rsp, err := m.inner.GenerateContent(ctx, request)
		if err != nil {
			return nil, err
		}
		if rsp != nil && rsp.Error != nil {
			// API-level failures are results, not values worth keeping:
			// surface them as errors so they are never cached.
			return nil, rsp.Error
		}
		return rsp, nil
	})
}
