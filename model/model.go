//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

// Package model defines the model-calling capability consumed by the
// evaluation toolkit: given a prompt, return one or more text completions.
package model

import "context"

// Info describes a model instance.
type Info struct {
	// Name is the model name, e.g. "gpt-4o-mini".
	Name string
}

// Model is the interface every judge model implementation satisfies.
//
// A non-nil error from GenerateContent is a function-level (transport,
// configuration) failure: the request never produced completions and the
// caller must not treat it as model output. API-level failures that arrive
// with a response body are reported through Response.Error instead.
type Model interface {
	// GenerateContent produces completions for the request.
	GenerateContent(ctx context.Context, request *Request) (*Response, error)

	// Info returns basic information about the model.
	Info() Info
}
