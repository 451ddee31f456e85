//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"net/http"

	openaiopt "github.com/openai/openai-go/option"
)

// options contains configuration options for creating a Model.
type options struct {
	// API key for the OpenAI client.
	APIKey string
	// Base URL for the OpenAI client. It is optional for OpenAI-compatible APIs.
	BaseURL string
	// HTTP client used for requests.
	HTTPClient *http.Client
	// Options for the OpenAI client.
	OpenAIOptions []openaiopt.RequestOption
}

var defaultOptions = options{}

func (o *options) clientOptions() []openaiopt.RequestOption {
	var clientOpts []openaiopt.RequestOption
	if o.APIKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		clientOpts = append(clientOpts, openaiopt.WithHTTPClient(o.HTTPClient))
	}
	return append(clientOpts, o.OpenAIOptions...)
}

// Option configures the model creation.
type Option func(*options)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.APIKey = key
	}
}

// WithBaseURL sets the base URL for OpenAI-compatible endpoints.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.BaseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.HTTPClient = client
	}
}

// WithOpenAIOptions appends raw OpenAI client options.
func WithOpenAIOptions(opts ...openaiopt.RequestOption) Option {
	return func(o *options) {
		o.OpenAIOptions = append(o.OpenAIOptions, opts...)
	}
}
