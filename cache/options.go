//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

package cache

// DefaultExcludedParams are the keyword argument names removed before
// fingerprinting: they carry handles to the surrounding machinery, not
// inputs of the logical call.
var DefaultExcludedParams = []string{"callbacks", "client"}

// Options configure a Memoizer.
type Options struct {
	// Enabled toggles caching. Default false.
	Enabled bool
	// Backend stores the entries. A nil backend leaves the memoizer in
	// pass-through mode.
	Backend Backend
	// ExcludedParams are keyword argument names stripped before
	// fingerprinting.
	ExcludedParams []string
}

func newOptions(opts ...Option) *Options {
	options := &Options{
		ExcludedParams: DefaultExcludedParams,
	}
	for _, o := range opts {
		o(options)
	}
	return options
}

// Option configures Options.
type Option func(*Options)

// WithEnabled sets the enable switch.
func WithEnabled(enabled bool) Option {
	return func(o *Options) {
		o.Enabled = enabled
	}
}

// WithBackend sets the storage backend.
func WithBackend(b Backend) Option {
	return func(o *Options) {
		o.Backend = b
	}
}

// WithExcludedParams replaces the excluded keyword parameter names.
func WithExcludedParams(names ...string) Option {
	return func(o *Options) {
		o.ExcludedParams = names
	}
}
