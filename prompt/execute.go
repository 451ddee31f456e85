//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

package prompt

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"trpc.group/trpc-go/trpc-evalkit-go/log"
	"trpc.group/trpc-go/trpc-evalkit-go/model"
)

// Options configure prompt execution.
type Options struct {
	// Temperature for sampling. Nil leaves the model default.
	Temperature *float64
	// Stop sequences for generation.
	Stop []string
	// MaxTokens caps the completion length. Nil leaves the model default.
	MaxTokens *int
	// MaxRetries is the repair budget per parsed candidate.
	MaxRetries int
}

func newOptions(opts ...Option) *Options {
	options := &Options{
		MaxRetries: DefaultMaxRetries,
	}
	for _, o := range opts {
		o(options)
	}
	return options
}

// Option configures Options.
type Option func(*Options)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// WithStop sets the stop sequences.
func WithStop(stop ...string) Option {
	return func(o *Options) {
		o.Stop = stop
	}
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = &n
	}
}

// WithMaxRetries sets the repair budget per parsed candidate.
func WithMaxRetries(n int) Option {
	return func(o *Options) {
		o.MaxRetries = n
	}
}

// Execute formats the prompt for input, requests one completion and
// decodes it with the repair loop. Model-call failures propagate
// unchanged; only malformed output is retried.
func Execute[I, O any](
	ctx context.Context,
	m model.Model,
	p *Prompt[I, O],
	input I,
	opts ...Option,
) (O, error) {
	var zero O
	options := newOptions(opts...)
	text, err := p.Format(input)
	if err != nil {
		return zero, err
	}
	rsp, err := generateWithOptions(ctx, m, text, options, 1)
	if err != nil {
		return zero, err
	}
	return ParseWithRepair[O](ctx, m, rsp.Choices[0].Message.Content, text, options.MaxRetries)
}

// ExecuteN requests n independent completions in one model call and
// decodes each candidate with its own repair budget. One candidate's
// failure does not abort the others: successfully decoded candidates are
// returned and the failures are logged. An error is returned only when
// the model call fails or no candidate could be decoded.
func ExecuteN[I, O any](
	ctx context.Context,
	m model.Model,
	p *Prompt[I, O],
	input I,
	n int,
	opts ...Option,
) ([]O, error) {
	if n <= 0 {
		return nil, fmt.Errorf("completion count must be positive, got %d", n)
	}
	options := newOptions(opts...)
	text, err := p.Format(input)
	if err != nil {
		return nil, err
	}
	rsp, err := generateWithOptions(ctx, m, text, options, n)
	if err != nil {
		return nil, err
	}
	candidates := rsp.Choices
	outs := make([]*O, len(candidates))
	errs := make([]error, len(candidates))
	var g errgroup.Group
	for i, choice := range candidates {
		i, choice := i, choice
		g.Go(func() error {
			out, perr := ParseWithRepair[O](ctx, m, choice.Message.Content, text, options.MaxRetries)
			if perr != nil {
				errs[i] = fmt.Errorf("candidate %d: %w", i, perr)
				return nil
			}
			outs[i] = &out
			return nil
		})
	}
	_ = g.Wait()

	results := make([]O, 0, len(candidates))
	var failures []error
	for i := range candidates {
		if errs[i] != nil {
			failures = append(failures, errs[i])
			continue
		}
		results = append(results, *outs[i])
	}
	if len(results) == 0 {
		return nil, errors.Join(failures...)
	}
	for _, ferr := range failures {
		log.Warnf("prompt %s: dropped candidate: %v", p.Name, ferr)
	}
	return results, nil
}

// generate issues a single-completion request with default options.
func generate(ctx context.Context, m model.Model, text string, options *Options) (*model.Response, error) {
	if options == nil {
		options = newOptions()
	}
	return generateWithOptions(ctx, m, text, options, 1)
}

// generateWithOptions issues the model call and normalizes empty
// responses into errors so callers can index choices safely.
func generateWithOptions(
	ctx context.Context,
	m model.Model,
	text string,
	options *Options,
	n int,
) (*model.Response, error) {
	req := &model.Request{
		Messages: []model.Message{model.NewUserMessage(text)},
		GenerationConfig: model.GenerationConfig{
			Temperature:    options.Temperature,
			Stop:           options.Stop,
			MaxTokens:      options.MaxTokens,
			NumCompletions: n,
		},
	}
	rsp, err := m.GenerateContent(ctx, req)
	if err != nil {
		return nil, err
	}
	if rsp == nil || len(rsp.Choices) == 0 {
		return nil, errors.New("model returned no completions")
	}
	if rsp.Error != nil {
		return nil, rsp.Error
	}
	return rsp, nil
}
