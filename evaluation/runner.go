//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-evalkit-go/log"
)

// DefaultParallelism is the default worker pool size for a run.
const DefaultParallelism = 4

// SampleResult pairs a sample with its verdict. Err is set when the
// sample could not be scored at all; the rest of the run is unaffected.
type SampleResult struct {
	Sample *Sample      `json:"sample"`
	Result *ScoreResult `json:"result,omitempty"`
	Err    string       `json:"error,omitempty"`
}

// RunResult is the outcome of scoring a sample set.
type RunResult struct {
	// RunID identifies this run.
	RunID string `json:"run_id"`
	// MetricName is the metric that produced the scores.
	MetricName string `json:"metric_name"`
	// Results holds one entry per input sample, in input order.
	Results []*SampleResult `json:"results"`
}

// MeanScore averages the scores of successfully scored samples.
func (r *RunResult) MeanScore() (float64, bool) {
	var total float64
	var count int
	for _, res := range r.Results {
		if res.Result == nil {
			continue
		}
		total += res.Result.Score
		count++
	}
	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}

// Runner scores sample sets with a metric over a worker pool.
type Runner struct {
	metric      Metric
	parallelism int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithParallelism sets the worker pool size.
func WithParallelism(n int) RunnerOption {
	return func(r *Runner) {
		r.parallelism = n
	}
}

// NewRunner creates a runner for metric.
func NewRunner(metric Metric, opts ...RunnerOption) (*Runner, error) {
	if metric == nil {
		return nil, errors.New("metric is required")
	}
	r := &Runner{
		metric:      metric,
		parallelism: DefaultParallelism,
	}
	for _, o := range opts {
		o(r)
	}
	if r.parallelism <= 0 {
		return nil, fmt.Errorf("parallelism must be greater than 0, got %d", r.parallelism)
	}
	return r, nil
}

// Run scores every sample. Individual sample failures are recorded in
// the corresponding SampleResult and do not abort the run.
func (r *Runner) Run(ctx context.Context, samples []*Sample) (*RunResult, error) {
	result := &RunResult{
		RunID:      uuid.New().String(),
		MetricName: r.metric.Name(),
		Results:    make([]*SampleResult, len(samples)),
	}
	pool, err := ants.NewPool(r.parallelism)
	if err != nil {
		return nil, fmt.Errorf("create scoring pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, sample := range samples {
		i, sample := i, sample
		wg.Add(1)
		task := func() {
			defer wg.Done()
			result.Results[i] = r.scoreSample(ctx, sample)
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			result.Results[i] = &SampleResult{
				Sample: sample,
				Err:    fmt.Sprintf("submit scoring task: %v", err),
			}
		}
	}
	wg.Wait()
	log.Infof("evaluation run %s: scored %d samples with %s",
		result.RunID, len(samples), r.metric.Name())
	return result, nil
}

func (r *Runner) scoreSample(ctx context.Context, sample *Sample) *SampleResult {
	out := &SampleResult{Sample: sample}
	score, err := r.metric.Score(ctx, sample)
	if err != nil {
		out.Err = err.Error()
		return out
	}
	out.Result = score
	return out
}
