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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedMetric scores samples by their question.
type scriptedMetric struct {
	mu     sync.Mutex
	scored []string
	score  func(sample *Sample) (*ScoreResult, error)
}

func (m *scriptedMetric) Name() string {
	return "scripted"
}

func (m *scriptedMetric) Score(_ context.Context, sample *Sample) (*ScoreResult, error) {
	m.mu.Lock()
	m.scored = append(m.scored, sample.Question)
	m.mu.Unlock()
	return m.score(sample)
}

func TestNewRunnerRequiresMetric(t *testing.T) {
	_, err := NewRunner(nil)
	assert.Error(t, err)
}

func TestNewRunnerRejectsNonPositiveParallelism(t *testing.T) {
	_, err := NewRunner(&scriptedMetric{}, WithParallelism(0))
	assert.Error(t, err)
}

func TestRunScoresAllSamplesInOrder(t *testing.T) {
	metric := &scriptedMetric{score: func(sample *Sample) (*ScoreResult, error) {
		return &ScoreResult{Score: float64(len(sample.Question)), Status: EvalStatusPassed}, nil
	}}
	runner, err := NewRunner(metric, WithParallelism(2))
	require.NoError(t, err)

	samples := []*Sample{
		{Question: "q1", Answer: "a1"},
		{Question: "q22", Answer: "a2"},
		{Question: "q333", Answer: "a3"},
	}
	result, err := runner.Run(context.Background(), samples)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "scripted", result.MetricName)
	require.Len(t, result.Results, 3)
	for i, res := range result.Results {
		assert.Same(t, samples[i], res.Sample)
		require.NotNil(t, res.Result)
		assert.Equal(t, float64(len(samples[i].Question)), res.Result.Score)
		assert.Empty(t, res.Err)
	}
	assert.Len(t, metric.scored, 3)
}

func TestRunIsolatesSampleFailures(t *testing.T) {
	metric := &scriptedMetric{score: func(sample *Sample) (*ScoreResult, error) {
		if sample.Question == "bad" {
			return nil, errors.New("judge unavailable")
		}
		return &ScoreResult{Score: 4, Status: EvalStatusPassed}, nil
	}}
	runner, err := NewRunner(metric)
	require.NoError(t, err)

	samples := []*Sample{
		{Question: "good one"},
		{Question: "bad"},
		{Question: "good two"},
	}
	result, err := runner.Run(context.Background(), samples)
	require.NoError(t, err)

	require.Len(t, result.Results, 3)
	assert.NotNil(t, result.Results[0].Result)
	assert.Nil(t, result.Results[1].Result)
	assert.Contains(t, result.Results[1].Err, "judge unavailable")
	assert.NotNil(t, result.Results[2].Result)
}

func TestRunEmptySampleSet(t *testing.T) {
	metric := &scriptedMetric{score: func(*Sample) (*ScoreResult, error) {
		return &ScoreResult{Score: 1}, nil
	}}
	runner, err := NewRunner(metric)
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Results)

	_, ok := result.MeanScore()
	assert.False(t, ok)
}

func TestRunWithManySamples(t *testing.T) {
	metric := &scriptedMetric{score: func(*Sample) (*ScoreResult, error) {
		return &ScoreResult{Score: 2, Status: EvalStatusFailed}, nil
	}}
	runner, err := NewRunner(metric, WithParallelism(8))
	require.NoError(t, err)

	samples := make([]*Sample, 50)
	for i := range samples {
		samples[i] = &Sample{Question: fmt.Sprintf("q%d", i)}
	}
	result, err := runner.Run(context.Background(), samples)
	require.NoError(t, err)
	require.Len(t, result.Results, 50)
	for _, res := range result.Results {
		require.NotNil(t, res.Result)
	}
}

func TestMeanScoreSkipsFailedSamples(t *testing.T) {
	result := &RunResult{
		Results: []*SampleResult{
			{Result: &ScoreResult{Score: 4}},
			{Err: "judge unavailable"},
			{Result: &ScoreResult{Score: 2}},
		},
	}
	mean, ok := result.MeanScore()
	require.True(t, ok)
	assert.InDelta(t, 3.0, mean, 1e-9)
}
