//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

// Package evaluation scores generated answers against rubrics and
// references using a judge model.
package evaluation

import "context"

// EvalStatus is the outcome of one scored sample.
type EvalStatus string

// EvalStatus constants.
const (
	EvalStatusPassed EvalStatus = "passed"
	EvalStatusFailed EvalStatus = "failed"
)

// Sample is one dataset row: the question asked, the answer produced by
// the system under evaluation, the contexts it saw, and the reference
// answer when one exists.
type Sample struct {
	// Question is the user input.
	Question string `json:"question"`
	// Answer is the generated answer under evaluation.
	Answer string `json:"answer"`
	// Contexts are the retrieved contexts used for generation. Optional.
	Contexts []string `json:"contexts,omitempty"`
	// GroundTruth is the reference answer. Optional.
	GroundTruth string `json:"ground_truth,omitempty"`
	// Rubrics maps score labels to their descriptions, e.g.
	// "score1_description" -> "...". Optional; metrics may supply their own.
	Rubrics map[string]string `json:"rubrics,omitempty"`
}

// ScoreResult is the judge's verdict for one sample.
type ScoreResult struct {
	// Score is the numeric verdict.
	Score float64 `json:"score"`
	// Reason is the judge's stated reasoning.
	Reason string `json:"reason,omitempty"`
	// Status reflects Score against the metric threshold.
	Status EvalStatus `json:"status"`
}

// Metric scores a single sample.
type Metric interface {
	// Name returns the metric name.
	Name() string
	// Score evaluates one sample.
	Score(ctx context.Context, sample *Sample) (*ScoreResult, error)
}
