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
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"trpc.group/trpc-go/trpc-evalkit-go/model"
	"trpc.group/trpc-go/trpc-evalkit-go/prompt"
	"trpc.group/trpc-go/trpc-evalkit-go/telemetry"
)

// Default rubric metric settings.
const (
	DefaultRubricMetricName = "labelled_rubrics_score"
	DefaultNumSamples       = 1
	DefaultThreshold        = 3.0
)

const rubricInstruction = "Given an input and a submission, evaluate the " +
	"submission against the provided scoring rubrics. Assign the single score " +
	"whose description matches the submission best and explain your reasoning."

// rubricInput is the structured input handed to the judge prompt.
type rubricInput struct {
	UserInput string            `json:"user_input"`
	Response  string            `json:"response"`
	Reference string            `json:"reference,omitempty"`
	Rubrics   map[string]string `json:"rubrics"`
}

// rubricOutput is the structured verdict expected back from the judge.
type rubricOutput struct {
	Reason string `json:"reason" validate:"required"`
	Score  int    `json:"score" validate:"min=0"`
}

var _ Metric = (*RubricMetric)(nil)

// RubricMetric scores a sample with a judge model against per-sample (or
// metric-level) rubrics. When NumSamples > 1 the judge is asked for that
// many independent verdicts in one call and the scores are averaged; a
// dropped verdict does not fail the sample as long as one survives.
type RubricMetric struct {
	judge       model.Model
	name        string
	rubrics     map[string]string
	numSamples  int
	threshold   float64
	judgePrompt *prompt.Prompt[rubricInput, rubricOutput]
	promptOpts  []prompt.Option
}

// NewRubricMetric creates a rubric judge metric over the given model.
func NewRubricMetric(judge model.Model, opts ...RubricOption) (*RubricMetric, error) {
	if judge == nil {
		return nil, errors.New("judge model is required")
	}
	m := &RubricMetric{
		judge:      judge,
		name:       DefaultRubricMetricName,
		numSamples: DefaultNumSamples,
		threshold:  DefaultThreshold,
		judgePrompt: &prompt.Prompt[rubricInput, rubricOutput]{
			Name:        "rubric_score",
			Instruction: rubricInstruction,
		},
	}
	for _, o := range opts {
		o(m)
	}
	if m.numSamples <= 0 {
		return nil, fmt.Errorf("num samples must be greater than 0, got %d", m.numSamples)
	}
	return m, nil
}

// RubricOption configures a RubricMetric.
type RubricOption func(*RubricMetric)

// WithName overrides the metric name.
func WithName(name string) RubricOption {
	return func(m *RubricMetric) {
		m.name = name
	}
}

// WithRubrics sets metric-level rubrics used when a sample carries none.
func WithRubrics(rubrics map[string]string) RubricOption {
	return func(m *RubricMetric) {
		m.rubrics = rubrics
	}
}

// WithNumSamples sets how many judge verdicts are averaged per sample.
func WithNumSamples(n int) RubricOption {
	return func(m *RubricMetric) {
		m.numSamples = n
	}
}

// WithThreshold sets the pass/fail score threshold.
func WithThreshold(threshold float64) RubricOption {
	return func(m *RubricMetric) {
		m.threshold = threshold
	}
}

// WithPromptOptions passes extra options (temperature, repair budget...)
// to every judge call.
func WithPromptOptions(opts ...prompt.Option) RubricOption {
	return func(m *RubricMetric) {
		m.promptOpts = opts
	}
}

// Name implements the Metric interface.
func (m *RubricMetric) Name() string {
	return m.name
}

// Score implements the Metric interface.
func (m *RubricMetric) Score(ctx context.Context, sample *Sample) (*ScoreResult, error) {
	if sample == nil {
		return nil, errors.New("sample is nil")
	}
	rubrics := sample.Rubrics
	if len(rubrics) == 0 {
		rubrics = m.rubrics
	}
	if len(rubrics) == 0 {
		return nil, fmt.Errorf("metric %s: no rubrics for sample", m.name)
	}
	ctx, span := telemetry.Tracer().Start(ctx, m.name)
	defer span.End()
	span.SetAttributes(
		telemetry.KeyMetricName.String(m.name),
		telemetry.KeyNumSamples.Int(m.numSamples),
	)

	userInput := sample.Question
	if len(sample.Contexts) > 0 {
		userInput = fmt.Sprintf("%s answer using context: %s",
			userInput, strings.Join(sample.Contexts, "\n"))
	}
	input := rubricInput{
		UserInput: userInput,
		Response:  sample.Answer,
		Reference: sample.GroundTruth,
		Rubrics:   rubrics,
	}
	verdicts, err := prompt.ExecuteN(ctx, m.judge, m.judgePrompt, input, m.numSamples, m.promptOpts...)
	if err != nil {
		return nil, fmt.Errorf("metric %s: judge: %w", m.name, err)
	}
	var total float64
	reason := ""
	for _, verdict := range verdicts {
		total += float64(verdict.Score)
		reason = verdict.Reason
	}
	score := total / float64(len(verdicts))
	span.SetAttributes(attribute.Float64("evalkit.metric.score", score))
	result := &ScoreResult{
		Score:  score,
		Reason: reason,
		Status: EvalStatusPassed,
	}
	if score < m.threshold {
		result.Status = EvalStatusFailed
	}
	return result, nil
}
