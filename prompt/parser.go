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

	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-evalkit-go/log"
	"trpc.group/trpc-go/trpc-evalkit-go/model"
	"trpc.group/trpc-go/trpc-evalkit-go/telemetry"
)

// DefaultMaxRetries is the default repair budget per parsed output.
const DefaultMaxRetries = 3

// fixOutputInstruction asks the model to correct its own malformed output.
const fixOutputInstruction = "The output string did not satisfy the constraints " +
	"given in the prompt. Fix the output string and return it."

// fixInput carries a malformed output together with the prompt that
// produced it. It is a distinct logical call from the original request,
// so it gets its own cache entry when the model is memoized.
type fixInput struct {
	OutputString string `json:"output_string"`
	PromptValue  string `json:"prompt_value"`
}

// fixOutput is the corrected text returned by the repair call.
type fixOutput struct {
	Text string `json:"text" validate:"required"`
}

var fixOutputPrompt = &Prompt[fixInput, fixOutput]{
	Name:        "fix_output_format",
	Instruction: fixOutputInstruction,
}

// RepairExhaustedError reports that output could not be repaired within
// the retry budget. It carries the last malformed text for diagnosis.
type RepairExhaustedError struct {
	// Attempts is the number of repair calls made.
	Attempts int
	// LastOutput is the final text that still failed to decode.
	LastOutput string
}

// Error returns the exhaustion description.
func (e *RepairExhaustedError) Error() string {
	return fmt.Sprintf("output could not be repaired after %d attempts", e.Attempts)
}

// ParseWithRepair decodes output into O. On a structural failure it asks
// the model to fix the text, feeding the malformed output and the exact
// original prompt back in, and retries on the corrected candidate. The
// loop is bounded by maxRetries repair calls; exhaustion surfaces as
// *RepairExhaustedError. A model-call failure during repair propagates
// immediately without consuming budget: retries are reserved for
// malformed output, not for invocation failures.
func ParseWithRepair[O any](
	ctx context.Context,
	m model.Model,
	output string,
	promptText string,
	maxRetries int,
) (O, error) {
	var zero O
	current := output
	for attempt := 0; ; attempt++ {
		out, err := Decode[O](current)
		if err == nil {
			if attempt > 0 {
				trace.SpanFromContext(ctx).SetAttributes(telemetry.KeyRepairCount.Int(attempt))
			}
			return out, nil
		}
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			return zero, err
		}
		if attempt >= maxRetries {
			return zero, &RepairExhaustedError{
				Attempts:   attempt,
				LastOutput: current,
			}
		}
		log.Debugf("prompt: repairing malformed output (attempt %d/%d): %v",
			attempt+1, maxRetries, decodeErr.Err)
		repaired, rerr := repairOutput(ctx, m, current, promptText)
		if rerr != nil {
			return zero, rerr
		}
		current = repaired
	}
}

// repairOutput issues the fix-output meta call and returns the corrected
// candidate text.
func repairOutput(ctx context.Context, m model.Model, malformed, promptText string) (string, error) {
	text, err := fixOutputPrompt.Format(fixInput{
		OutputString: malformed,
		PromptValue:  promptText,
	})
	if err != nil {
		return "", err
	}
	rsp, err := generate(ctx, m, text, nil)
	if err != nil {
		return "", fmt.Errorf("repair model call: %w", err)
	}
	raw := rsp.Choices[0].Message.Content
	fixed, err := Decode[fixOutput](raw)
	if err != nil {
		// The repair answer itself ignored the format. Use the raw text
		// as the next candidate; the outer loop keeps the bound.
		return raw, nil
	}
	return fixed.Text, nil
}
