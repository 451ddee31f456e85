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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-evalkit-go/model"
)

// fakeModel scripts GenerateContent call by call and records every
// request it sees.
type fakeModel struct {
	mu       sync.Mutex
	calls    int
	requests []*model.Request
	handler  func(call int, req *model.Request) (*model.Response, error)
}

func (f *fakeModel) Info() model.Info {
	return model.Info{Name: "fake-judge"}
}

func (f *fakeModel) GenerateContent(_ context.Context, req *model.Request) (*model.Response, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.handler(call, req)
}

func (f *fakeModel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func textResponse(contents ...string) *model.Response {
	rsp := &model.Response{
		Object: model.ObjectTypeChatCompletion,
		Model:  "fake-judge",
	}
	for i, content := range contents {
		rsp.Choices = append(rsp.Choices, model.Choice{
			Index:   i,
			Message: model.NewAssistantMessage(content),
		})
	}
	return rsp
}

// repairedVerdict wraps the target JSON in the fix-output answer format.
const repairedVerdict = `{"text": "{\"reason\": \"fixed\", \"score\": 4}"}`

func TestParseWithRepairValidFirstTry(t *testing.T) {
	m := &fakeModel{handler: func(int, *model.Request) (*model.Response, error) {
		t.Fatal("no repair call expected")
		return nil, nil
	}}
	out, err := ParseWithRepair[verdict](context.Background(), m,
		`{"reason": "ok", "score": 3}`, "original prompt", DefaultMaxRetries)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Score)
	assert.Equal(t, 0, m.callCount())
}

func TestParseWithRepairFixesOutput(t *testing.T) {
	m := &fakeModel{handler: func(int, *model.Request) (*model.Response, error) {
		return textResponse(repairedVerdict), nil
	}}
	out, err := ParseWithRepair[verdict](context.Background(), m,
		"Sorry, here you go: reason ok score 4", "original prompt", DefaultMaxRetries)
	require.NoError(t, err)
	assert.Equal(t, "fixed", out.Reason)
	assert.Equal(t, 4, out.Score)
	assert.Equal(t, 1, m.callCount())
}

func TestParseWithRepairFeedsBackMalformedOutputAndPrompt(t *testing.T) {
	m := &fakeModel{handler: func(int, *model.Request) (*model.Response, error) {
		return textResponse(repairedVerdict), nil
	}}
	_, err := ParseWithRepair[verdict](context.Background(), m,
		"garbled answer", "the exact original prompt", DefaultMaxRetries)
	require.NoError(t, err)

	require.Len(t, m.requests, 1)
	repairPrompt := m.requests[0].Messages[0].Content
	assert.Contains(t, repairPrompt, fixOutputInstruction)
	assert.Contains(t, repairPrompt, "garbled answer")
	assert.Contains(t, repairPrompt, "the exact original prompt")
}

func TestParseWithRepairExhaustsBudget(t *testing.T) {
	const budget = 3
	m := &fakeModel{handler: func(int, *model.Request) (*model.Response, error) {
		return textResponse("still not json"), nil
	}}
	_, err := ParseWithRepair[verdict](context.Background(), m,
		"not json", "original prompt", budget)

	var exhausted *RepairExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, budget, exhausted.Attempts)
	assert.Equal(t, "still not json", exhausted.LastOutput)
	assert.Equal(t, budget, m.callCount())
}

func TestParseWithRepairZeroBudget(t *testing.T) {
	m := &fakeModel{handler: func(int, *model.Request) (*model.Response, error) {
		t.Fatal("no repair call expected with a zero budget")
		return nil, nil
	}}
	_, err := ParseWithRepair[verdict](context.Background(), m,
		"not json", "original prompt", 0)

	var exhausted *RepairExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 0, exhausted.Attempts)
	assert.Equal(t, "not json", exhausted.LastOutput)
}

func TestParseWithRepairModelFailurePropagates(t *testing.T) {
	wantErr := errors.New("connection refused")
	m := &fakeModel{handler: func(int, *model.Request) (*model.Response, error) {
		return nil, wantErr
	}}
	_, err := ParseWithRepair[verdict](context.Background(), m,
		"not json", "original prompt", DefaultMaxRetries)

	require.ErrorIs(t, err, wantErr)
	var exhausted *RepairExhaustedError
	assert.False(t, errors.As(err, &exhausted))
	assert.Equal(t, 1, m.callCount())
}

func TestParseWithRepairRawFallback(t *testing.T) {
	// The repair answer ignores the fix-output format but is itself a
	// valid verdict; the raw text becomes the next candidate.
	m := &fakeModel{handler: func(int, *model.Request) (*model.Response, error) {
		return textResponse(`{"reason": "direct", "score": 2}`), nil
	}}
	out, err := ParseWithRepair[verdict](context.Background(), m,
		"not json", "original prompt", DefaultMaxRetries)
	require.NoError(t, err)
	assert.Equal(t, "direct", out.Reason)
	assert.Equal(t, 1, m.callCount())
}
