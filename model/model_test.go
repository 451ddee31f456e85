//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleSystem.IsValid())
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAssistant.IsValid())
	assert.False(t, Role("tool").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestMessageConstructors(t *testing.T) {
	assert.Equal(t, Message{Role: RoleSystem, Content: "s"}, NewSystemMessage("s"))
	assert.Equal(t, Message{Role: RoleUser, Content: "u"}, NewUserMessage("u"))
	assert.Equal(t, Message{Role: RoleAssistant, Content: "a"}, NewAssistantMessage("a"))
}

func TestResponseClone(t *testing.T) {
	finish := "stop"
	code := "429"
	rsp := &Response{
		ID:      "rsp-1",
		Object:  ObjectTypeChatCompletion,
		Created: 1700000000,
		Model:   "judge",
		Choices: []Choice{
			{Index: 0, Message: NewAssistantMessage("hello"), FinishReason: &finish},
		},
		Usage: &Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		Error: &ResponseError{Message: "m", Type: ErrorTypeAPIError, Code: &code},
	}

	clone := rsp.Clone()
	require.NotSame(t, rsp, clone)
	assert.Equal(t, rsp, clone)

	clone.Choices[0].Message.Content = "changed"
	clone.Usage.TotalTokens = 0
	clone.Error.Message = "changed"
	assert.Equal(t, "hello", rsp.Choices[0].Message.Content)
	assert.Equal(t, 15, rsp.Usage.TotalTokens)
	assert.Equal(t, "m", rsp.Error.Message)
}

func TestResponseCloneNil(t *testing.T) {
	var rsp *Response
	assert.Nil(t, rsp.Clone())
}

func TestResponseIsValidContent(t *testing.T) {
	var nilRsp *Response
	assert.False(t, nilRsp.IsValidContent())
	assert.False(t, (&Response{}).IsValidContent())
	assert.False(t, (&Response{
		Choices: []Choice{{Message: Message{Role: RoleAssistant}}},
	}).IsValidContent())
	assert.True(t, (&Response{
		Choices: []Choice{
			{Message: Message{Role: RoleAssistant}},
			{Message: NewAssistantMessage("content")},
		},
	}).IsValidContent())
}

func TestResponseErrorImplementsError(t *testing.T) {
	var err error = &ResponseError{Message: "model overloaded", Type: ErrorTypeAPIError}
	assert.Equal(t, "model overloaded", err.Error())
}
