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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-evalkit-go/model"
)

func TestNewReturnsModelInfo(t *testing.T) {
	m := New("gpt-4o-mini", WithAPIKey("test-key"))
	assert.Equal(t, "gpt-4o-mini", m.Info().Name)
}

func TestGenerateContentRejectsNilRequest(t *testing.T) {
	m := New("gpt-4o-mini", WithAPIKey("test-key"))
	_, err := m.GenerateContent(context.Background(), nil)
	assert.Error(t, err)
}

func TestBuildChatRequestMapsGenerationConfig(t *testing.T) {
	m := New("gpt-4o-mini", WithAPIKey("test-key"))
	maxTokens := 512
	temperature := 0.2
	topP := 0.9
	req := &model.Request{
		Messages: []model.Message{
			model.NewSystemMessage("be terse"),
			model.NewUserMessage("score this"),
		},
		GenerationConfig: model.GenerationConfig{
			MaxTokens:      &maxTokens,
			Temperature:    &temperature,
			TopP:           &topP,
			NumCompletions: 3,
			Stop:           []string{"END", "STOP"},
		},
	}

	chatRequest := m.buildChatRequest(req)
	assert.Equal(t, "gpt-4o-mini", string(chatRequest.Model))
	assert.Equal(t, int64(512), chatRequest.MaxCompletionTokens.Value)
	assert.Equal(t, 0.2, chatRequest.Temperature.Value)
	assert.Equal(t, 0.9, chatRequest.TopP.Value)
	assert.Equal(t, int64(3), chatRequest.N.Value)
	assert.Equal(t, "END", chatRequest.Stop.OfString.Value)
	require.Len(t, chatRequest.Messages, 2)
}

func TestBuildChatRequestDefaults(t *testing.T) {
	m := New("gpt-4o-mini", WithAPIKey("test-key"))
	chatRequest := m.buildChatRequest(&model.Request{
		Messages: []model.Message{model.NewUserMessage("hi")},
	})
	assert.False(t, chatRequest.MaxCompletionTokens.Valid())
	assert.False(t, chatRequest.Temperature.Valid())
	assert.False(t, chatRequest.TopP.Valid())
	assert.False(t, chatRequest.N.Valid())
	assert.False(t, chatRequest.Stop.OfString.Valid())
}

func TestConvertMessagesRoles(t *testing.T) {
	messages := convertMessages([]model.Message{
		model.NewSystemMessage("s"),
		model.NewUserMessage("u"),
		model.NewAssistantMessage("a"),
	})
	require.Len(t, messages, 3)
	assert.NotNil(t, messages[0].OfSystem)
	assert.NotNil(t, messages[1].OfUser)
	assert.NotNil(t, messages[2].OfAssistant)
}
