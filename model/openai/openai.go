//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an OpenAI-compatible judge model implementation.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-evalkit-go/model"
	"trpc.group/trpc-go/trpc-evalkit-go/telemetry"
)

var _ model.Model = (*Model)(nil)

// Model calls an OpenAI-compatible chat completion API.
type Model struct {
	client openai.Client
	name   string
}

// New creates an OpenAI-backed model. The OPENAI_API_KEY environment
// variable is used when no key is supplied.
func New(name string, opts ...Option) *Model {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Model{
		client: openai.NewClient(o.clientOptions()...),
		name:   name,
	}
}

// Info implements the model.Model interface.
func (m *Model) Info() model.Info {
	return model.Info{
		Name: m.name,
	}
}

// GenerateContent implements the model.Model interface. It issues a single
// non-streaming chat completion request; NumCompletions independent
// completions come back as separate choices.
func (m *Model) GenerateContent(
	ctx context.Context,
	request *model.Request,
) (*model.Response, error) {
	if request == nil {
		return nil, errors.New("request cannot be nil")
	}
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.NewGenerateSpanName(m.name))
	defer span.End()
	span.SetAttributes(telemetry.KeyModelName.String(m.name))

	chatCompletion, err := m.client.Chat.Completions.New(ctx, m.buildChatRequest(request))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}

	response := &model.Response{
		ID:      chatCompletion.ID,
		Object:  string(chatCompletion.Object),
		Created: chatCompletion.Created,
		Model:   chatCompletion.Model,
	}
	response.Choices = make([]model.Choice, len(chatCompletion.Choices))
	for i, choice := range chatCompletion.Choices {
		response.Choices[i] = model.Choice{
			Index:   int(choice.Index),
			Message: model.NewAssistantMessage(choice.Message.Content),
		}
		if choice.FinishReason != "" {
			finishReason := choice.FinishReason
			response.Choices[i].FinishReason = &finishReason
		}
	}
	if chatCompletion.Usage.PromptTokens > 0 || chatCompletion.Usage.CompletionTokens > 0 {
		response.Usage = &model.Usage{
			PromptTokens:     int(chatCompletion.Usage.PromptTokens),
			CompletionTokens: int(chatCompletion.Usage.CompletionTokens),
			TotalTokens:      int(chatCompletion.Usage.TotalTokens),
		}
	}
	return response, nil
}

// buildChatRequest converts our Request to OpenAI request params.
func (m *Model) buildChatRequest(request *model.Request) openai.ChatCompletionNewParams {
	chatRequest := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.name),
		Messages: convertMessages(request.Messages),
	}
	// MaxTokens is deprecated and not compatible with o-series models.
	// Use MaxCompletionTokens instead.
	if request.MaxTokens != nil {
		chatRequest.MaxCompletionTokens = openai.Int(int64(*request.MaxTokens))
	}
	if request.Temperature != nil {
		chatRequest.Temperature = openai.Float(*request.Temperature)
	}
	if request.TopP != nil {
		chatRequest.TopP = openai.Float(*request.TopP)
	}
	if request.NumCompletions > 1 {
		chatRequest.N = openai.Int(int64(request.NumCompletions))
	}
	if len(request.Stop) > 0 {
		// Use the first stop string for simplicity.
		chatRequest.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfString: openai.String(request.Stop[0]),
		}
	}
	return chatRequest
}

func convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}
