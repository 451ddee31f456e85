//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

package model

// Error type constants for ResponseError.Type field.
const (
	ErrorTypeAPIError = "api_error"
)

// Object type constants for Response.Object field.
const (
	// ObjectTypeChatCompletion is the object type for chat completion responses.
	ObjectTypeChatCompletion = "chat.completion"
)

// Choice represents a single completion choice.
type Choice struct {
	// Index is the index of the choice.
	Index int `json:"index"`

	// Message is the message content.
	Message Message `json:"message,omitempty"`

	// FinishReason is the reason the choice was finished.
	// "stop", "length", "content_filter", etc.
	FinishReason *string `json:"finish_reason,omitempty"`
}

// Usage represents token usage information.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total number of tokens in the response.
	TotalTokens int `json:"total_tokens"`
}

// Response is the response from the model.
//
// The Error field represents API-level errors that occur after successful
// communication with the model service. This is different from
// function-level errors returned by GenerateContent(), which indicate
// failures that prevented communication entirely.
type Response struct {
	// ID is the unique identifier for this response.
	ID string `json:"id"`

	// Object describes the type of object returned (e.g., "chat.completion").
	Object string `json:"object"`

	// Created is the Unix timestamp when the response was created.
	Created int64 `json:"created"`

	// Model is the model used to generate the response.
	Model string `json:"model"`

	// Choices contains the completion choices.
	Choices []Choice `json:"choices"`

	// Usage contains token usage information.
	Usage *Usage `json:"usage,omitempty"`

	// Error contains API-level error information if the request failed.
	// This is nil for successful responses.
	Error *ResponseError `json:"error,omitempty"`
}

// Clone creates a deep copy of the response.
func (rsp *Response) Clone() *Response {
	if rsp == nil {
		return nil
	}
	clone := *rsp
	clone.Choices = make([]Choice, len(rsp.Choices))
	copy(clone.Choices, rsp.Choices)
	if rsp.Usage != nil {
		usage := *rsp.Usage
		clone.Usage = &usage
	}
	if rsp.Error != nil {
		respErr := *rsp.Error
		clone.Error = &respErr
	}
	return &clone
}

// IsValidContent checks if the response carries at least one non-empty
// completion.
func (rsp *Response) IsValidContent() bool {
	if rsp == nil {
		return false
	}
	for _, choice := range rsp.Choices {
		if choice.Message.Content != "" {
			return true
		}
	}
	return false
}

// ResponseError represents an error response from the API.
type ResponseError struct {
	// Message is the error message.
	Message string `json:"message"`

	// Type is the type of error.
	Type string `json:"type"`

	// Code is the error code.
	Code *string `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return e.Message
}
