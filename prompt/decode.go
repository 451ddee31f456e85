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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"trpc.group/trpc-go/trpc-evalkit-go/internal/jsonextract"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeError reports that model output violated the expected structure.
// It is the signal the repair loop reacts to; any other error from
// decoding machinery is passed through untouched.
type DecodeError struct {
	// Output is the text that failed to decode.
	Output string
	// Err is the underlying cause.
	Err error
}

// Error returns the decode failure description.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode model output: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode extracts the JSON payload from text and decodes it into O,
// then checks O's validation tags. All structural failures come back as
// *DecodeError.
func Decode[O any](text string) (O, error) {
	var out O
	payload, err := jsonextract.Extract(text)
	if err != nil {
		return out, &DecodeError{Output: text, Err: err}
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return out, &DecodeError{Output: text, Err: err}
	}
	if err := validate.Struct(out); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// O is not a struct; nothing to validate.
			return out, nil
		}
		var zero O
		return zero, &DecodeError{Output: text, Err: err}
	}
	return out, nil
}
