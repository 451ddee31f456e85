//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

// Package jsonextract locates the JSON payload inside model output. Models
// regularly wrap JSON in markdown code fences or surround it with prose;
// Extract trims that away so the caller can attempt a strict decode.
package jsonextract

import (
	"errors"
	"strings"
)

// ErrNoJSON is returned when the input contains no JSON value at all.
var ErrNoJSON = errors.New("jsonextract: no JSON value found")

var fenceMarkers = []string{"```json", "```JSON", "```"}

// Extract returns the best JSON candidate found in text: the content of a
// markdown code fence when present, otherwise the first balanced JSON
// object or array. The candidate is not validated; strict decoding is the
// caller's job.
func Extract(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrNoJSON
	}
	if fenced, ok := unfence(trimmed); ok {
		trimmed = strings.TrimSpace(fenced)
	}
	if start := strings.IndexAny(trimmed, "{["); start >= 0 {
		if candidate, ok := balanced(trimmed[start:]); ok {
			return candidate, nil
		}
		// Unbalanced tail, e.g. truncated output. Hand back everything
		// from the opening bracket and let the decoder report the error.
		return trimmed[start:], nil
	}
	return "", ErrNoJSON
}

// unfence returns the body of the first markdown code fence in text.
func unfence(text string) (string, bool) {
	for _, marker := range fenceMarkers {
		start := strings.Index(text, marker)
		if start < 0 {
			continue
		}
		body := text[start+len(marker):]
		end := strings.Index(body, "```")
		if end < 0 {
			return body, true
		}
		return body[:end], true
	}
	return "", false
}

// balanced scans text (starting at an opening bracket) and returns the
// shortest prefix forming a balanced JSON value, honoring strings and
// escape sequences.
func balanced(text string) (string, bool) {
	var depth int
	var inString bool
	var escaped bool
	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[:i+1], true
			}
		}
	}
	return "", false
}
