//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Call identifies one logical invocation for fingerprinting purposes:
// who is called, the ordered positional arguments, and the keyword
// arguments by name. Handle-like keyword arguments (client objects,
// callback lists) should be listed in the memoizer's excluded set; they
// affect behavior but not the logical result.
type Call struct {
	// Callee names the invoked operation, e.g. "model.generate_content".
	Callee string
	// Args are the ordered positional arguments. Order is significant.
	Args []any
	// KWArgs maps argument names to values. Insertion order is not
	// significant; two calls with equal contents fingerprint identically.
	KWArgs map[string]any
}

// Fielder is implemented by record values that participate in
// fingerprinting. CacheFields returns the exported fields by name; the
// mapping is canonicalized recursively like any other mapping.
type Fielder interface {
	CacheFields() map[string]any
}

// Fingerprint canonicalizes call and digests it into a fixed-length hex
// key. Equal logical calls (up to the excluded parameters and
// canonicalization) always produce the same key.
//
// Canonicalization rules:
//   - ordered sequences keep element order;
//   - mappings are rendered with keys sorted, so insertion order is
//     irrelevant;
//   - sets, expressed as mappings to empty values, sort like mappings;
//   - records implementing Fielder canonicalize as their field mapping;
//   - everything else round-trips through its JSON form, and values with
//     no JSON form fall back to a deterministic string rendering.
func Fingerprint(call Call, excluded map[string]struct{}) (string, error) {
	kwargs := make(map[string]any, len(call.KWArgs))
	for name, value := range call.KWArgs {
		if _, skip := excluded[name]; skip {
			continue
		}
		kwargs[name] = value
	}
	args := make([]any, len(call.Args))
	copy(args, call.Args)
	canonical, err := canonicalize(map[string]any{
		"function": call.Callee,
		"args":     args,
		"kwargs":   kwargs,
	})
	if err != nil {
		return "", err
	}
	// encoding/json renders map keys in sorted order, which makes the
	// serialized form stable across processes.
	payload, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("serialize canonical call: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalize normalizes v into a tree of JSON-representable values:
// nil, bool, string, json.Number, []any and map[string]any.
func canonicalize(v any) (any, error) {
	switch value := v.(type) {
	case nil, bool, string, json.Number:
		return value, nil
	case Fielder:
		return canonicalizeMap(value.CacheFields())
	case map[string]any:
		return canonicalizeMap(value)
	case []any:
		return canonicalizeSlice(value)
	default:
		return canonicalizeOther(value)
	}
}

func canonicalizeMap(m map[string]any) (any, error) {
	out := make(map[string]any, len(m))
	for key, value := range m {
		canonical, err := canonicalize(value)
		if err != nil {
			return nil, err
		}
		out[key] = canonical
	}
	return out, nil
}

func canonicalizeSlice(s []any) (any, error) {
	out := make([]any, len(s))
	for i, value := range s {
		canonical, err := canonicalize(value)
		if err != nil {
			return nil, err
		}
		out[i] = canonical
	}
	return out, nil
}

// canonicalizeOther handles typed containers, structs and scalars through
// a JSON round trip. Numbers are preserved literally via json.Number so
// the rendering does not depend on float formatting.
func canonicalizeOther(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		// No JSON form. Render the type and value deterministically so
		// the argument still contributes to the key.
		return fmt.Sprintf("%T(%v)", v, v), nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("canonicalize %T: %w", v, err)
	}
	return canonicalize(tree)
}
