//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry provides tracing helpers for evalkit operations.
package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentName identifies this library to the tracer provider.
const InstrumentName = "trpc.evalkit.go"

// Operation names used in span names.
const (
	OperationGenerateContent = "generate_content"
	OperationCacheLookup     = "cache_lookup"
)

// Attribute keys attached to evalkit spans.
var (
	KeyCacheHit    = attribute.Key("evalkit.cache.hit")
	KeyCacheKey    = attribute.Key("evalkit.cache.key")
	KeyModelName   = attribute.Key("evalkit.model.name")
	KeyMetricName  = attribute.Key("evalkit.metric.name")
	KeyNumSamples  = attribute.Key("evalkit.metric.num_samples")
	KeyRepairCount = attribute.Key("evalkit.parser.repairs")
)

// Tracer returns the tracer for evalkit spans, resolved from the global
// tracer provider at call time so late provider installation is honored.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentName)
}

// NewGenerateSpanName creates a generate-content span name, e.g.
// "generate_content gpt-4o-mini".
func NewGenerateSpanName(requestModel string) string {
	if requestModel == "" {
		return OperationGenerateContent
	}
	return fmt.Sprintf("%s %s", OperationGenerateContent, requestModel)
}
