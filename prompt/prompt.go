//
// Tencent is pleased to support the open source community by making trpc-evalkit-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-evalkit-go is licensed under the Apache License Version 2.0.
//
//

// Package prompt builds structured prompts for judge models and decodes
// their JSON answers, repairing malformed output through a bounded
// model-assisted retry loop.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
)

// Example pairs an input with the output the model should produce for it.
type Example[I, O any] struct {
	Input  I
	Output O
}

// Prompt renders an instruction, the expected output schema and optional
// few-shot examples into the text sent to the judge model. O must be a
// struct decodable from the model's JSON answer.
type Prompt[I, O any] struct {
	// Name identifies the prompt in logs.
	Name string
	// Instruction tells the model what to do.
	Instruction string
	// Examples demonstrate the instruction. Optional.
	Examples []Example[I, O]

	signatureOnce sync.Once
	signature     string
	signatureErr  error
}

// Format renders the full prompt text for input.
func (p *Prompt[I, O]) Format(input I) (string, error) {
	signature, err := p.outputSignature()
	if err != nil {
		return "", err
	}
	inputJSON, err := json.MarshalIndent(input, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal prompt input: %w", err)
	}
	var b strings.Builder
	b.WriteString(p.Instruction)
	b.WriteString("\n")
	b.WriteString(signature)
	b.WriteString("\n")
	if examples := p.renderExamples(); examples != "" {
		b.WriteString(examples)
	}
	b.WriteString("\nNow perform the above instruction with the following input\n")
	b.WriteString("input: ")
	b.Write(inputJSON)
	b.WriteString("\noutput: ")
	return b.String(), nil
}

// outputSignature renders the JSON schema of O once per prompt instance.
func (p *Prompt[I, O]) outputSignature() (string, error) {
	p.signatureOnce.Do(func() {
		reflector := jsonschema.Reflector{
			Anonymous:      true,
			DoNotReference: true,
		}
		var out O
		schema, err := json.Marshal(reflector.Reflect(&out))
		if err != nil {
			p.signatureErr = fmt.Errorf("render output schema: %w", err)
			return
		}
		p.signature = "Please return the output in a JSON format that complies with the " +
			"following schema as specified in JSON Schema and OpenAPI specification:\n" +
			string(schema)
	})
	return p.signature, p.signatureErr
}

func (p *Prompt[I, O]) renderExamples() string {
	if len(p.Examples) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(p.Examples))
	for _, example := range p.Examples {
		inputJSON, err := json.MarshalIndent(example.Input, "", "    ")
		if err != nil {
			continue
		}
		outputJSON, err := json.MarshalIndent(example.Output, "", "    ")
		if err != nil {
			continue
		}
		rendered = append(rendered,
			p.Instruction+"\ninput: "+string(inputJSON)+"\noutput: "+string(outputJSON))
	}
	return "These are some examples to show how to perform the above instruction\n" +
		strings.Join(rendered, "\n\n")
}
