// Package schema derives JSON Schemas for the run-step wire contract.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	contract "github.com/codex-k8s/runstep-agent/pkg/runstep"
)

// Document names.
const (
	NameRequest          = "RunStepRequest"
	NameResponse         = "RunStepResponse"
	NameValidationResult = "ValidationResult"
)

// Documents returns the schema of every contract type keyed by name.
func Documents() (map[string]*jsonschema.Schema, error) {
	out := make(map[string]*jsonschema.Schema, 3)
	for name, build := range map[string]func() (*jsonschema.Schema, error){
		NameRequest:          forType[contract.Request],
		NameResponse:         forType[contract.Response],
		NameValidationResult: forType[contract.ValidationResult],
	} {
		s, err := build()
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
		s.Title = name
		out[name] = s
	}
	return out, nil
}

// Names returns the document names in sorted order.
func Names() []string {
	names := []string{NameRequest, NameResponse, NameValidationResult}
	sort.Strings(names)
	return names
}

// Document returns a single schema by name.
func Document(name string) (*jsonschema.Schema, error) {
	docs, err := Documents()
	if err != nil {
		return nil, err
	}
	s, ok := docs[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	return s, nil
}

// JSON renders all documents as one indented JSON object keyed by name.
func JSON() ([]byte, error) {
	docs, err := Documents()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(docs, "", "  ")
}

func forType[T any]() (*jsonschema.Schema, error) {
	return jsonschema.For[T](nil)
}
