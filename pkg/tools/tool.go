// Package tools defines the tool contract and the static registry that the
// MCP front-end dispatches into. A tool is a named operation with a declared
// JSON-schema input; the registry validates arguments before any handler runs.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is a single operation exposed to MCP clients.
type Tool interface {
	// Name returns the unique identifier for this tool (e.g. "browser_navigate").
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// Schema returns the JSON schema for this tool's input parameters.
	Schema() Schema

	// Execute runs the tool with validated arguments. Expected automation
	// outcomes (element missing, ambiguous login) are values inside Output;
	// returned errors become tool-level failures.
	Execute(ctx context.Context, args map[string]any) (*Output, error)
}

// NewFunc adapts a handler function and its metadata into a Tool. Tool
// packages register their operations as methods on a shared deps struct.
func NewFunc(name, description string, schema Schema, handler func(context.Context, map[string]any) (*Output, error)) Tool {
	return &funcTool{name: name, description: description, schema: schema, handler: handler}
}

type funcTool struct {
	name        string
	description string
	schema      Schema
	handler     func(context.Context, map[string]any) (*Output, error)
}

func (f *funcTool) Name() string        { return f.name }
func (f *funcTool) Description() string { return f.description }
func (f *funcTool) Schema() Schema      { return f.schema }
func (f *funcTool) Execute(ctx context.Context, args map[string]any) (*Output, error) {
	return f.handler(ctx, args)
}

// Schema is a JSON-schema object, serialized verbatim as the MCP inputSchema.
type Schema map[string]any

// ObjectSchema builds the common object schema with the given properties and
// required field names.
func ObjectSchema(properties map[string]any, required []string) Schema {
	schema := Schema{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// DecodeArgs unmarshals the validated argument map into a typed input struct.
func DecodeArgs(args map[string]any, v any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
