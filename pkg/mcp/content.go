package mcp

import (
	"encoding/json"

	"github.com/ariahq/aria/pkg/tools"
)

// RenderOutput converts a tool output into MCP content blocks. An image
// payload becomes an image block; residual structured fields, when present,
// follow as a text block. Outputs without an image become a single
// pretty-printed JSON text block.
func RenderOutput(out *tools.Output) ToolResult {
	if out == nil {
		return ToolResult{Content: []ContentBlock{{Type: "text", Text: "{}"}}}
	}

	if out.HasImage() {
		mime := out.MimeType
		if mime == "" {
			mime = "image/jpeg"
		}
		blocks := []ContentBlock{{Type: "image", Data: out.ImageB64, MimeType: mime}}
		if out.JSON != nil {
			blocks = append(blocks, ContentBlock{Type: "text", Text: marshalPayload(out.JSON)})
		}
		return ToolResult{Content: blocks}
	}

	return ToolResult{Content: []ContentBlock{{Type: "text", Text: marshalPayload(out.JSON)}}}
}

// ErrorResult wraps an error message as a tool-level failure, so the client
// sees a structured error rather than a transport fault.
func ErrorResult(message string) ToolResult {
	return ToolResult{
		Content: []ContentBlock{{Type: "text", Text: message}},
		IsError: true,
	}
}

func marshalPayload(v any) string {
	if v == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return `{"error":"failed to serialize tool result"}`
	}
	return string(data)
}
