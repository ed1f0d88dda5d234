package tools

// Output is the closed set of tool results. A handler builds exactly one of
// the three shapes; the MCP layer renders each uniformly.
type Output struct {
	// JSON is the structured payload rendered as a text content block.
	JSON any

	// ImageB64 and MimeType carry an image payload rendered as an image
	// content block. Empty ImageB64 means no image.
	ImageB64 string
	MimeType string
}

// JSONOutput wraps a structured payload.
func JSONOutput(v any) *Output {
	return &Output{JSON: v}
}

// ImageOutput wraps a bare image payload.
func ImageOutput(b64, mimeType string) *Output {
	return &Output{ImageB64: b64, MimeType: mimeType}
}

// ImageWithJSON wraps an image payload plus residual structured fields.
func ImageWithJSON(b64, mimeType string, v any) *Output {
	return &Output{ImageB64: b64, MimeType: mimeType, JSON: v}
}

// HasImage reports whether the output carries an image payload.
func (o *Output) HasImage() bool {
	return o != nil && o.ImageB64 != ""
}
