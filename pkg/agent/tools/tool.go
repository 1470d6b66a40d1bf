package tools

import (
	"context"
	"encoding/xml"
)

// Tool is a capability exposed to the agent. The model invokes it with an
// XML tool call whose <arguments> element is handed to Execute:
//
//	<tool>
//	<server_name>local</server_name>
//	<tool_name>browser_click</tool_name>
//	<arguments>
//	  <ref>3</ref>
//	</arguments>
//	</tool>
type Tool interface {
	// Name is the identifier the model uses in <tool_name>.
	Name() string

	Description() string

	// Schema describes the accepted arguments as a JSON schema object.
	Schema() map[string]interface{}

	// Execute decodes argumentsXML and runs the tool. The returned text is
	// shown to the model; metadata is optional structured detail for the
	// host. A non-nil error means the call itself was malformed.
	Execute(ctx context.Context, argumentsXML []byte) (string, map[string]interface{}, error)

	// IsLoopBreaking reports whether the agent should yield to the user
	// after this tool runs.
	IsLoopBreaking() bool
}

// ToolCall is a tool invocation parsed from model output.
type ToolCall struct {
	XMLName    xml.Name       `xml:"tool"`
	ServerName string         `xml:"server_name"`
	ToolName   string         `xml:"tool_name"`
	Arguments  ArgumentsBlock `xml:"arguments"`
}

// ArgumentsBlock keeps the raw inner XML of <arguments>.
type ArgumentsBlock struct {
	InnerXML []byte `xml:",innerxml"`
}

// GetArgumentsXML re-wraps the arguments in their <arguments> element so a
// tool can unmarshal them into its input struct.
func (tc *ToolCall) GetArgumentsXML() []byte {
	const prefix, suffix = "<arguments>", "</arguments>"

	out := make([]byte, 0, len(prefix)+len(tc.Arguments.InnerXML)+len(suffix))
	out = append(out, prefix...)
	out = append(out, tc.Arguments.InnerXML...)
	out = append(out, suffix...)
	return out
}

// Previewable is implemented by tools that can describe an action before it
// runs, so the host can ask for approval.
type Previewable interface {
	GeneratePreview(ctx context.Context, argumentsXML []byte) (*ToolPreview, error)
}

// ToolPreview describes a pending action.
type ToolPreview struct {
	Type        PreviewType
	Title       string
	Description string
	Content     string
	Metadata    map[string]interface{}
}

// PreviewType names the kind of action being previewed.
type PreviewType string

const (
	// PreviewTypeNavigation is a page load of an external URL.
	PreviewTypeNavigation PreviewType = "navigation"

	// PreviewTypeFileWrite is an artifact written into the workspace.
	PreviewTypeFileWrite PreviewType = "file_write"
)

// BaseToolSchema builds an object schema from properties and the names of
// the required ones.
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
