package tools

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

const (
	defaultServerName = "local"
	maxToolCallSize   = 1 << 20
)

var (
	toolCallPattern = regexp.MustCompile(`(?s)<tool>.*?</tool>`)

	// entityPattern matches an ampersand that already starts an entity.
	entityPattern = regexp.MustCompile(`&(?:amp|lt|gt|quot|apos|#\d+|#x[0-9a-fA-F]+);`)
)

// ParseToolCall finds the first <tool> element in text and decodes it.
// It returns the call and the text with the call removed. Hosts run model
// output through it and pass the call to a registry's Execute.
func ParseToolCall(text string) (*ToolCall, string, error) {
	if len(text) > maxToolCallSize {
		return nil, text, fmt.Errorf("tool call exceeds maximum size of %d bytes", maxToolCallSize)
	}

	raw := toolCallPattern.FindString(text)
	if raw == "" {
		return nil, text, fmt.Errorf("no tool call found in text")
	}

	var call ToolCall
	if err := UnmarshalXMLWithFallback([]byte(raw), &call); err != nil {
		snippet := raw
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		return nil, text, fmt.Errorf("failed to unmarshal tool call: %w\nXML snippet: %s", err, snippet)
	}

	call.ToolName = strings.TrimSpace(call.ToolName)
	if call.ToolName == "" {
		return nil, text, fmt.Errorf("tool_name is required in tool call")
	}
	if call.ServerName == "" {
		call.ServerName = defaultServerName
	}

	rest := strings.TrimSpace(strings.Replace(text, raw, "", 1))
	return &call, rest, nil
}

// UnmarshalXMLWithFallback unmarshals data, retrying once with bare
// ampersands escaped. Models routinely emit URLs with raw query strings.
func UnmarshalXMLWithFallback(data []byte, v interface{}) error {
	err := xml.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	return xml.Unmarshal(escapeBareAmpersands(data), v)
}

func escapeBareAmpersands(data []byte) []byte {
	text := string(data)

	entities := make(map[int]bool)
	for _, loc := range entityPattern.FindAllStringIndex(text, -1) {
		entities[loc[0]] = true
	}

	var b strings.Builder
	b.Grow(len(text) + 16)
	for i := 0; i < len(text); i++ {
		if text[i] == '&' && !entities[i] {
			b.WriteString("&amp;")
			continue
		}
		b.WriteByte(text[i])
	}
	return []byte(b.String())
}
