package snapshot

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CDPValue is an AXValue from the Chrome DevTools Protocol.
type CDPValue struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
}

// CDPProperty is a named AXProperty.
type CDPProperty struct {
	Name  string   `json:"name"`
	Value CDPValue `json:"value"`
}

// CDPNode is one record of an Accessibility.getFullAXTree response.
type CDPNode struct {
	NodeID     string        `json:"nodeId"`
	Ignored    bool          `json:"ignored"`
	Role       *CDPValue     `json:"role,omitempty"`
	Name       *CDPValue     `json:"name,omitempty"`
	Value      *CDPValue     `json:"value,omitempty"`
	Properties []CDPProperty `json:"properties,omitempty"`
	ChildIDs   []string      `json:"childIds,omitempty"`
	ParentID   string        `json:"parentId,omitempty"`
}

// ParseCDPTree decodes the JSON body of an Accessibility.getFullAXTree
// response ({"nodes": [...]}) and builds the tree.
func ParseCDPTree(data []byte) (*Node, error) {
	var resp struct {
		Nodes []CDPNode `json:"nodes"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode accessibility tree: %w", err)
	}
	return FromCDP(resp.Nodes), nil
}

// FromCDP links flat CDP records into a tree and returns its root, or nil
// when nodes is empty. The root is the first record that no other record
// lists as a child. Ignored records become role-less so their children are
// promoted; unknown child ids and cycles are skipped.
func FromCDP(nodes []CDPNode) *Node {
	if len(nodes) == 0 {
		return nil
	}

	byID := make(map[string]*CDPNode, len(nodes))
	isChild := make(map[string]bool, len(nodes))
	for i := range nodes {
		byID[nodes[i].NodeID] = &nodes[i]
		for _, c := range nodes[i].ChildIDs {
			isChild[c] = true
		}
	}

	root := &nodes[0]
	for i := range nodes {
		if !isChild[nodes[i].NodeID] {
			root = &nodes[i]
			break
		}
	}

	visited := make(map[string]bool, len(nodes))
	return build(root, byID, visited)
}

func build(rec *CDPNode, byID map[string]*CDPNode, visited map[string]bool) *Node {
	visited[rec.NodeID] = true

	n := convert(rec)
	for _, id := range rec.ChildIDs {
		child, ok := byID[id]
		if !ok || visited[id] {
			continue
		}
		n.Children = append(n.Children, build(child, byID, visited))
	}
	return n
}

func convert(rec *CDPNode) *Node {
	n := &Node{}
	if rec.Ignored {
		return n
	}

	if rec.Role != nil {
		n.Role = stringValue(rec.Role.Value)
	}
	if rec.Name != nil {
		n.Name = stringValue(rec.Name.Value)
	}
	if rec.Value != nil {
		n.Value = stringValue(rec.Value.Value)
	}

	for _, prop := range rec.Properties {
		switch prop.Name {
		case "checked":
			// tristate: "true", "false" or "mixed"; mixed counts as checked
			checked := stringValue(prop.Value.Value) != "false"
			n.Checked = &checked
		case "disabled":
			n.Disabled = boolValue(prop.Value.Value)
		case "level":
			n.Level = intValue(prop.Value.Value)
		}
	}
	return n
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	}
	return false
}

func intValue(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		i, _ := strconv.Atoi(t)
		return i
	}
	return 0
}
