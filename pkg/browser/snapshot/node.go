// Package snapshot turns a browser accessibility tree into the compact,
// indented text listing handed to agents, and numbers the interactive
// elements in it so later actions can target them by ref.
package snapshot

// Node is one entry of an accessibility tree.
//
// The zero value is a valid, empty node. A node without a role is treated as
// transparent: it produces no output and its children are listed in its place.
type Node struct {
	Role     string
	Name     string
	Children []*Node

	// Checked is nil when the element has no checked state.
	Checked  *bool
	Disabled bool
	Level    int
	Value    string
}

// Roles that receive a ref and can be targeted by actions.
var interactiveRoles = map[string]bool{
	"button":     true,
	"link":       true,
	"textbox":    true,
	"checkbox":   true,
	"radio":      true,
	"combobox":   true,
	"menuitem":   true,
	"tab":        true,
	"switch":     true,
	"slider":     true,
	"searchbox":  true,
	"spinbutton": true,
}

// Wrapper roles that are elided unless they carry a name.
var skipRoles = map[string]bool{
	"generic": true,
	"none":    true,
	"group":   true,
}

// IsInteractive reports whether role is assigned refs in snapshots.
func IsInteractive(role string) bool {
	return interactiveRoles[role]
}

// IsSkipped reports whether role is a structural wrapper.
func IsSkipped(role string) bool {
	return skipRoles[role]
}
