package snapshot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func loginPage() *Node {
	return &Node{
		Role: "WebArea",
		Name: "Example Page",
		Children: []*Node{
			{Role: "heading", Name: "Welcome", Level: 1},
			{Role: "button", Name: "Sign In"},
			{Role: "textbox", Name: "Email", Value: ""},
			{Role: "link", Name: "Forgot password?"},
			{Role: "group", Name: "Options", Children: []*Node{
				{Role: "checkbox", Name: "Remember me", Checked: boolPtr(false)},
				{Role: "button", Name: "Submit", Disabled: true},
			}},
		},
	}
}

func TestTransform_LoginPage(t *testing.T) {
	root := loginPage()
	res := NewTransformer(0).Transform(root)

	want := strings.Join([]string{
		"Example Page (WebArea)",
		"  Welcome (heading, level 1)",
		"  [1] Sign In (button)",
		"  [2] Email (textbox)",
		"  [3] Forgot password? (link)",
		"  Options (group)",
		"    [4] Remember me (checkbox, unchecked)",
		"    [5] Submit (button, disabled)",
	}, "\n")
	assert.Equal(t, want, res.Text)
	assert.Len(t, strings.Split(res.Text, "\n"), 8)

	require.Equal(t, 5, res.Count())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, res.Ordered())

	names := []string{"Sign In", "Email", "Forgot password?", "Remember me", "Submit"}
	for i, name := range names {
		assert.Equal(t, name, res.Refs[i+1].Name)
	}

	// refs point at the caller's nodes
	assert.Same(t, root.Children[1], res.Refs[1])
	assert.Same(t, root.Children[4].Children[1], res.Refs[5])
}

func TestTransform_Empty(t *testing.T) {
	tr := NewTransformer(10)

	res := tr.Transform(nil)
	assert.Equal(t, "", res.Text)
	assert.Empty(t, res.Refs)

	res = tr.Transform(&Node{})
	assert.Equal(t, "", res.Text)
	assert.Empty(t, res.Refs)
}

func TestTransform_RoleWithoutChildren(t *testing.T) {
	res := NewTransformer(10).Transform(&Node{Role: "button"})
	assert.Equal(t, "[1] (button)", res.Text)
	assert.Len(t, res.Refs, 1)
}

func TestTransform_SkipChainCollapses(t *testing.T) {
	root := &Node{
		Role: "main",
		Children: []*Node{
			{Role: "generic", Children: []*Node{
				{Role: "none", Children: []*Node{
					{Role: "group", Children: []*Node{
						{Role: "link", Name: "Deep"},
					}},
				}},
			}},
		},
	}

	res := NewTransformer(10).Transform(root)
	assert.Equal(t, "(main)\n  [1] Deep (link)", res.Text)
}

func TestTransform_RolelessNodesAreTransparent(t *testing.T) {
	root := &Node{
		Children: []*Node{
			{Role: "heading", Name: "Top", Level: 2},
			{Children: []*Node{
				{Role: "button", Name: "Go"},
			}},
		},
	}

	res := NewTransformer(10).Transform(root)
	assert.Equal(t, "Top (heading, level 2)\n[1] Go (button)", res.Text)
}

func TestTransform_NamedSkipRoleIsVisible(t *testing.T) {
	root := &Node{Role: "generic", Name: "Toolbar", Children: []*Node{
		{Role: "button", Name: "Bold"},
	}}

	res := NewTransformer(10).Transform(root)
	assert.Equal(t, "Toolbar (generic)\n  [1] Bold (button)", res.Text)
}

func TestTransform_MaxDepth(t *testing.T) {
	// chain of list items, each one level deeper
	root := &Node{Role: "list", Name: "L0"}
	cur := root
	for i := 1; i <= 5; i++ {
		child := &Node{Role: "button", Name: "B"}
		cur.Children = []*Node{child}
		cur = child
	}

	res := NewTransformer(2).Transform(root)
	lines := strings.Split(res.Text, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "    [2] B (button)", lines[2])
	assert.Equal(t, 2, res.Count())
	assert.Equal(t, 2, NewTransformer(2).MaxDepth())
	assert.Equal(t, DefaultMaxDepth, NewTransformer(-1).MaxDepth())
}

func TestTransform_StateAnnotations(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{
			name: "checked",
			node: &Node{Role: "checkbox", Name: "A", Checked: boolPtr(true)},
			want: "[1] A (checkbox, checked)",
		},
		{
			name: "all states in order",
			node: &Node{Role: "slider", Name: "Vol", Checked: boolPtr(false), Disabled: true, Level: 3, Value: "40"},
			want: `[1] Vol (slider, unchecked, disabled, level 3, value: "40")`,
		},
		{
			name: "value without name",
			node: &Node{Role: "combobox", Value: "red"},
			want: `[1] (combobox, value: "red")`,
		},
		{
			name: "non interactive has no ref",
			node: &Node{Role: "paragraph", Name: "Hello"},
			want: "Hello (paragraph)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewTransformer(10).Transform(tt.node)
			assert.Equal(t, tt.want, res.Text)
		})
	}
}

func TestTransform_RefsArePreOrderAndGlobal(t *testing.T) {
	root := &Node{Role: "WebArea", Children: []*Node{
		{Role: "navigation", Children: []*Node{
			{Role: "link", Name: "Home"},
			{Role: "link", Name: "About"},
		}},
		{Role: "form", Children: []*Node{
			{Role: "textbox", Name: "Query"},
			{Role: "generic", Children: []*Node{{Role: "button", Name: "Search"}}},
		}},
		{Role: "tab", Name: "Results"},
	}}

	res := NewTransformer(10).Transform(root)
	got := make([]string, 0, res.Count())
	for _, ref := range res.Ordered() {
		got = append(got, res.Refs[ref].Name)
	}
	assert.Equal(t, []string{"Home", "About", "Query", "Search", "Results"}, got)
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	root := loginPage()
	before := len(root.Children)

	tr := NewTransformer(10)
	first := tr.Transform(root)
	second := tr.Transform(root)

	assert.Equal(t, before, len(root.Children))
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Count(), second.Count())
}
