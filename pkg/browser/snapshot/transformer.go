package snapshot

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultMaxDepth is the deepest level rendered when no depth is configured.
const DefaultMaxDepth = 10

const indentUnit = "  "

// Result is the output of a transformation.
type Result struct {
	// Text is the newline-joined listing, one line per visible node.
	Text string

	// Refs maps each assigned ref (1..N) to the node it was assigned to.
	// The nodes are the ones passed to Transform, not copies.
	Refs map[int]*Node
}

// Count returns the number of refs in the result.
func (r Result) Count() int {
	return len(r.Refs)
}

// Ordered returns the assigned refs in ascending order.
func (r Result) Ordered() []int {
	refs := make([]int, 0, len(r.Refs))
	for ref := range r.Refs {
		refs = append(refs, ref)
	}
	sort.Ints(refs)
	return refs
}

// Transformer flattens accessibility trees. It holds no per-call state and
// can be shared.
type Transformer struct {
	maxDepth int
}

// NewTransformer creates a transformer that stops rendering below maxDepth.
// A non-positive maxDepth selects DefaultMaxDepth.
func NewTransformer(maxDepth int) *Transformer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Transformer{maxDepth: maxDepth}
}

// MaxDepth returns the configured depth limit.
func (t *Transformer) MaxDepth() int {
	return t.maxDepth
}

// entry is a visible node together with the depth it is rendered at.
type entry struct {
	node  *Node
	depth int
}

// Transform renders root and assigns refs to its interactive nodes in
// pre-order. A nil root yields an empty result.
func (t *Transformer) Transform(root *Node) Result {
	res := Result{Refs: make(map[int]*Node)}
	if root == nil {
		return res
	}

	lines := make([]string, 0, 32)
	next := 1
	for _, e := range t.visible(root) {
		prefix := ""
		if IsInteractive(e.node.Role) {
			res.Refs[next] = e.node
			prefix = fmt.Sprintf("[%d] ", next)
			next++
		}

		desc := describe(e.node)
		if desc == "" {
			continue
		}
		lines = append(lines, strings.Repeat(indentUnit, e.depth)+prefix+desc)
	}

	res.Text = strings.Join(lines, "\n")
	return res
}

// visible lists the nodes that produce a line, in pre-order, with the depth
// each is rendered at. Role-less nodes and unnamed wrappers pass their
// children through at their own depth.
func (t *Transformer) visible(root *Node) []entry {
	var out []entry
	stack := []entry{{node: root}}

	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if e.node == nil || e.depth > t.maxDepth {
			continue
		}

		childDepth := e.depth
		if e.node.Role != "" && !(IsSkipped(e.node.Role) && e.node.Name == "") {
			out = append(out, e)
			childDepth = e.depth + 1
		}

		// Push in reverse so the first child is visited first.
		for i := len(e.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, entry{node: e.node.Children[i], depth: childDepth})
		}
	}
	return out
}

// describe builds "name (role, state, ...)" for a node.
func describe(n *Node) string {
	if n.Role == "" {
		return n.Name
	}

	parts := []string{n.Role}
	if n.Checked != nil {
		if *n.Checked {
			parts = append(parts, "checked")
		} else {
			parts = append(parts, "unchecked")
		}
	}
	if n.Disabled {
		parts = append(parts, "disabled")
	}
	if n.Level != 0 {
		parts = append(parts, fmt.Sprintf("level %d", n.Level))
	}
	if n.Value != "" {
		parts = append(parts, fmt.Sprintf(`value: "%s"`, n.Value))
	}

	clause := "(" + strings.Join(parts, ", ") + ")"
	if n.Name == "" {
		return clause
	}
	return n.Name + " " + clause
}
