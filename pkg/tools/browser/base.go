package browser

import (
	"context"

	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

// sessionTool is embedded by every browser tool. All tools of a registry
// share the one session of its workspace.
type sessionTool struct {
	manager   *core.Manager
	workspace string
}

func (t sessionTool) session() (*core.Session, error) {
	return t.manager.Session(t.workspace)
}

// ShouldShow hides the tool until the workspace has a running browser.
func (t sessionTool) ShouldShow() bool {
	s, ok := t.manager.Lookup(t.workspace)
	return ok && s.State() == core.StateActive
}

// IsLoopBreaking returns false; browser tools never end the agent turn.
func (sessionTool) IsLoopBreaking() bool {
	return false
}

// withSession runs fn against the workspace session and renders any
// session failure as a text result.
func (t sessionTool) withSession(ctx context.Context, fn func(*core.Session) (string, map[string]interface{}, error)) (string, map[string]interface{}, error) {
	s, err := t.session()
	if err != nil {
		return renderError(err), errorMetadata(err), nil
	}
	out, meta, err := fn(s)
	if err != nil {
		return renderError(err), errorMetadata(err), nil
	}
	return out, meta, nil
}
