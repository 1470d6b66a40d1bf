// Package workspace confines files produced by the browser (screenshots,
// PDFs, the cookie jar) to an agent's workspace directory.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Guard resolves workspace-relative paths and rejects any that escape the
// workspace root, including escapes through symlinks.
type Guard struct {
	root string // absolute, symlink-free workspace root
}

// NewGuard creates a guard for workspaceDir, which must exist.
func NewGuard(workspaceDir string) (*Guard, error) {
	if workspaceDir == "" {
		return nil, fmt.Errorf("workspace directory cannot be empty")
	}

	absPath, err := filepath.Abs(workspaceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace directory: %w", err)
	}

	evalPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate workspace directory symlinks: %w", err)
	}

	info, err := os.Stat(evalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat workspace directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace path %q is not a directory", workspaceDir)
	}

	return &Guard{root: evalPath}, nil
}

// Root returns the absolute workspace directory.
func (g *Guard) Root() string {
	return g.root
}

// Resolve turns a workspace-relative path into an absolute one.
// Absolute inputs are accepted only when they already lie inside the workspace.
func (g *Guard) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	abs := filepath.Clean(path)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(g.root, abs)
	}

	resolved := resolveSymlinks(abs)
	if !g.Contains(resolved) {
		return "", fmt.Errorf("path '%s' is outside workspace boundaries", path)
	}
	return resolved, nil
}

// EnsureDir resolves dir and creates it (and parents) inside the workspace.
func (g *Guard) EnsureDir(dir string) (string, error) {
	abs, err := g.Resolve(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0750); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return abs, nil
}

// Contains reports whether an absolute path is the workspace or lies below it.
func (g *Guard) Contains(absPath string) bool {
	evalPath := resolveSymlinks(absPath)
	sep := string(filepath.Separator)
	return evalPath == g.root || strings.HasPrefix(evalPath+sep, g.root+sep)
}

// Rel converts an absolute path inside the workspace to a relative one,
// always using forward slashes.
func (g *Guard) Rel(absPath string) (string, error) {
	if !g.Contains(absPath) {
		return "", fmt.Errorf("path '%s' is not within workspace", absPath)
	}
	rel, err := filepath.Rel(g.root, resolveSymlinks(absPath))
	if err != nil {
		return "", fmt.Errorf("failed to make path relative: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// resolveSymlinks evaluates symlinks for path. For paths that do not exist
// yet it resolves the longest existing ancestor and re-appends the rest.
func resolveSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}

	var components []string
	current := path
	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			for i := len(components) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, components[i])
			}
			return resolved
		}

		dir := filepath.Dir(current)
		if dir == current || dir == "." {
			return path
		}
		components = append(components, filepath.Base(current))
		current = dir
	}
}
