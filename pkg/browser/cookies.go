package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/security/workspace"
)

// CookieFile is the workspace-relative location of persisted browser state.
const CookieFile = ".openpaw/browser_cookies.json"

// CookieJar persists the driver's storage state (cookies and origins) as an
// opaque JSON document inside the workspace.
type CookieJar struct {
	mu   sync.Mutex
	path string
}

// NewCookieJar resolves the cookie file inside the guarded workspace.
func NewCookieJar(guard *workspace.Guard) (*CookieJar, error) {
	path, err := guard.Resolve(CookieFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cookie file: %w", err)
	}
	return &CookieJar{path: path}, nil
}

// Path returns the absolute path of the cookie file.
func (j *CookieJar) Path() string {
	return j.path
}

// Load returns the saved state, or nil when nothing was saved yet. A file
// that is not valid JSON is an error.
func (j *CookieJar) Load() ([]byte, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("cookie file %s is not valid JSON", j.path)
	}
	return data, nil
}

// Save writes state through a temp file and rename so a crash never leaves
// a half-written file behind.
func (j *CookieJar) Save(state []byte) error {
	if !json.Valid(state) {
		return fmt.Errorf("storage state is not valid JSON")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create cookie directory: %w", err)
	}

	tempPath := j.path + ".tmp"
	if err := os.WriteFile(tempPath, state, 0600); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp cookie file: %w", err)
	}

	if err := os.Rename(tempPath, j.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp cookie file: %w", err)
	}
	return nil
}
