package browser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/config"
	"github.com/johnsosoka/OpenPaw-sub003/pkg/logging"
)

// Stopper is implemented by drivers that hold process-wide resources.
type Stopper interface {
	Stop() error
}

// Manager keeps one session per workspace, created on first use from a
// shared base configuration.
type Manager struct {
	mu       sync.Mutex
	driver   Driver
	base     config.BrowserConfig
	opts     []Option
	logger   *logging.Logger
	sessions map[string]*Session
	now      func() time.Time
}

// NewManager creates a manager. base supplies every option except the
// workspace path; opts are applied to each session it creates.
func NewManager(driver Driver, base config.BrowserConfig, logger *logging.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = logging.Discard("browser")
	}
	return &Manager{
		driver:   driver,
		base:     base,
		opts:     opts,
		logger:   logger,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func workspaceKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace path: %w", err)
	}
	return abs, nil
}

// Session returns the workspace's session, creating it if needed.
func (m *Manager) Session(workspacePath string) (*Session, error) {
	key, err := workspaceKey(workspacePath)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[key]; ok {
		return s, nil
	}

	cfg := m.base
	cfg.WorkspacePath = key
	s, err := NewSession(cfg, m.driver, append([]Option{WithLogger(m.logger.With(filepath.Base(key)))}, m.opts...)...)
	if err != nil {
		return nil, err
	}
	m.sessions[key] = s
	m.logger.Debugf("created browser session %s for %s", s.ID(), key)
	return s, nil
}

// Lookup returns an existing session without creating one.
func (m *Manager) Lookup(workspacePath string) (*Session, bool) {
	key, err := workspaceKey(workspacePath)
	if err != nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	return s, ok
}

// List returns the status of every session, ordered by workspace.
func (m *Manager) List() []Status {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	out := make([]Status, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Workspace < out[j].Workspace })
	return out
}

// HasActive reports whether any session has a running browser.
func (m *Manager) HasActive() bool {
	for _, st := range m.List() {
		if st.State == StateActive {
			return true
		}
	}
	return false
}

// Close closes and forgets the workspace's session.
func (m *Manager) Close(ctx context.Context, workspacePath string) error {
	key, err := workspaceKey(workspacePath)
	if err != nil {
		return err
	}

	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("no browser session for workspace %s", workspacePath)
	}
	return s.Close(ctx)
}

// CloseAll closes every session.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for key, s := range sessions {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// CleanupIdle closes sessions unused for longer than idle and returns how
// many were closed. A non-positive idle uses the configured idle timeout.
func (m *Manager) CleanupIdle(ctx context.Context, idle time.Duration) (int, error) {
	if idle <= 0 {
		idle = m.base.IdleTimeoutDuration()
	}
	if idle <= 0 {
		return 0, nil
	}

	now := m.now()
	m.mu.Lock()
	var stale []*Session
	for key, s := range m.sessions {
		if now.Sub(s.LastUsed()) > idle {
			stale = append(stale, s)
			delete(m.sessions, key)
		}
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range stale {
		m.logger.Infof("closing idle browser session %s", s.ID())
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return len(stale), errors.Join(errs...)
}

// RunCleanup calls CleanupIdle every interval until ctx is done. A
// non-positive interval uses half the idle timeout; when that is disabled
// too, RunCleanup returns at once.
func (m *Manager) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.base.IdleTimeoutDuration() / 2
	}
	if interval <= 0 {
		m.logger.Debugf("idle cleanup disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.CleanupIdle(ctx, 0); err != nil {
				m.logger.Warnf("idle cleanup: %v", err)
			}
		}
	}
}

// Shutdown closes every session and stops the driver when it supports it.
func (m *Manager) Shutdown(ctx context.Context) error {
	err := m.CloseAll(ctx)
	if stopper, ok := m.driver.(Stopper); ok {
		if stopErr := stopper.Stop(); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
	}
	return err
}
