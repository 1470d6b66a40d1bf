package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/config"
)

type stoppableDriver struct {
	fakeDriver
	stopped bool
	stopErr error
}

func (d *stoppableDriver) Stop() error {
	d.stopped = true
	return d.stopErr
}

func newWorkspace(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0750))
	return dir
}

func TestManager_SessionPerWorkspace(t *testing.T) {
	root := t.TempDir()
	alice := newWorkspace(t, root, "alice")
	bob := newWorkspace(t, root, "bob")
	m := NewManager(&fakeDriver{}, config.Default(), nil)

	s1, err := m.Session(alice)
	require.NoError(t, err)
	s2, err := m.Session(alice + "/")
	require.NoError(t, err)
	assert.Same(t, s1, s2, "same workspace, same session")

	s3, err := m.Session(bob)
	require.NoError(t, err)
	assert.NotSame(t, s1, s3)

	got, ok := m.Lookup(bob)
	assert.True(t, ok)
	assert.Same(t, s3, got)

	_, ok = m.Lookup(filepath.Join(root, "carol"))
	assert.False(t, ok)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alice", filepath.Base(list[0].Workspace))
	assert.Equal(t, "bob", filepath.Base(list[1].Workspace))
	assert.False(t, m.HasActive())
}

func TestManager_SessionErrors(t *testing.T) {
	m := NewManager(&fakeDriver{}, config.Default(), nil)
	_, err := m.Session(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestManager_CloseAndCloseAll(t *testing.T) {
	root := t.TempDir()
	alice := newWorkspace(t, root, "alice")
	bob := newWorkspace(t, root, "bob")
	d := &fakeDriver{}
	m := NewManager(d, config.Default(), nil)
	ctx := context.Background()

	sa, err := m.Session(alice)
	require.NoError(t, err)
	require.NoError(t, sa.Launch(ctx))
	sb, err := m.Session(bob)
	require.NoError(t, err)
	require.NoError(t, sb.Launch(ctx))
	assert.True(t, m.HasActive())

	require.NoError(t, m.Close(ctx, alice))
	assert.Equal(t, StateClosed, sa.State())
	_, ok := m.Lookup(alice)
	assert.False(t, ok)
	assert.Error(t, m.Close(ctx, alice), "already closed and forgotten")

	require.NoError(t, m.CloseAll(ctx))
	assert.Equal(t, StateClosed, sb.State())
	assert.Empty(t, m.List())
}

func TestManager_CleanupIdle(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	base := config.Default()
	base.IdleTimeout = 60
	m := NewManager(&fakeDriver{}, base, nil, WithClock(clock))
	m.now = clock
	ctx := context.Background()

	stale, err := m.Session(newWorkspace(t, root, "stale"))
	require.NoError(t, err)
	require.NoError(t, stale.Launch(ctx))

	now = now.Add(2 * time.Minute)
	fresh, err := m.Session(newWorkspace(t, root, "fresh"))
	require.NoError(t, err)
	require.NoError(t, fresh.Launch(ctx))

	closed, err := m.CleanupIdle(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, StateClosed, stale.State())
	assert.Equal(t, StateActive, fresh.State())

	list := m.List()
	require.Len(t, list, 1)
	assert.Equal(t, fresh.ID(), list[0].ID)
}

func TestManager_Shutdown(t *testing.T) {
	d := &stoppableDriver{}
	m := NewManager(d, config.Default(), nil)
	ctx := context.Background()

	s, err := m.Session(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Launch(ctx))

	require.NoError(t, m.Shutdown(ctx))
	assert.True(t, d.stopped)
	assert.Equal(t, StateClosed, s.State())

	d.stopErr = errors.New("driver hung")
	assert.Error(t, m.Shutdown(ctx))
}

func TestManager_RunCleanupStopsWithContext(t *testing.T) {
	m := NewManager(&fakeDriver{}, config.Default(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.RunCleanup(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not return after cancel")
	}
}

func TestManager_RunCleanupNonPositiveInterval(t *testing.T) {
	t.Run("disabled idle timeout returns at once", func(t *testing.T) {
		base := config.Default()
		base.IdleTimeout = 0
		m := NewManager(&fakeDriver{}, base, nil)

		done := make(chan struct{})
		go func() {
			m.RunCleanup(context.Background(), 0)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("RunCleanup kept running with cleanup disabled")
		}
	})

	t.Run("falls back to the idle timeout", func(t *testing.T) {
		m := NewManager(&fakeDriver{}, config.Default(), nil)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			m.RunCleanup(ctx, -time.Second)
			close(done)
		}()

		select {
		case <-done:
			t.Fatal("RunCleanup returned before cancel")
		case <-time.After(20 * time.Millisecond):
		}
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("RunCleanup did not return after cancel")
		}
	})
}
