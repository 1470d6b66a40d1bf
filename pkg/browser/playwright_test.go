package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/config"
)

const integrationPage = `<html><head><title>Sign in</title></head><body>
<h1>Welcome</h1>
<label for="email">Email</label><input id="email" type="email">
<label><input type="checkbox" checked> Remember me</label>
<button onclick="document.title='Clicked'">Continue</button>
</body></html>`

// Runs against a real Chromium. Set OPENPAW_BROWSER_TESTS=1 with the
// playwright browsers already installed.
func TestPlaywrightDriver_Integration(t *testing.T) {
	if testing.Short() || os.Getenv("OPENPAW_BROWSER_TESTS") == "" {
		t.Skip("set OPENPAW_BROWSER_TESTS=1 to run browser integration tests")
	}

	driver := NewPlaywrightDriver(true)
	t.Cleanup(func() { _ = driver.Stop() })

	cfg := config.Default()
	cfg.WorkspacePath = t.TempDir()
	cfg.PersistCookies = false

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(integrationPage))
	}))
	t.Cleanup(srv.Close)

	s, err := NewSession(cfg, driver)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.Launch(ctx); err != nil {
		t.Skipf("chromium unavailable: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	info, err := s.Navigate(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 200, info.Status)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sign in", snap.Title)
	assert.Contains(t, snap.Text, `Welcome (heading, level 1)`)
	assert.Contains(t, snap.Text, `Continue (button)`)
	assert.Contains(t, snap.Text, `(checkbox, checked)`)
	assert.NotEmpty(t, snap.Refs)

	var button int
	for ref, node := range snap.Refs {
		if node.Role == "button" && node.Name == "Continue" {
			button = ref
		}
	}
	require.NotZero(t, button, "button ref")

	info, err = s.Click(ctx, button)
	require.NoError(t, err)
	assert.Equal(t, "Clicked", info.Title)
	assert.Empty(t, s.Refs(), "click invalidates refs")

	tabs, err := s.Tabs(ctx)
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	assert.True(t, tabs[0].Active)

	page, err := s.inst.NewPage()
	require.NoError(t, err)
	pw, ok := page.(*pwPage)
	require.True(t, ok)

	stop := pw.OnMainFrameNavigated(func(string) {})
	assert.Equal(t, 1, pw.page.ListenerCount(frameNavigatedEvent))
	stop()
	assert.Equal(t, 0, pw.page.ListenerCount(frameNavigatedEvent), "cancel removes the listener")
	stop()
}
