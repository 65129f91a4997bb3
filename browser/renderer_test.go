package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseWithoutStart(t *testing.T) {
	r := New("Mozilla/5.0 (Educational Bot)", time.Second)
	assert.NotPanics(t, r.Close)
	assert.NotPanics(t, r.Close)
	assert.False(t, r.started)
}

// requireChrome skips unless a browser chromedp can launch is on PATH
func requireChrome(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("browser rendering skipped in -short mode")
	}
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "chrome"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no Chrome or Chromium found on PATH")
}

const scriptedPage = `<html><body><div id="price">loading</div>
<script>document.getElementById("price").textContent = "Rs. 812.40";</script>
</body></html>`

func TestRenderRunsScripts(t *testing.T) {
	requireChrome(t)

	var mu sync.Mutex
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotUA = r.Header.Get("User-Agent")
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(scriptedPage))
	}))
	defer srv.Close()

	r := New("Mozilla/5.0 (Educational Bot)", 200*time.Millisecond)
	defer r.Close()

	html, err := r.Render(context.Background(), srv.URL+"/company/LUCK", 20*time.Second)
	require.NoError(t, err)

	assert.Contains(t, html, "Rs. 812.40")
	assert.NotContains(t, html, ">loading<")
	mu.Lock()
	assert.Equal(t, "Mozilla/5.0 (Educational Bot)", gotUA)
	mu.Unlock()

	// the tab is reused for the next page
	html, err = r.Render(context.Background(), srv.URL+"/company/OGDC", 20*time.Second)
	require.NoError(t, err)
	assert.Contains(t, html, "Rs. 812.40")
}

func TestRenderCancelledBeforeStart(t *testing.T) {
	r := New("Mozilla/5.0 (Educational Bot)", 0)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, "http://127.0.0.1:1/", time.Second)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, r.started)
}
