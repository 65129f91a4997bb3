// Package browser renders pages in headless Chrome for sites that build their
// tables client-side.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Renderer owns one headless browser tab. Pages are fetched one at a time,
// so a single tab is reused and reset between renders.
type Renderer struct {
	userAgent string
	settle    time.Duration

	mu          sync.Mutex
	started     bool
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

// New creates a renderer. Chrome is not launched until the first Render.
// settle is how long to wait after load for scripts to fill the page.
func New(userAgent string, settle time.Duration) *Renderer {
	return &Renderer{userAgent: userAgent, settle: settle}
}

func (r *Renderer) start() error {
	if r.started {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1366, 900),
		chromedp.UserAgent(r.userAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank")); err != nil {
		tabCancel()
		allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	r.allocCancel, r.tabCtx, r.tabCancel = allocCancel, tabCtx, tabCancel
	r.started = true
	return nil
}

// Render navigates to url and returns the page's outer HTML once the body is
// ready and the settle delay has passed.
func (r *Renderer) Render(ctx context.Context, url string, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.start(); err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(r.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(runCtx,
		network.ClearBrowserCookies(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", url, err)
	}
	return html, nil
}

// Close shuts the browser down. Safe to call on a renderer that never started.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return
	}
	r.tabCancel()
	r.allocCancel()
	r.started = false
}
