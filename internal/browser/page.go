package browser

import (
	"context"
	"time"
)

// Page is the set of browser operations the scraper needs. All calls for
// one job are made from a single goroutine.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// WaitReady blocks until sel is present in the DOM or timeout elapses.
	WaitReady(ctx context.Context, sel string, timeout time.Duration) error
	SendKeys(ctx context.Context, sel string, value string) error
	Click(ctx context.Context, sel string) error
	ScrollTo(ctx context.Context, y int) error
	ScrollToBottom(ctx context.Context) error
	// HTML returns the rendered document.
	HTML(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	Close() error
}

// Options configures a new browser process.
type Options struct {
	ExecPath  string
	Headless  bool
	UserAgent string
	Proxy     string
	Width     int
	Height    int
}

// Launcher starts a browser process and returns its first page.
type Launcher interface {
	Launch(ctx context.Context, opts Options) (Page, error)
}

// Pause waits for d or until ctx is done. A non-positive d returns at once.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
