package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

var ErrClosed = errors.New("browser closed")

// Chrome is a Page backed by a chromedp-controlled Chrome process.
type Chrome struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// ChromeLauncher starts Chrome processes through chromedp.
type ChromeLauncher struct{}

func (ChromeLauncher) Launch(ctx context.Context, opts Options) (Page, error) {
	return Launch(ctx, opts)
}

// Launch starts a browser process configured by opts.
func Launch(ctx context.Context, opts Options) (*Chrome, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultWidth, DefaultHeight
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("log-level", "3"),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	// The process outlives the caller's context; Close owns teardown.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	bctx, cancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(bctx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &Chrome{ctx: bctx, cancel: cancel, allocCancel: allocCancel}, nil
}

func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.ctx.Err(); err != nil {
		return ErrClosed
	}
	return chromedp.Run(c.ctx, actions...)
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, chromedp.Navigate(url))
}

func (c *Chrome) WaitReady(ctx context.Context, sel string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %s: %w", sel, err)
	}
	return nil
}

func (c *Chrome) SendKeys(ctx context.Context, sel string, value string) error {
	return c.run(ctx, chromedp.SendKeys(sel, value, chromedp.ByQuery))
}

func (c *Chrome) Click(ctx context.Context, sel string) error {
	return c.run(ctx, chromedp.Click(sel, chromedp.ByQuery))
}

func (c *Chrome) ScrollTo(ctx context.Context, y int) error {
	return c.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollTo(0, %d);", y), nil))
}

func (c *Chrome) ScrollToBottom(ctx context.Context) error {
	return c.run(ctx, chromedp.Evaluate("window.scrollTo(0, document.body.scrollHeight);", nil))
}

func (c *Chrome) HTML(ctx context.Context) (string, error) {
	var html string
	if err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (c *Chrome) URL(ctx context.Context) (string, error) {
	var location string
	if err := c.run(ctx, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

// Close shuts the browser down. Later calls return the first result.
func (c *Chrome) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = chromedp.Cancel(c.ctx)
		c.cancel()
		c.allocCancel()
	})
	return c.closeErr
}
