// Package browsertest provides a scripted browser.Page for tests.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/leadscout/internal/browser"
)

var ErrNotFound = errors.New("selector not found")

// Page serves canned HTML keyed by URL. Selectors are checked against the
// current document with goquery, so WaitReady behaves like a real presence
// check.
type Page struct {
	mu sync.Mutex

	// Documents maps a URL to the HTML returned after navigating to it.
	Documents map[string]string
	// ScrolledDocuments, when set for a URL, replaces the document after
	// ScrollTo is called with a positive offset.
	ScrolledDocuments map[string]string
	// NavigateErrors fails navigation to the given URLs.
	NavigateErrors map[string]error
	// ClickTargets maps a selector to the URL the page moves to when it is
	// clicked.
	ClickTargets map[string]string

	current  string
	scrolled bool
	closed   int

	Visited []string
	Typed   map[string]string
	Clicked []string
	Scrolls int
}

var _ browser.Page = (*Page)(nil)

// New returns a page serving docs.
func New(docs map[string]string) *Page {
	return &Page{Documents: docs}
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed > 0 {
		return browser.ErrClosed
	}
	p.Visited = append(p.Visited, url)
	if err, ok := p.NavigateErrors[url]; ok {
		return err
	}
	p.current = url
	p.scrolled = false
	return nil
}

func (p *Page) WaitReady(ctx context.Context, sel string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.documentLocked()))
	if err != nil {
		return err
	}
	if doc.Find(sel).Length() == 0 {
		return fmt.Errorf("wait for %s: %w", sel, ErrNotFound)
	}
	return nil
}

func (p *Page) SendKeys(ctx context.Context, sel string, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Typed == nil {
		p.Typed = map[string]string{}
	}
	p.Typed[sel] += value
	return nil
}

func (p *Page) Click(ctx context.Context, sel string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Clicked = append(p.Clicked, sel)
	if target, ok := p.ClickTargets[sel]; ok {
		p.current = target
		p.scrolled = false
	}
	return nil
}

func (p *Page) ScrollTo(ctx context.Context, y int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Scrolls++
	if y > 0 {
		p.scrolled = true
	}
	return nil
}

func (p *Page) ScrollToBottom(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Scrolls++
	return nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed > 0 {
		return "", browser.ErrClosed
	}
	return p.documentLocked(), nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

// Closed returns how many times Close was called.
func (p *Page) Closed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) documentLocked() string {
	if p.scrolled {
		if doc, ok := p.ScrolledDocuments[p.current]; ok {
			return doc
		}
	}
	return p.Documents[p.current]
}

// Launcher hands out a fixed page and records the options it was given.
type Launcher struct {
	Page    browser.Page
	Err     error
	Options []browser.Options
}

func (l *Launcher) Launch(ctx context.Context, opts browser.Options) (browser.Page, error) {
	l.Options = append(l.Options, opts)
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Page, nil
}
