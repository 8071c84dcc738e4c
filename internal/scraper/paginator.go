package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/leadscout/internal/browser"
	"github.com/jimezsa/leadscout/internal/models"
	"github.com/rs/zerolog"
)

const (
	searchPath      = "/search/results/people/"
	resultsPerPage  = 10
	extraPages      = 2
	resultContainer = "[data-chameleon-result-urn]"
)

// PaginatorDelays are the waits around each results page.
type PaginatorDelays struct {
	Settle       time.Duration
	Scroll       time.Duration
	ScrollPasses int
	After        time.Duration
}

func DefaultPaginatorDelays() PaginatorDelays {
	return PaginatorDelays{
		Settle:       5 * time.Second,
		Scroll:       2 * time.Second,
		ScrollPasses: 3,
		After:        3 * time.Second,
	}
}

// Paginator walks people-search result pages and collects profile URLs.
type Paginator struct {
	base   string
	delays PaginatorDelays
	logger zerolog.Logger
}

func NewPaginator(delays PaginatorDelays, logger zerolog.Logger) *Paginator {
	return &Paginator{base: baseURL, delays: delays, logger: logger}
}

// MaxPages is the page budget for a search that wants limit profiles.
func MaxPages(limit int) int {
	if limit <= 0 {
		return 0
	}
	return (limit+resultsPerPage-1)/resultsPerPage + extraPages
}

// PageURL returns the URL of the zero-based results page n.
func (p *Paginator) PageURL(query models.SearchQuery, n int) string {
	u := fmt.Sprintf("%s%s?keywords=%s", p.base, searchPath, query.Encoded())
	if n > 0 {
		u = fmt.Sprintf("%s&page=%d", u, n+1)
	}
	return u
}

// Search returns up to limit canonical profile URLs in the order they were
// first seen. It never fails: navigation or parse problems end the walk and
// whatever was collected is returned.
func (p *Paginator) Search(ctx context.Context, page browser.Page, query models.SearchQuery, limit int) []string {
	if limit <= 0 || len(query.Phrases()) == 0 {
		return nil
	}

	var urls []string
	seen := map[string]struct{}{}
	maxPages := MaxPages(limit)

	for n := 0; n < maxPages; n++ {
		if len(urls) >= limit {
			break
		}
		if ctx.Err() != nil {
			p.logger.Warn().Err(ctx.Err()).Int("page", n+1).Msg("search cancelled")
			break
		}

		doc, err := p.loadPage(ctx, page, p.PageURL(query, n))
		if err != nil {
			p.logger.Warn().Err(err).Int("page", n+1).Msg("search page failed")
			break
		}

		added := 0
		for _, link := range ProfileLinks(doc, p.base) {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			urls = append(urls, link)
			added++
		}

		p.logger.Info().
			Int("page", n+1).
			Int("new", added).
			Int("total", len(urls)).
			Msg("search page parsed")

		if added == 0 {
			break
		}
	}

	if len(urls) > limit {
		urls = urls[:limit]
	}
	return urls
}

func (p *Paginator) loadPage(ctx context.Context, page browser.Page, target string) (*goquery.Document, error) {
	if err := page.Navigate(ctx, target); err != nil {
		return nil, err
	}
	_ = browser.Pause(ctx, p.delays.Settle)
	for i := 0; i < p.delays.ScrollPasses; i++ {
		_ = page.ScrollToBottom(ctx)
		_ = browser.Pause(ctx, p.delays.Scroll)
	}
	_ = browser.Pause(ctx, p.delays.After)
	return snapshot(ctx, page)
}

// ProfileLinks extracts canonical profile URLs from a results document, in
// document order, without duplicates. Absolute anchors anywhere on the page
// come first, then anchors inside result containers.
func ProfileLinks(doc *goquery.Document, base string) []string {
	var links []string
	seen := map[string]struct{}{}
	add := func(href string) {
		link := CanonicalProfileURL(base, href)
		if link == "" {
			return
		}
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if strings.Contains(href, "/in/") && strings.Contains(href, "linkedin.com") {
			add(href)
		}
	})

	doc.Find(resultContainer).Each(func(_ int, s *goquery.Selection) {
		s.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			add(a.AttrOr("href", ""))
		})
	})

	return links
}
