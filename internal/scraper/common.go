package scraper

import (
	"context"
	"html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/leadscout/internal/browser"
)

const baseURL = "https://www.linkedin.com"

// snapshot parses the page's current document.
func snapshot(ctx context.Context, page browser.Page) (*goquery.Document, error) {
	raw, err := page.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(raw))
}

func cleanText(value string) string {
	value = html.UnescapeString(value)
	return strings.Join(strings.Fields(value), " ")
}

func absoluteURL(base string, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// CanonicalProfileURL resolves href against base and strips the query
// string and fragment. It returns "" for anything that is not a profile.
func CanonicalProfileURL(base string, href string) string {
	href = strings.TrimSpace(href)
	if !strings.Contains(href, "/in/") {
		return ""
	}
	abs := absoluteURL(base, href)
	u, err := url.Parse(abs)
	if err != nil || u.Host == "" {
		return ""
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	if !strings.Contains(u.Path, "/in/") {
		return ""
	}
	return u.String()
}
