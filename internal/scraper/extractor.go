package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/leadscout/internal/browser"
	"github.com/jimezsa/leadscout/internal/models"
	"github.com/rs/zerolog"
)

const experienceOffset = 500

type ExtractorDelays struct {
	Settle         time.Duration
	Bottom         time.Duration
	Top            time.Duration
	HeadingTimeout time.Duration
	Experience     time.Duration
}

func DefaultExtractorDelays() ExtractorDelays {
	return ExtractorDelays{
		Settle:         4 * time.Second,
		Bottom:         2 * time.Second,
		Top:            1 * time.Second,
		HeadingTimeout: 5 * time.Second,
		Experience:     2 * time.Second,
	}
}

// Extractor reads one profile page into a Lead.
type Extractor struct {
	delays ExtractorDelays
	logger zerolog.Logger
}

func NewExtractor(delays ExtractorDelays, logger zerolog.Logger) *Extractor {
	return &Extractor{delays: delays, logger: logger}
}

// Extract never fails. Fields it cannot find hold the sentinel, and a page
// that cannot be loaded yields a record of sentinels.
func (e *Extractor) Extract(ctx context.Context, page browser.Page, profileURL string) models.Lead {
	log := e.logger.With().Str("profile", profileURL).Logger()

	if err := page.Navigate(ctx, profileURL); err != nil {
		log.Warn().Err(err).Msg("profile navigation failed")
		return models.EmptyLead(profileURL)
	}
	_ = browser.Pause(ctx, e.delays.Settle)
	_ = page.ScrollToBottom(ctx)
	_ = browser.Pause(ctx, e.delays.Bottom)
	_ = page.ScrollTo(ctx, 0)
	_ = browser.Pause(ctx, e.delays.Top)
	if err := page.WaitReady(ctx, "h1", e.delays.HeadingTimeout); err != nil {
		log.Debug().Err(err).Msg("profile heading not found")
	}

	doc, err := snapshot(ctx, page)
	if err != nil {
		log.Warn().Err(err).Msg("profile snapshot failed")
		return models.EmptyLead(profileURL)
	}

	lead := ParseProfile(doc)
	lead.URL = profileURL

	if models.IsSentinel(lead.Company) {
		lead.Company = e.experienceCompany(ctx, page, doc)
	}

	log.Debug().
		Bool("name", !models.IsSentinel(lead.Name)).
		Bool("title", !models.IsSentinel(lead.Title)).
		Bool("company", !models.IsSentinel(lead.Company)).
		Bool("location", !models.IsSentinel(lead.Location)).
		Msg("profile extracted")
	return lead.Normalized()
}

// experienceCompany scrolls the experience section into view and reads the
// first employer from a fresh snapshot, falling back to the one given.
func (e *Extractor) experienceCompany(ctx context.Context, page browser.Page, doc *goquery.Document) string {
	_ = page.ScrollTo(ctx, experienceOffset)
	_ = browser.Pause(ctx, e.delays.Experience)
	if fresh, err := snapshot(ctx, page); err == nil {
		doc = fresh
	}
	return experienceChain.Value(doc)
}

// ParseProfile reads every field available on a loaded profile document.
// Company comes only from the headline here; the experience section needs
// a scroll and is handled by Extract.
func ParseProfile(doc *goquery.Document) models.Lead {
	name := nameChain.Value(doc)
	title := titleChain.Value(doc)
	return models.Lead{
		Name:     name,
		Title:    title,
		Company:  models.OrSentinel(CompanyFromTitle(title)),
		Location: models.OrSentinel(Location(doc, name, title)),
	}.Normalized()
}

// CompanyFromTitle returns the text after the last " at " of a headline
// such as "Engineer at Acme".
func CompanyFromTitle(title string) string {
	if models.IsSentinel(title) {
		return ""
	}
	i := strings.LastIndex(title, " at ")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(title[i+len(" at "):])
}

// Location returns the first candidate text that looks like a place.
func Location(doc *goquery.Document, name, title string) string {
	if doc == nil {
		return ""
	}
	for _, sel := range locationSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := cleanText(s.Text())
			if LooksLikeLocation(text, name, title) {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}
