package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/leadscout/internal/models"
)

// Strategy is one way of locating a field. Transform turns the first match
// into a value; nil means the element's cleaned text.
type Strategy struct {
	Name      string
	Locator   string
	Transform func(*goquery.Selection) string
}

// Chain is an ordered list of strategies. The first non-empty result wins.
type Chain []Strategy

// Apply runs the chain against doc and returns the winning value and the
// name of the strategy that produced it. Both are empty when nothing
// matched.
func (c Chain) Apply(doc *goquery.Document) (string, string) {
	if doc == nil {
		return "", ""
	}
	for _, s := range c {
		sel := doc.Find(s.Locator).First()
		if sel.Length() == 0 {
			continue
		}
		transform := s.Transform
		if transform == nil {
			transform = selectionText
		}
		if value := transform(sel); value != "" {
			return value, s.Name
		}
	}
	return "", ""
}

// Value is Apply with the sentinel substituted for a miss.
func (c Chain) Value(doc *goquery.Document) string {
	value, _ := c.Apply(doc)
	return models.OrSentinel(value)
}

func selectionText(s *goquery.Selection) string {
	return cleanText(s.Text())
}

var nameChain = Chain{
	{Name: "h1", Locator: "h1"},
	{Name: "heading-xlarge", Locator: "h1.text-heading-xlarge"},
}

var titleChain = Chain{
	{Name: "headline", Locator: "div.text-body-medium.break-words"},
	{Name: "body-medium", Locator: "div.text-body-medium"},
}

var experienceChain = Chain{
	{Name: "experience-link", Locator: "#experience span[class*='t-14'][class*='t-normal'] a"},
	{Name: "experience-mr1", Locator: "#experience span[class*='mr1']"},
	{Name: "experience-section", Locator: "section:has(#experience) span[aria-hidden='true']", Transform: experienceCompanyLine},
}

// experienceCompanyLine picks the company line of the first experience
// entry. Entries render role first and company second; a lone line is
// taken as is.
func experienceCompanyLine(s *goquery.Selection) string {
	section := s.Closest("section")
	if section.Length() == 0 {
		return selectionText(s)
	}
	var lines []string
	section.Find("span[aria-hidden='true']").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if text := selectionText(span); text != "" && text != "Experience" {
			lines = append(lines, text)
		}
		return len(lines) < 2
	})
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return lines[0]
	default:
		return companyName(lines[1])
	}
}

// companyName drops the employment-type suffix of "Acme · Full-time".
func companyName(line string) string {
	if i := strings.IndexRune(line, '·'); i >= 0 {
		return cleanText(line[:i])
	}
	return line
}
