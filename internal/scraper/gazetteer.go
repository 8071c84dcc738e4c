package scraper

import (
	"strings"
	"unicode/utf8"
)

var locationSelectors = []string{
	"span.text-body-small.inline.t-black--light.break-words",
	"div.text-body-small.inline.t-black--light.break-words",
	"span.text-body-small",
	"div.text-body-small",
	"span[class*='text-body-small'][class*='t-black--light']",
}

var gazetteer = []string{
	"uae", "dubai", "abu dhabi", "sharjah", "emirates", "saudi", "qatar",
	"kuwait", "bahrain", "oman", "india", "pakistan", "bangladesh",
	"singapore", "malaysia", "thailand", "indonesia", "philippines",
	"london", "new york", "california", "texas", "toronto", "sydney",
	"melbourne", "united arab", "united states", "united kingdom",
	"city", "region", "area", "state", "province", "country",
}

// LooksLikeLocation reports whether text is plausibly a place, given the
// name and title already extracted from the same profile. Length bounds
// count characters.
func LooksLikeLocation(text, name, title string) bool {
	if n := utf8.RuneCountInString(text); n <= 2 || n >= 100 {
		return false
	}
	if text == name || text == title {
		return false
	}
	if strings.Contains(text, ",") {
		return true
	}
	lower := strings.ToLower(text)
	for _, term := range gazetteer {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
