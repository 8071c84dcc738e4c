package models

import "strings"

// Sentinel is written in place of any field that could not be extracted.
const Sentinel = "N/A"

// Lead is the structured contact record built from one profile page.
type Lead struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url,omitempty"`
}

// EmptyLead returns a record with every field set to the sentinel.
func EmptyLead(url string) Lead {
	return Lead{
		Name:     Sentinel,
		Title:    Sentinel,
		Company:  Sentinel,
		Location: Sentinel,
		URL:      url,
	}
}

// Normalized replaces blank fields with the sentinel.
func (l Lead) Normalized() Lead {
	l.Name = OrSentinel(l.Name)
	l.Title = OrSentinel(l.Title)
	l.Company = OrSentinel(l.Company)
	l.Location = OrSentinel(l.Location)
	return l
}

// OrSentinel trims value and substitutes the sentinel when nothing is left.
func OrSentinel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return Sentinel
	}
	return value
}

// IsSentinel reports whether value is the sentinel placeholder.
func IsSentinel(value string) bool {
	return strings.TrimSpace(value) == Sentinel
}
