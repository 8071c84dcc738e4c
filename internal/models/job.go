package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// State is a step of the scrape job state machine.
type State string

const (
	StateInit          State = "INIT"
	StateDriverReady   State = "DRIVER_READY"
	StateAuthenticated State = "AUTHENTICATED"
	StateSearching     State = "SEARCHING"
	StateExtracting    State = "EXTRACTING"
	StateDone          State = "DONE"
	StateFailed        State = "FAILED"
)

// Terminal reports whether no transition can leave s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// ScrapeJob is one lead search request. It lives for a single run.
type ScrapeJob struct {
	ID        string
	Keywords  SearchQuery
	Limit     int
	Headless  bool
	CreatedAt time.Time
}

// Validate checks the inputs a job needs before it can start.
func (j ScrapeJob) Validate() error {
	if j.Limit <= 0 {
		return fmt.Errorf("limit must be greater than zero, got %d", j.Limit)
	}
	if len(j.Keywords.Phrases()) == 0 {
		return fmt.Errorf("at least one keyword is required")
	}
	return nil
}

// SearchQuery is the ordered list of keyword phrases for one search.
type SearchQuery []string

// Phrases returns the non-blank phrases in order.
func (q SearchQuery) Phrases() []string {
	out := make([]string, 0, len(q))
	for _, phrase := range q {
		phrase = strings.Join(strings.Fields(phrase), " ")
		if phrase == "" {
			continue
		}
		out = append(out, phrase)
	}
	return out
}

// Encoded joins the phrases with spaces and escapes the result for use as a
// query parameter value. Spaces are encoded as %20.
func (q SearchQuery) Encoded() string {
	joined := strings.Join(q.Phrases(), " ")
	return strings.ReplaceAll(url.QueryEscape(joined), "+", "%20")
}

func (q SearchQuery) String() string {
	return strings.Join(q.Phrases(), " ")
}
