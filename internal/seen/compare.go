package seen

import (
	"strings"

	"github.com/jimezsa/leadscout/internal/models"
)

const (
	keySeparator = "::"
	urlKeyPrefix = "url" + keySeparator
)

// DiffStats captures stats for A-B unseen filtering.
type DiffStats struct {
	TotalNew    int
	TotalSeen   int
	InvalidNew  int
	InvalidSeen int
	Unseen      int
}

// InvalidSkipped returns the total invalid records skipped during comparison.
func (s DiffStats) InvalidSkipped() int {
	return s.InvalidNew + s.InvalidSeen
}

// MergeStats captures stats for history updates.
type MergeStats struct {
	TotalSeen    int
	TotalInput   int
	InvalidSeen  int
	InvalidInput int
	Added        int
	TotalOut     int
}

// InvalidSkipped returns the total invalid records skipped during merge.
func (s MergeStats) InvalidSkipped() int {
	return s.InvalidSeen + s.InvalidInput
}

// Normalize lowercases value and collapses whitespace. The sentinel
// normalizes to "".
func Normalize(value string) string {
	if models.IsSentinel(value) {
		return ""
	}
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(value)))
	return strings.Join(fields, " ")
}

// Key identifies a lead across runs: normalized name and company, or the
// profile URL when either is missing.
func Key(lead models.Lead) (string, bool) {
	name := Normalize(lead.Name)
	company := Normalize(lead.Company)
	if name != "" && company != "" {
		return name + keySeparator + company, true
	}
	if u := strings.ToLower(strings.TrimRight(strings.TrimSpace(lead.URL), "/")); u != "" {
		return urlKeyPrefix + u, true
	}
	return "", false
}

// Diff returns leads from newLeads whose key is not in seenLeads.
func Diff(newLeads []models.Lead, seenLeads []models.Lead) ([]models.Lead, DiffStats) {
	stats := DiffStats{
		TotalNew:  len(newLeads),
		TotalSeen: len(seenLeads),
	}

	seenKeys := make(map[string]struct{}, len(seenLeads))
	for _, lead := range seenLeads {
		key, ok := Key(lead)
		if !ok {
			stats.InvalidSeen++
			continue
		}
		seenKeys[key] = struct{}{}
	}

	newKeys := make(map[string]struct{}, len(newLeads))
	unseen := make([]models.Lead, 0, len(newLeads))
	for _, lead := range newLeads {
		key, ok := Key(lead)
		if !ok {
			stats.InvalidNew++
			continue
		}
		if _, exists := newKeys[key]; exists {
			continue
		}
		newKeys[key] = struct{}{}
		if _, exists := seenKeys[key]; exists {
			continue
		}
		unseen = append(unseen, lead)
	}

	stats.Unseen = len(unseen)
	return unseen, stats
}

// Merge appends unique new leads to the history. Existing entries win
// collisions.
func Merge(existing []models.Lead, input []models.Lead) ([]models.Lead, MergeStats) {
	stats := MergeStats{
		TotalSeen:  len(existing),
		TotalInput: len(input),
	}

	keys := make(map[string]struct{}, len(existing)+len(input))
	out := make([]models.Lead, 0, len(existing)+len(input))

	for _, lead := range existing {
		key, ok := Key(lead)
		if !ok {
			stats.InvalidSeen++
			out = append(out, lead)
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, lead)
	}

	for _, lead := range input {
		key, ok := Key(lead)
		if !ok {
			stats.InvalidInput++
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, lead)
		stats.Added++
	}

	stats.TotalOut = len(out)
	return out, stats
}
