// Package keywords turns a free-text lead request into search phrases.
package keywords

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// MaxKeywords caps every result, remote or local.
const MaxKeywords = 7

var ErrServiceUnavailable = errors.New("keyword service unavailable")

var defaultKeywords = []string{"business", "professional"}

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"i": {}, "want": {}, "leads": {}, "they": {}, "are": {}, "doing": {},
}

// Generator completes a prompt with a language model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Extractor asks a Generator for phrases and falls back to local
// extraction when the service is missing, fails, or returns nothing.
type Extractor struct {
	gen    Generator
	logger zerolog.Logger
}

func NewExtractor(gen Generator, logger zerolog.Logger) *Extractor {
	return &Extractor{gen: gen, logger: logger}
}

// Extract never fails and never returns an empty list for a non-empty
// request.
func (e *Extractor) Extract(ctx context.Context, request string) []string {
	if e.gen == nil {
		return Fallback(request)
	}

	reply, err := e.gen.Generate(ctx, BuildPrompt(request))
	if err != nil {
		if errors.Is(err, ErrServiceUnavailable) {
			e.logger.Debug().Msg("keyword service not configured, using local extraction")
		} else {
			e.logger.Warn().Err(err).Msg("keyword service failed, using local extraction")
		}
		return Fallback(request)
	}

	phrases := SplitReply(reply)
	if len(phrases) == 0 {
		e.logger.Warn().Msg("keyword service returned nothing, using local extraction")
		return Fallback(request)
	}
	e.logger.Info().Strs("keywords", phrases).Msg("keywords extracted")
	return phrases
}

// SplitReply parses a comma-separated model reply into at most MaxKeywords
// phrases.
func SplitReply(reply string) []string {
	var out []string
	for _, part := range strings.Split(reply, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		part = strings.Join(strings.Fields(part), " ")
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

// Fallback extracts keywords locally: lowercased words that are not
// stopwords and longer than two characters (runes, not bytes).
func Fallback(request string) []string {
	var out []string
	for _, word := range strings.Fields(strings.ToLower(request)) {
		if _, stop := stopwords[word]; stop {
			continue
		}
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		out = append(out, word)
		if len(out) == MaxKeywords {
			break
		}
	}
	if len(out) == 0 {
		return append([]string{}, defaultKeywords...)
	}
	return out
}

// BuildPrompt wraps a user request in the extraction instructions.
func BuildPrompt(request string) string {
	return fmt.Sprintf(`Extract LinkedIn search keywords from the user's request. Create keyword variations that combine industry and location.

Rules:
1. Extract the industry or business type mentioned.
2. Extract the location mentioned.
3. Combine industry and location in each phrase, for example "industry location" or "industry company location".
4. Do not add job titles unless the request asks for them.

Examples:
- "food business dubai" -> food business dubai, food company dubai, restaurant dubai
- "tech companies in london" -> tech companies london, tech london, technology london

Return only a comma-separated list of 3-5 keyword phrases, with no explanation.

User request: %q

Keywords:`, strings.TrimSpace(request))
}
