package keywords

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
	"testing"

	"github.com/rs/zerolog"
)

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestFallbackDropsStopwordsAndShortTokens(t *testing.T) {
	got := Fallback("i want the leads they are doing the food business in dubai")
	want := []string{"food", "business", "dubai"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Fallback() = %v, want %v", got, want)
	}
}

func TestFallbackInvariants(t *testing.T) {
	prompts := []string{
		"Real Estate Agents AND brokers in Abu Dhabi with luxury villas portfolio and offices",
		"ok go",
		"",
		"THE AND OR",
	}
	for _, prompt := range prompts {
		got := Fallback(prompt)
		if len(got) < 1 || len(got) > MaxKeywords {
			t.Fatalf("Fallback(%q) returned %d tokens", prompt, len(got))
		}
		for _, token := range got {
			if token != strings.ToLower(token) {
				t.Fatalf("Fallback(%q) token %q not lowercase", prompt, token)
			}
			if utf8.RuneCountInString(token) <= 2 {
				t.Fatalf("Fallback(%q) token %q too short", prompt, token)
			}
			if _, stop := stopwords[token]; stop {
				t.Fatalf("Fallback(%q) kept stopword %q", prompt, token)
			}
		}
	}
}

func TestFallbackCountsCharactersNotBytes(t *testing.T) {
	cases := []struct {
		request string
		want    []string
	}{
		{"café né dubai", []string{"café", "dubai"}},
		{"مطعم في دبي", []string{"مطعم", "دبي"}},
		{"ée münchen", []string{"münchen"}},
	}
	for _, tc := range cases {
		got := Fallback(tc.request)
		if strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Fatalf("Fallback(%q) = %v, want %v", tc.request, got, tc.want)
		}
	}
}

func TestFallbackDefaults(t *testing.T) {
	got := Fallback("i want to go")
	if strings.Join(got, ",") != "business,professional" {
		t.Fatalf("Fallback() = %v, want defaults", got)
	}
	got[0] = "changed"
	if Fallback("")[0] != "business" {
		t.Fatalf("defaults must not be shared")
	}
}

func TestFallbackCapsAtSeven(t *testing.T) {
	got := Fallback("alpha bravo charlie delta echo foxtrot golf hotel india")
	if len(got) != MaxKeywords || got[6] != "golf" {
		t.Fatalf("Fallback() = %v", got)
	}
}

func TestExtractUsesServiceReply(t *testing.T) {
	gen := &fakeGenerator{reply: " food business dubai, restaurant dubai ,, \"food company dubai\"\n"}
	e := NewExtractor(gen, zerolog.Nop())

	got := e.Extract(context.Background(), "food business in dubai")
	want := []string{"food business dubai", "restaurant dubai", "food company dubai"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Extract() = %v, want %v", got, want)
	}
	if !strings.Contains(gen.prompt, `"food business in dubai"`) {
		t.Fatalf("prompt does not carry request: %q", gen.prompt)
	}
}

func TestExtractFallsBack(t *testing.T) {
	request := "i want the leads they are doing the food business in dubai"
	cases := []struct {
		name string
		gen  Generator
	}{
		{"no generator", nil},
		{"unavailable", &fakeGenerator{err: ErrServiceUnavailable}},
		{"failure", &fakeGenerator{err: errors.New("http 500")}},
		{"empty reply", &fakeGenerator{reply: " , ,"}},
	}
	for _, tc := range cases {
		got := NewExtractor(tc.gen, zerolog.Nop()).Extract(context.Background(), request)
		if strings.Join(got, ",") != "food,business,dubai" {
			t.Fatalf("%s: Extract() = %v", tc.name, got)
		}
	}
}

func TestSplitReplyCaps(t *testing.T) {
	got := SplitReply("a, b, c, d, e, f, g, h, i")
	if len(got) != MaxKeywords {
		t.Fatalf("SplitReply() returned %d phrases", len(got))
	}
}
