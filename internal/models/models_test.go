package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestLeadNormalized(t *testing.T) {
	got := Lead{Name: "  Amal Haddad ", Title: "", Company: "\t", Location: "Dubai", URL: "u"}.Normalized()
	want := Lead{Name: "Amal Haddad", Title: Sentinel, Company: Sentinel, Location: "Dubai", URL: "u"}
	if got != want {
		t.Fatalf("Normalized() = %+v, want %+v", got, want)
	}

	empty := EmptyLead("https://www.linkedin.com/in/x")
	for _, field := range []string{empty.Name, empty.Title, empty.Company, empty.Location} {
		if !IsSentinel(field) {
			t.Fatalf("EmptyLead field %q is not the sentinel", field)
		}
	}
	if IsSentinel("N/A Corp") {
		t.Fatalf("IsSentinel should match the whole value only")
	}
}

func TestSearchQuery(t *testing.T) {
	cases := []struct {
		name    string
		query   SearchQuery
		encoded string
		text    string
	}{
		{name: "single", query: SearchQuery{"food dubai"}, encoded: "food%20dubai", text: "food dubai"},
		{name: "multi", query: SearchQuery{"food", " business  dubai "}, encoded: "food%20business%20dubai", text: "food business dubai"},
		{name: "special chars", query: SearchQuery{"R&D", "café"}, encoded: "R%26D%20caf%C3%A9", text: "R&D café"},
		{name: "blank entries", query: SearchQuery{"", "  ", "tech"}, encoded: "tech", text: "tech"},
	}

	for _, tc := range cases {
		if got := tc.query.Encoded(); got != tc.encoded {
			t.Fatalf("%s: Encoded() = %q, want %q", tc.name, got, tc.encoded)
		}
		if got := tc.query.String(); got != tc.text {
			t.Fatalf("%s: String() = %q, want %q", tc.name, got, tc.text)
		}
	}
}

func TestScrapeJobValidate(t *testing.T) {
	cases := []struct {
		name    string
		job     ScrapeJob
		wantErr string
	}{
		{name: "ok", job: ScrapeJob{Keywords: SearchQuery{"tech"}, Limit: 1}},
		{name: "zero limit", job: ScrapeJob{Keywords: SearchQuery{"tech"}}, wantErr: "limit"},
		{name: "no keywords", job: ScrapeJob{Keywords: SearchQuery{" "}, Limit: 5}, wantErr: "keyword"},
	}

	for _, tc := range cases {
		err := tc.job.Validate()
		if tc.wantErr == "" {
			if err != nil {
				t.Fatalf("%s: Validate() error = %v", tc.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: Validate() error = %v, want %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateInit, StateDriverReady, StateAuthenticated, StateSearching, StateExtracting} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
	if !StateDone.Terminal() || !StateFailed.Terminal() {
		t.Fatalf("DONE and FAILED must be terminal")
	}
}

func TestCredentialsNeverPrintSecrets(t *testing.T) {
	creds := Credentials{Identity: "me@example.com", Secret: "hunter2"}

	for _, format := range []string{"%v", "%+v", "%#v", "%s"} {
		out := fmt.Sprintf(format, creds)
		if strings.Contains(out, "hunter2") || strings.Contains(out, "me@example.com") {
			t.Fatalf("format %s leaked credentials: %s", format, out)
		}
	}
	wrapped := struct{ Creds Credentials }{creds}
	if out := fmt.Sprintf("%+v", wrapped); strings.Contains(out, "hunter2") {
		t.Fatalf("nested format leaked secret: %s", out)
	}
	data, err := json.Marshal(creds)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != "{}" {
		t.Fatalf("json leaked credentials: %s", data)
	}
}

func TestCredentialsCompleteAndOr(t *testing.T) {
	fallback := Credentials{Identity: "env@example.com", Secret: "env-secret"}

	if (Credentials{Identity: "me"}).Complete() {
		t.Fatalf("missing secret should be incomplete")
	}
	got := Credentials{Identity: "me@example.com"}.Or(fallback)
	if got.Identity != "me@example.com" || got.Secret != "env-secret" {
		t.Fatalf("Or() did not fill the missing secret only")
	}
	if !got.Complete() {
		t.Fatalf("merged credentials should be complete")
	}
}
